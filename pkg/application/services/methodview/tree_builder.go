package methodview

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
	"github.com/vsinha/methodtree/pkg/domain/services"
)

// TreeBuilder assembles a MethodNode tree from the rows of one domain. Every
// domain goes through the same builder so the engine sees identical shapes.
type TreeBuilder struct {
	repo   repositories.MethodRepository
	logger *zap.Logger
}

// NewTreeBuilder creates a new tree builder
func NewTreeBuilder(repo repositories.MethodRepository, logger *zap.Logger) *TreeBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeBuilder{repo: repo, logger: logger}
}

// Build reads makeMethodID and every nested make method beneath it and
// returns the synthetic root. The root's ID is the make method id.
func (b *TreeBuilder) Build(ctx context.Context, domain entities.MethodDomain, makeMethodID string) (*entities.MethodNode, error) {
	exists, err := b.repo.HasMakeMethod(ctx, domain, makeMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s method %s: %w", domain, makeMethodID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s method %s: %w", domain, makeMethodID, repositories.ErrMethodNotFound)
	}

	root := &entities.MethodNode{
		ID:         makeMethodID,
		Quantity:   decimal.NewFromInt(1),
		MethodType: entities.Make,
	}

	path := map[string]bool{makeMethodID: true}
	if err := b.attach(ctx, domain, root, makeMethodID, 0, path); err != nil {
		return nil, err
	}

	b.logger.Debug("built method tree",
		zap.String("domain", string(domain)),
		zap.String("make_method_id", makeMethodID),
		zap.Int("nodes", root.CountNodes()))

	return root, nil
}

// attach loads the operations and materials of makeMethodID onto node and
// recurses into nested make methods. path holds the make methods currently
// being expanded.
func (b *TreeBuilder) attach(
	ctx context.Context,
	domain entities.MethodDomain,
	node *entities.MethodNode,
	makeMethodID string,
	depth int,
	path map[string]bool,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth >= services.MaxTreeDepth {
		return fmt.Errorf("make method %s at depth %d: %w", makeMethodID, depth, services.ErrMaxDepthExceeded)
	}

	operations, err := b.repo.GetOperations(ctx, domain, makeMethodID)
	if err != nil {
		return fmt.Errorf("failed to get operations for %s: %w", makeMethodID, err)
	}
	sort.SliceStable(operations, func(i, j int) bool { return operations[i].Order < operations[j].Order })
	for _, row := range operations {
		node.Operations = append(node.Operations, row.ToOperation())
	}

	materials, err := b.repo.GetMaterials(ctx, domain, makeMethodID)
	if err != nil {
		return fmt.Errorf("failed to get materials for %s: %w", makeMethodID, err)
	}
	sort.SliceStable(materials, func(i, j int) bool { return materials[i].Order < materials[j].Order })

	for _, row := range materials {
		child := row.ToNode(node.ID)
		node.Children = append(node.Children, child)

		nested := row.MaterialMakeMethodID
		if nested == "" {
			continue
		}
		if path[nested] {
			return fmt.Errorf("material %s re-enters make method %s: %w", row.ID, nested, services.ErrCyclicTree)
		}

		path[nested] = true
		if err := b.attach(ctx, domain, child, nested, depth+1, path); err != nil {
			return fmt.Errorf("failed to expand material %s: %w", row.ID, err)
		}
		delete(path, nested)
	}

	return nil
}
