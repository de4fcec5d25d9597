package methodview

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/methodtree/pkg/application/dto"
	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
	"github.com/vsinha/methodtree/pkg/domain/services"
	"github.com/vsinha/methodtree/pkg/infrastructure/metrics"
)

const (
	viewBOM     = "bom"
	viewRouting = "routing"
)

// MethodViewService builds BOM and routing views for any domain from a repository
type MethodViewService struct {
	repo      repositories.MethodRepository
	builder   *TreeBuilder
	validator *services.MethodValidator
	logger    *zap.Logger
}

// NewMethodViewService creates a new method view service
func NewMethodViewService(repo repositories.MethodRepository, logger *zap.Logger) *MethodViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MethodViewService{
		repo:      repo,
		builder:   NewTreeBuilder(repo, logger),
		validator: services.NewMethodValidator(),
		logger:    logger,
	}
}

// Tree returns the method tree of makeMethodID
func (s *MethodViewService) Tree(ctx context.Context, domain entities.MethodDomain, makeMethodID string) (*entities.MethodNode, error) {
	return s.builder.Build(ctx, domain, makeMethodID)
}

// BOMView builds the flattened bill of materials of a make method
func (s *MethodViewService) BOMView(ctx context.Context, domain entities.MethodDomain, makeMethodID string) (*dto.BOMView, error) {
	timer := metrics.NewTimer()
	recorder := metrics.NewViewMetrics(string(domain))

	root, err := s.builder.Build(ctx, domain, makeMethodID)
	if err != nil {
		recorder.RecordFailure(viewBOM)
		return nil, fmt.Errorf("failed to build %s method tree: %w", domain, err)
	}

	view, err := BuildBOMView(root)
	if err != nil {
		recorder.RecordFailure(viewBOM)
		return nil, fmt.Errorf("failed to flatten %s method %s: %w", domain, makeMethodID, err)
	}
	view.Domain = domain

	recorder.RecordView(viewBOM, len(view.Rows), timer.Duration())
	s.logger.Info("built bom view",
		zap.String("domain", string(domain)),
		zap.String("make_method_id", makeMethodID),
		zap.Int("rows", len(view.Rows)),
		zap.String("total_cost", view.TotalCost.String()),
		zap.Duration("elapsed", timer.Duration()))

	return view, nil
}

// RoutingView builds the operation durations of a make method for quantity pieces
func (s *MethodViewService) RoutingView(
	ctx context.Context,
	domain entities.MethodDomain,
	makeMethodID string,
	quantity float64,
) (*dto.RoutingView, error) {
	timer := metrics.NewTimer()
	recorder := metrics.NewViewMetrics(string(domain))

	root, err := s.builder.Build(ctx, domain, makeMethodID)
	if err != nil {
		recorder.RecordFailure(viewRouting)
		return nil, fmt.Errorf("failed to build %s method tree: %w", domain, err)
	}

	view, err := BuildRoutingView(root, quantity)
	if err != nil {
		recorder.RecordFailure(viewRouting)
		return nil, fmt.Errorf("failed to flatten %s method %s: %w", domain, makeMethodID, err)
	}
	view.Domain = domain

	for _, row := range view.Rows {
		if !row.Finite {
			s.logger.Warn("non-finite operation duration",
				zap.String("domain", string(domain)),
				zap.String("operation_id", row.OperationID),
				zap.String("material_id", row.MaterialID),
				zap.Float64("operation_quantity", row.OperationQuantity))
		}
	}
	recorder.RecordNonFinite(view.NonFiniteRowCount)
	recorder.RecordView(viewRouting, len(view.Rows), timer.Duration())
	s.logger.Info("built routing view",
		zap.String("domain", string(domain)),
		zap.String("make_method_id", makeMethodID),
		zap.Float64("quantity", quantity),
		zap.Int("rows", len(view.Rows)),
		zap.Int("non_finite_rows", view.NonFiniteRowCount),
		zap.Duration("elapsed", timer.Duration()))

	return view, nil
}

// Validate checks every material row of a domain for cycles, duplicates and negative quantities
func (s *MethodViewService) Validate(ctx context.Context, domain entities.MethodDomain) (*services.ValidationResult, error) {
	rows, err := s.repo.GetAllMaterials(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s materials: %w", domain, err)
	}

	result := s.validator.ValidateMaterials(rows)
	if !result.IsValid() {
		s.logger.Warn("method validation failed",
			zap.String("domain", string(domain)),
			zap.Strings("errors", result.Errors))
	}
	return result, nil
}
