package methodview

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
	"github.com/vsinha/methodtree/pkg/domain/services"
	"github.com/vsinha/methodtree/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/methodtree/pkg/infrastructure/testing"
)

func TestTreeBuilder_BuildsChairFromRows(t *testing.T) {
	repo := testhelpers.BuildChairRepository()
	builder := NewTreeBuilder(repo, nil)

	root, err := builder.Build(context.Background(), entities.ItemMethod, testhelpers.ChairMakeMethodID)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if root.ID != testhelpers.ChairMakeMethodID || !root.IsRoot() {
		t.Errorf("Unexpected root: id=%s parent=%q", root.ID, root.ParentID)
	}

	// Rows were stored out of order; siblings follow the Order column
	var got []string
	for _, child := range root.Children {
		got = append(got, child.ID)
	}
	if len(got) != 3 || got[0] != "SEAT" || got[1] != "LEG" || got[2] != "SCREW" {
		t.Fatalf("Expected children [SEAT LEG SCREW], got %v", got)
	}

	seat := root.Children[0]
	if len(seat.Children) != 2 || seat.Children[0].ID != "FOAM" || seat.Children[1].ID != "FABRIC" {
		t.Errorf("Expected SEAT children [FOAM FABRIC], got %d children", len(seat.Children))
	}
	for _, child := range seat.Children {
		if child.ParentID != "SEAT" {
			t.Errorf("Expected %s parent SEAT, got %s", child.ID, child.ParentID)
		}
	}

	if len(root.Operations) != 1 || root.Operations[0].ID != "OP-ASSEMBLE" {
		t.Errorf("Expected OP-ASSEMBLE on root, got %v", root.Operations)
	}
	if len(seat.Operations) != 1 || seat.Operations[0].SetupUnit != entities.TotalMinutes {
		t.Errorf("Expected OP-UPHOLSTER with Total Minutes on SEAT")
	}

	if root.CountNodes() != 8 {
		t.Errorf("Expected 8 nodes, got %d", root.CountNodes())
	}
}

func TestTreeBuilder_MethodNotFound(t *testing.T) {
	builder := NewTreeBuilder(testhelpers.BuildChairRepository(), nil)

	_, err := builder.Build(context.Background(), entities.JobMethod, "MM-MISSING")
	if !errors.Is(err, repositories.ErrMethodNotFound) {
		t.Fatalf("Expected ErrMethodNotFound, got %v", err)
	}
}

func TestTreeBuilder_NestedMethodWithoutRows(t *testing.T) {
	repo := memory.NewMethodRepository(1)
	ctx := context.Background()
	err := repo.LoadMaterials(ctx, entities.QuoteMethod, []*entities.MaterialRow{
		{ID: "SUB", MakeMethodID: "MM-TOP", MaterialMakeMethodID: "MM-EMPTY", Quantity: decimal.NewFromInt(2), MethodType: entities.Make},
	})
	if err != nil {
		t.Fatalf("Failed to load materials: %v", err)
	}

	root, err := NewTreeBuilder(repo, nil).Build(ctx, entities.QuoteMethod, "MM-TOP")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(root.Children) != 1 || len(root.Children[0].Children) != 0 {
		t.Errorf("Expected a single childless make material")
	}

	// A nested method id on its own is a valid (empty) make method
	empty, err := NewTreeBuilder(repo, nil).Build(ctx, entities.QuoteMethod, "MM-EMPTY")
	if err != nil {
		t.Fatalf("Build of empty nested method failed: %v", err)
	}
	if len(empty.Children) != 0 {
		t.Errorf("Expected no children, got %d", len(empty.Children))
	}
}

func TestTreeBuilder_CycleIsRejected(t *testing.T) {
	repo := memory.NewMethodRepository(2)
	ctx := context.Background()
	err := repo.LoadMaterials(ctx, entities.JobMethod, []*entities.MaterialRow{
		{ID: "M1", MakeMethodID: "MM-A", MaterialMakeMethodID: "MM-B", Quantity: decimal.NewFromInt(1), MethodType: entities.Make},
		{ID: "M2", MakeMethodID: "MM-B", MaterialMakeMethodID: "MM-A", Quantity: decimal.NewFromInt(1), MethodType: entities.Make},
	})
	if err != nil {
		t.Fatalf("Failed to load materials: %v", err)
	}

	_, err = NewTreeBuilder(repo, nil).Build(ctx, entities.JobMethod, "MM-A")
	if !errors.Is(err, services.ErrCyclicTree) {
		t.Fatalf("Expected ErrCyclicTree, got %v", err)
	}
}

func TestTreeBuilder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTreeBuilder(testhelpers.BuildChairRepository(), nil).Build(ctx, entities.ItemMethod, testhelpers.ChairMakeMethodID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
