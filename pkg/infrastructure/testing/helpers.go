package testing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/infrastructure/repositories/memory"
)

// ChairMakeMethodID is the top-level make method of the chair scenario
const ChairMakeMethodID = "MM-CHAIR"

// Node builds a method node with the given children linked beneath it
func Node(id string, qty string, methodType entities.MethodType, children ...*entities.MethodNode) *entities.MethodNode {
	node := &entities.MethodNode{
		ID:             id,
		ItemReadableID: id,
		Quantity:       decimal.RequireFromString(qty),
		MethodType:     methodType,
	}
	for _, child := range children {
		node.AddChild(child)
	}
	return node
}

// WithCost sets a unit cost on node and returns it
func WithCost(node *entities.MethodNode, cost string) *entities.MethodNode {
	node.UnitCost = decimal.NewNullDecimal(decimal.RequireFromString(cost))
	return node
}

// Root builds the synthetic root of a make method
func Root(id string, children ...*entities.MethodNode) *entities.MethodNode {
	root := &entities.MethodNode{
		ID:         id,
		Quantity:   decimal.NewFromInt(1),
		MethodType: entities.Make,
	}
	for _, child := range children {
		root.AddChild(child)
	}
	return root
}

// BuildChairTree builds the chair scenario as a tree:
//
//	1     SEAT   x1  (Make)
//	1.1   FOAM   x2
//	1.2   FABRIC x1.5 @ 4.00
//	2     LEG    x4  (Make)
//	2.1   TUBE   x0.75 @ 8.00
//	2.2   CAP    x2 @ 0.10 (Pick)
//	3     SCREW  x16 @ 0.05
func BuildChairTree() *entities.MethodNode {
	return Root(ChairMakeMethodID,
		Node("SEAT", "1", entities.Make,
			Node("FOAM", "2", entities.Buy),
			WithCost(Node("FABRIC", "1.5", entities.Buy), "4.00"),
		),
		Node("LEG", "4", entities.Make,
			WithCost(Node("TUBE", "0.75", entities.Buy), "8.00"),
			WithCost(Node("CAP", "2", entities.Pick), "0.10"),
		),
		WithCost(Node("SCREW", "16", entities.Buy), "0.05"),
	)
}

// ChairMaterialRows returns the chair scenario as domain rows. Rows are stored
// out of order so tree building has to sort by Order.
func ChairMaterialRows() []*entities.MaterialRow {
	row := func(id, makeMethodID, nested string, order float64, qty, cost string, methodType entities.MethodType) *entities.MaterialRow {
		r := &entities.MaterialRow{
			ID:                   id,
			MakeMethodID:         makeMethodID,
			MaterialMakeMethodID: nested,
			Order:                order,
			ItemID:               "ITEM-" + id,
			ItemReadableID:       id,
			ItemType:             "Part",
			Description:          id + " component",
			MethodType:           methodType,
			Quantity:             decimal.RequireFromString(qty),
			UnitOfMeasureCode:    "EA",
			Version:              1,
		}
		if cost != "" {
			r.UnitCost = decimal.NewNullDecimal(decimal.RequireFromString(cost))
		}
		return r
	}

	return []*entities.MaterialRow{
		row("SCREW", ChairMakeMethodID, "", 3, "16", "0.05", entities.Buy),
		row("SEAT", ChairMakeMethodID, "MM-SEAT", 1, "1", "", entities.Make),
		row("LEG", ChairMakeMethodID, "MM-LEG", 2, "4", "", entities.Make),
		row("FABRIC", "MM-SEAT", "", 2, "1.5", "4.00", entities.Buy),
		row("FOAM", "MM-SEAT", "", 1, "2", "", entities.Buy),
		row("TUBE", "MM-LEG", "", 1, "0.75", "8.00", entities.Buy),
		row("CAP", "MM-LEG", "", 2, "2", "0.10", entities.Pick),
	}
}

// ChairOperationRows returns the operations of the chair scenario
func ChairOperationRows() []*entities.OperationRow {
	return []*entities.OperationRow{
		{
			ID: "OP-ASSEMBLE", MakeMethodID: ChairMakeMethodID, Order: 1,
			Description: "Final assembly", WorkCenterID: "WC-ASSY",
			SetupTime: 1, SetupUnit: "Total Hours",
			LaborTime: 2, LaborUnit: "Hours/Piece",
			MachineTime: 0.5, MachineUnit: "Hours/Piece",
		},
		{
			ID: "OP-UPHOLSTER", MakeMethodID: "MM-SEAT", Order: 1,
			Description: "Upholster seat", WorkCenterID: "WC-SEW",
			SetupTime: 15, SetupUnit: "Total Minutes",
			LaborTime: 30, LaborUnit: "Seconds/Piece",
		},
		{
			ID: "OP-CUT", MakeMethodID: "MM-LEG", Order: 1,
			Description: "Cut tube", WorkCenterID: "WC-SAW",
			LaborTime: 50, LaborUnit: "Pieces/Hour",
			MachineTime: 6, MachineUnit: "Minutes/100 Pieces",
		},
	}
}

// BuildChairRepository loads the chair scenario into every domain of a memory repository
func BuildChairRepository() *memory.MethodRepository {
	repo := memory.NewMethodRepository(len(ChairMaterialRows()))
	ctx := context.Background()
	for _, domain := range entities.MethodDomains() {
		// Errors are impossible for known domains
		_ = repo.LoadMaterials(ctx, domain, ChairMaterialRows())
		_ = repo.LoadOperations(ctx, domain, ChairOperationRows())
	}
	return repo
}

// BuildChain builds a single-branch tree root -> n1 -> n2 ... with the given quantities
func BuildChain(quantities ...string) *entities.MethodNode {
	root := Root("ROOT")
	parent := root
	for i, qty := range quantities {
		node := Node(string(rune('A'+i)), qty, entities.Make)
		parent.AddChild(node)
		parent = node
	}
	return root
}
