package methodview

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/application/dto"
	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/services"
)

// BuildBOMView flattens the materials of root, numbers them and rolls up
// quantities and costs.
func BuildBOMView(root *entities.MethodNode) (*dto.BOMView, error) {
	flat, err := services.FlattenMethod(root)
	if err != nil {
		return nil, err
	}

	ids := services.GenerateBOMIDs(flat)
	totals := services.TotalQuantities(flat)

	view := &dto.BOMView{
		Rows:      make([]dto.BOMRow, 0, len(flat)),
		TotalCost: decimal.Zero,
	}
	if root != nil {
		view.MakeMethodID = root.ID
	}

	for i, item := range flat {
		node := item.Data
		totalCost := services.TotalCost(node, totals[i])
		view.TotalCost = view.TotalCost.Add(totalCost)

		view.Rows = append(view.Rows, dto.BOMRow{
			BOMID:             ids[i],
			Level:             item.Level,
			ID:                node.ID,
			ItemReadableID:    node.ItemReadableID,
			ItemType:          node.ItemType,
			Description:       node.Description,
			MethodType:        node.MethodType,
			Quantity:          node.Quantity,
			TotalQuantity:     totals[i],
			UnitOfMeasureCode: node.UnitOfMeasureCode,
			UnitCost:          node.UnitCost,
			TotalCost:         totalCost,
			Version:           node.Version,
			Node:              node,
		})
	}

	return view, nil
}

// BuildRoutingView computes durations for the operations of root at quantity,
// then for each nested make material at quantity times that material's total
// quantity. Non-finite rows are flagged and left out of the total.
func BuildRoutingView(root *entities.MethodNode, quantity float64) (*dto.RoutingView, error) {
	flat, err := services.FlattenMethod(root)
	if err != nil {
		return nil, err
	}

	ids := services.GenerateBOMIDs(flat)
	totals := services.TotalQuantities(flat)

	view := &dto.RoutingView{
		Quantity: quantity,
		Rows:     make([]dto.RoutingRow, 0),
	}
	if root == nil {
		return view, nil
	}
	view.MakeMethodID = root.ID

	for _, op := range root.Operations {
		addRoutingRow(view, "", "", op, quantity)
	}
	for i, item := range flat {
		if len(item.Data.Operations) == 0 {
			continue
		}
		runQuantity := quantity * totals[i].InexactFloat64()
		for _, op := range item.Data.Operations {
			addRoutingRow(view, ids[i], item.Data.ID, op, runQuantity)
		}
	}

	return view, nil
}

func addRoutingRow(view *dto.RoutingView, bomID, materialID string, op *entities.Operation, quantity float64) {
	if op == nil {
		return
	}
	d := services.MakeDurations(*op, quantity)
	row := dto.RoutingRow{
		BOMID:             bomID,
		MaterialID:        materialID,
		OperationID:       op.ID,
		Description:       op.Description,
		WorkCenterID:      op.WorkCenterID,
		OperationQuantity: quantity,
		SetupDuration:     dto.Milliseconds(d.SetupDuration),
		LaborDuration:     dto.Milliseconds(d.LaborDuration),
		MachineDuration:   dto.Milliseconds(d.MachineDuration),
		Duration:          dto.Milliseconds(d.Duration),
		Finite:            d.IsFinite(),
	}

	if row.Finite {
		view.TotalDuration += row.Duration
	} else {
		view.NonFiniteRowCount++
	}
	view.Rows = append(view.Rows, row)
}
