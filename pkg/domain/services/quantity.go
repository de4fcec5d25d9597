package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

// CalculateTotalQuantity returns the quantity of node's item needed for one
// unit of the top-level assembly: the product of node's quantity and that of
// every ancestor. Ancestry is recovered from position and level in all, which
// must be the pre-order flattening node was taken from. If node is not found
// in all, its own quantity is returned.
func CalculateTotalQuantity(
	node entities.FlatTreeItem[*entities.MethodNode],
	all []entities.FlatTreeItem[*entities.MethodNode],
) decimal.Decimal {
	for i := range all {
		if all[i].Data == node.Data && all[i].Level == node.Level {
			return CalculateTotalQuantityAt(i, all)
		}
	}
	if node.Data == nil {
		return decimal.Zero
	}
	return node.Data.Quantity
}

// CalculateTotalQuantityAt is CalculateTotalQuantity for the element at index
func CalculateTotalQuantityAt(index int, all []entities.FlatTreeItem[*entities.MethodNode]) decimal.Decimal {
	if index < 0 || index >= len(all) {
		return decimal.Zero
	}

	total := quantityOf(all[index])
	wantLevel := levelOf(all[index]) - 1

	for j := index - 1; j >= 0 && wantLevel >= 0; j-- {
		if levelOf(all[j]) == wantLevel {
			total = total.Mul(quantityOf(all[j]))
			wantLevel--
		}
	}

	return total
}

// TotalQuantities computes CalculateTotalQuantityAt for every element in one
// forward pass. The parent of an element is the most recent element seen one
// level shallower, which is exactly what the backward scan finds.
func TotalQuantities(all []entities.FlatTreeItem[*entities.MethodNode]) []decimal.Decimal {
	totals := make([]decimal.Decimal, len(all))
	var lastSeen []int

	for i, item := range all {
		level := levelOf(item)

		totals[i] = quantityOf(item)
		if level > 0 && level-1 < len(lastSeen) && lastSeen[level-1] >= 0 {
			totals[i] = totals[i].Mul(totals[lastSeen[level-1]])
		}

		for len(lastSeen) <= level {
			lastSeen = append(lastSeen, -1)
		}
		lastSeen[level] = i
	}

	return totals
}

// TotalCost returns totalQuantity times the node's unit cost, a null cost counting as zero
func TotalCost(node *entities.MethodNode, totalQuantity decimal.Decimal) decimal.Decimal {
	if node == nil {
		return decimal.Zero
	}
	return totalQuantity.Mul(node.UnitCostOrZero())
}

func quantityOf(item entities.FlatTreeItem[*entities.MethodNode]) decimal.Decimal {
	if item.Data == nil {
		return decimal.Zero
	}
	return item.Data.Quantity
}

// levelOf clamps malformed negative levels to the top level
func levelOf[T any](item entities.FlatTreeItem[T]) int {
	if item.Level < 0 {
		return 0
	}
	return item.Level
}
