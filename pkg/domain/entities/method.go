package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MethodType represents how the item on a method line is sourced
type MethodType int

const (
	Buy MethodType = iota
	Make
	Pick
)

// String method for MethodType enum
func (m MethodType) String() string {
	switch m {
	case Buy:
		return "Buy"
	case Make:
		return "Make"
	case Pick:
		return "Pick"
	default:
		return "Unknown"
	}
}

// ParseMethodType converts a method type label into a MethodType
func ParseMethodType(s string) (MethodType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "make":
		return Make, nil
	case "pick":
		return Pick, nil
	default:
		return Buy, fmt.Errorf("invalid method_type: %s (expected: Buy, Make, or Pick)", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m MethodType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *MethodType) UnmarshalText(text []byte) error {
	parsed, err := ParseMethodType(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MethodNode represents a single line in a method tree. A Make node owns the
// materials of its nested make method as Children.
type MethodNode struct {
	ID                string              `json:"id"`
	ParentID          string              `json:"parentId,omitempty"` // empty only for the synthetic root
	Children          []*MethodNode       `json:"children,omitempty"`
	Quantity          decimal.Decimal     `json:"quantity"` // per one unit of the immediate parent
	UnitCost          decimal.NullDecimal `json:"unitCost"`
	MethodType        MethodType          `json:"methodType"`
	ItemType          string              `json:"itemType,omitempty"`
	ItemReadableID    string              `json:"itemReadableId,omitempty"`
	Description       string              `json:"description,omitempty"`
	UnitOfMeasureCode string              `json:"unitOfMeasureCode,omitempty"`
	Version           int                 `json:"version,omitempty"`
	Operations        []*Operation        `json:"operations,omitempty"`
}

// NewMethodNode creates a validated MethodNode
func NewMethodNode(id, parentID string, quantity decimal.Decimal, methodType MethodType) (*MethodNode, error) {
	if id == "" {
		return nil, fmt.Errorf("method node id cannot be empty")
	}
	if id == parentID {
		return nil, fmt.Errorf("method node cannot be its own parent: %s", id)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &MethodNode{
		ID:         id,
		ParentID:   parentID,
		Quantity:   quantity,
		MethodType: methodType,
	}, nil
}

// IsRoot reports whether the node is the synthetic root of a tree
func (n *MethodNode) IsRoot() bool {
	return n.ParentID == ""
}

// AddChild appends a child and links it to this node
func (n *MethodNode) AddChild(child *MethodNode) {
	child.ParentID = n.ID
	n.Children = append(n.Children, child)
}

// UnitCostOrZero returns the unit cost, treating a null cost as zero
func (n *MethodNode) UnitCostOrZero() decimal.Decimal {
	if !n.UnitCost.Valid {
		return decimal.Zero
	}
	return n.UnitCost.Decimal
}

// CountNodes returns the number of nodes in the subtree rooted at n, n included
func (n *MethodNode) CountNodes() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += child.CountNodes()
	}
	return count
}
