package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MethodDomain identifies which business domain a method tree belongs to
type MethodDomain string

const (
	ItemMethod  MethodDomain = "item"
	JobMethod   MethodDomain = "job"
	QuoteMethod MethodDomain = "quote"
)

// ParseMethodDomain converts a domain label into a MethodDomain
func ParseMethodDomain(s string) (MethodDomain, error) {
	switch d := MethodDomain(strings.ToLower(strings.TrimSpace(s))); d {
	case ItemMethod, JobMethod, QuoteMethod:
		return d, nil
	default:
		return "", fmt.Errorf("invalid method domain: %s (expected: item, job, or quote)", s)
	}
}

// MethodDomains returns the three supported domains
func MethodDomains() []MethodDomain {
	return []MethodDomain{ItemMethod, JobMethod, QuoteMethod}
}

// MaterialRow is the row shape every domain stores a method material in.
// MaterialMakeMethodID is set when the material is itself made and owns a
// nested make method.
type MaterialRow struct {
	ID                   string
	MakeMethodID         string
	MaterialMakeMethodID string
	Order                float64
	ItemID               string
	ItemReadableID       string
	ItemType             string
	Description          string
	MethodType           MethodType
	Quantity             decimal.Decimal
	UnitCost             decimal.NullDecimal
	UnitOfMeasureCode    string
	Version              int
}

// NewMaterialRow creates a validated MaterialRow
func NewMaterialRow(id, makeMethodID string, quantity decimal.Decimal, methodType MethodType) (*MaterialRow, error) {
	if id == "" {
		return nil, fmt.Errorf("material id cannot be empty")
	}
	if makeMethodID == "" {
		return nil, fmt.Errorf("make method id cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &MaterialRow{
		ID:           id,
		MakeMethodID: makeMethodID,
		Quantity:     quantity,
		MethodType:   methodType,
	}, nil
}

// ToNode converts the row into a childless MethodNode
func (r *MaterialRow) ToNode(parentID string) *MethodNode {
	return &MethodNode{
		ID:                r.ID,
		ParentID:          parentID,
		Quantity:          r.Quantity,
		UnitCost:          r.UnitCost,
		MethodType:        r.MethodType,
		ItemType:          r.ItemType,
		ItemReadableID:    r.ItemReadableID,
		Description:       r.Description,
		UnitOfMeasureCode: r.UnitOfMeasureCode,
		Version:           r.Version,
	}
}

// OperationRow is the row shape every domain stores a method operation in
type OperationRow struct {
	ID           string
	MakeMethodID string
	Order        float64
	Description  string
	WorkCenterID string
	SetupTime    float64
	SetupUnit    string
	LaborTime    float64
	LaborUnit    string
	MachineTime  float64
	MachineUnit  string
}

// ToOperation converts the row into an Operation
func (r *OperationRow) ToOperation() *Operation {
	setup, _ := ParseTimeUnit(r.SetupUnit)
	labor, _ := ParseTimeUnit(r.LaborUnit)
	machine, _ := ParseTimeUnit(r.MachineUnit)

	return &Operation{
		ID:           r.ID,
		Order:        r.Order,
		Description:  r.Description,
		WorkCenterID: r.WorkCenterID,
		SetupTime:    r.SetupTime,
		SetupUnit:    setup,
		LaborTime:    r.LaborTime,
		LaborUnit:    labor,
		MachineTime:  r.MachineTime,
		MachineUnit:  machine,
	}
}
