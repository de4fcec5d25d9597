package dto

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

// Milliseconds is a duration figure that encodes Inf and NaN as JSON null
type Milliseconds float64

// MarshalJSON implements json.Marshaler
func (m Milliseconds) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// IsFinite reports whether the figure is a finite number
func (m Milliseconds) IsFinite() bool {
	f := float64(m)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// String formats the figure without exponent notation
func (m Milliseconds) String() string {
	return strconv.FormatFloat(float64(m), 'f', -1, 64)
}

// BOMRow is one line of the flattened, numbered bill of materials
type BOMRow struct {
	BOMID             string              `json:"bomId"`
	Level             int                 `json:"level"`
	ID                string              `json:"id"`
	ItemReadableID    string              `json:"itemReadableId"`
	ItemType          string              `json:"itemType"`
	Description       string              `json:"description"`
	MethodType        entities.MethodType `json:"methodType"`
	Quantity          decimal.Decimal     `json:"quantity"`
	TotalQuantity     decimal.Decimal     `json:"totalQuantity"`
	UnitOfMeasureCode string              `json:"unitOfMeasureCode"`
	UnitCost          decimal.NullDecimal `json:"unitCost"`
	TotalCost         decimal.Decimal     `json:"totalCost"`
	Version           int                 `json:"version"`

	Node *entities.MethodNode `json:"-"`
}

// BOMView is the flattened bill of materials of one make method
type BOMView struct {
	Domain       entities.MethodDomain `json:"domain,omitempty"`
	MakeMethodID string                `json:"makeMethodId"`
	Rows         []BOMRow              `json:"rows"`
	TotalCost    decimal.Decimal       `json:"totalCost"`
}

// RoutingRow is one operation with its durations at the requested quantity
type RoutingRow struct {
	BOMID             string       `json:"bomId"` // empty for operations of the top-level method
	MaterialID        string       `json:"materialId,omitempty"`
	OperationID       string       `json:"operationId"`
	Description       string       `json:"description"`
	WorkCenterID      string       `json:"workCenterId"`
	OperationQuantity float64      `json:"operationQuantity"`
	SetupDuration     Milliseconds `json:"setupDuration"`
	LaborDuration     Milliseconds `json:"laborDuration"`
	MachineDuration   Milliseconds `json:"machineDuration"`
	Duration          Milliseconds `json:"duration"`
	Finite            bool         `json:"finite"`
}

// RoutingView lists every operation of a make method and its nested make methods
type RoutingView struct {
	Domain            entities.MethodDomain `json:"domain,omitempty"`
	MakeMethodID      string                `json:"makeMethodId"`
	Quantity          float64               `json:"quantity"`
	Rows              []RoutingRow          `json:"rows"`
	TotalDuration     Milliseconds          `json:"totalDuration"` // finite rows only
	NonFiniteRowCount int                   `json:"nonFiniteRowCount"`
}
