package entities

import (
	"fmt"
	"math"
)

// Operation represents one timed manufacturing step of a make method
type Operation struct {
	ID           string   `json:"id"`
	Order        float64  `json:"order,omitempty"`
	Description  string   `json:"description,omitempty"`
	WorkCenterID string   `json:"workCenterId,omitempty"`
	SetupTime    float64  `json:"setupTime"`
	SetupUnit    TimeUnit `json:"setupUnit"`
	LaborTime    float64  `json:"laborTime"`
	LaborUnit    TimeUnit `json:"laborUnit"`
	MachineTime  float64  `json:"machineTime"`
	MachineUnit  TimeUnit `json:"machineUnit"`
}

// NewOperation creates a validated Operation from raw unit labels.
// Unrecognized labels are kept as UnknownUnit.
func NewOperation(
	id string,
	setupTime float64, setupUnit string,
	laborTime float64, laborUnit string,
	machineTime float64, machineUnit string,
) (*Operation, error) {
	if id == "" {
		return nil, fmt.Errorf("operation id cannot be empty")
	}

	setup, _ := ParseTimeUnit(setupUnit)
	labor, _ := ParseTimeUnit(laborUnit)
	machine, _ := ParseTimeUnit(machineUnit)

	return &Operation{
		ID:          id,
		SetupTime:   setupTime,
		SetupUnit:   setup,
		LaborTime:   laborTime,
		LaborUnit:   labor,
		MachineTime: machineTime,
		MachineUnit: machine,
	}, nil
}

// Duration holds the computed durations of an operation in milliseconds
type Duration struct {
	SetupDuration   float64
	LaborDuration   float64
	MachineDuration float64
	Duration        float64
}

// IsFinite reports whether every component is a finite number.
// Pieces/Hour and Pieces/Minute with a zero rate yield Inf or NaN.
func (d Duration) IsFinite() bool {
	for _, v := range []float64{d.SetupDuration, d.LaborDuration, d.MachineDuration, d.Duration} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
