package services

import (
	"math"
	"testing"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

func TestMakeDurations_ConcreteScenario(t *testing.T) {
	op := entities.Operation{
		SetupTime:   1,
		SetupUnit:   entities.TotalHours,
		LaborTime:   2,
		LaborUnit:   entities.HoursPerPiece,
		MachineTime: 0.5,
		MachineUnit: entities.HoursPerPiece,
	}

	d := MakeDurations(op, 10)

	if d.SetupDuration != 3_600_000 {
		t.Errorf("Expected setup 3600000, got %v", d.SetupDuration)
	}
	if d.LaborDuration != 72_000_000 {
		t.Errorf("Expected labor 72000000, got %v", d.LaborDuration)
	}
	if d.MachineDuration != 18_000_000 {
		t.Errorf("Expected machine 18000000, got %v", d.MachineDuration)
	}
	if d.Duration != 93_600_000 {
		t.Errorf("Expected duration 93600000, got %v", d.Duration)
	}
}

func TestMakeDurations_PiecesPerHour(t *testing.T) {
	op := entities.Operation{LaborTime: 50, LaborUnit: entities.PiecesPerHour}

	d := MakeDurations(op, 200)
	if d.LaborDuration != 14_400_000 {
		t.Errorf("Expected labor 14400000, got %v", d.LaborDuration)
	}
	if d.Duration != d.LaborDuration {
		t.Errorf("Expected duration to equal labor alone, got %v", d.Duration)
	}
}

func TestUnitTable(t *testing.T) {
	const qty = 10

	tests := []struct {
		unit     entities.TimeUnit
		rate     float64
		setup    float64
		runValue float64
	}{
		{entities.TotalHours, 6, 21_600_000, 0},
		{entities.TotalMinutes, 6, 360_000, 0},
		{entities.HoursPerPiece, 6, 216_000_000, 216_000_000},
		{entities.HoursPer100Pieces, 50, 18_000_000, 18_000_000},
		{entities.HoursPer1000Pieces, 500, 18_000_000, 18_000_000},
		{entities.MinutesPerPiece, 6, 3_600_000, 3_600_000},
		{entities.MinutesPer100Pieces, 50, 300_000, 300_000},
		{entities.MinutesPer1000Pieces, 500, 300_000, 300_000},
		{entities.PiecesPerHour, 5, 7_200_000, 7_200_000},
		{entities.PiecesPerMinute, 5, 120_000, 120_000},
		{entities.SecondsPerPiece, 6, 60_000, 60_000},
		{entities.UnknownUnit, 6, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			if got := SetupMilliseconds(tt.rate, tt.unit, qty); got != tt.setup {
				t.Errorf("setup: expected %v, got %v", tt.setup, got)
			}
			if got := RunMilliseconds(tt.rate, tt.unit, qty); got != tt.runValue {
				t.Errorf("labor/machine: expected %v, got %v", tt.runValue, got)
			}
		})
	}
}

func TestMakeDurations_SetupOnlyUnitsRejectedForLaborAndMachine(t *testing.T) {
	for _, unit := range []entities.TimeUnit{entities.TotalHours, entities.TotalMinutes} {
		op := entities.Operation{
			LaborTime:   3,
			LaborUnit:   unit,
			MachineTime: 4,
			MachineUnit: unit,
		}

		d := MakeDurations(op, 25)
		if d.LaborDuration != 0 || d.MachineDuration != 0 || d.Duration != 0 {
			t.Errorf("%v: expected labor and machine to contribute 0, got %+v", unit, d)
		}
	}
}

func TestMakeDurations_Additivity(t *testing.T) {
	units := entities.TimeUnits()
	for i, setup := range units {
		op := entities.Operation{
			SetupTime:   1.5,
			SetupUnit:   setup,
			LaborTime:   2.25,
			LaborUnit:   units[(i+3)%len(units)],
			MachineTime: 4,
			MachineUnit: units[(i+7)%len(units)],
		}

		d := MakeDurations(op, 40)
		if d.Duration != d.SetupDuration+d.LaborDuration+d.MachineDuration {
			t.Errorf("Op %d: duration %v != %v + %v + %v", i, d.Duration, d.SetupDuration, d.LaborDuration, d.MachineDuration)
		}
		if d.SetupDuration != SetupMilliseconds(op.SetupTime, op.SetupUnit, 40) {
			t.Errorf("Op %d: setup not computed independently", i)
		}
		if d.LaborDuration != RunMilliseconds(op.LaborTime, op.LaborUnit, 40) {
			t.Errorf("Op %d: labor not computed independently", i)
		}
		if d.MachineDuration != RunMilliseconds(op.MachineTime, op.MachineUnit, 40) {
			t.Errorf("Op %d: machine not computed independently", i)
		}
	}
}

func TestMakeDurations_HoursPerPieceScaling(t *testing.T) {
	op := entities.Operation{
		SetupTime:   1.25,
		SetupUnit:   entities.HoursPerPiece,
		LaborTime:   2,
		LaborUnit:   entities.HoursPerPiece,
		MachineTime: 0.5,
		MachineUnit: entities.HoursPerPiece,
	}

	one := MakeDurations(op, 1)
	hundred := MakeDurations(op, 100)

	if hundred.SetupDuration != 100*one.SetupDuration {
		t.Errorf("setup: %v != 100 x %v", hundred.SetupDuration, one.SetupDuration)
	}
	if hundred.LaborDuration != 100*one.LaborDuration {
		t.Errorf("labor: %v != 100 x %v", hundred.LaborDuration, one.LaborDuration)
	}
	if hundred.MachineDuration != 100*one.MachineDuration {
		t.Errorf("machine: %v != 100 x %v", hundred.MachineDuration, one.MachineDuration)
	}
}

func TestMakeDurations_NonFiniteRates(t *testing.T) {
	infinite := MakeDurations(entities.Operation{LaborTime: 0, LaborUnit: entities.PiecesPerHour}, 10)
	if !math.IsInf(infinite.LaborDuration, 1) {
		t.Errorf("Expected +Inf labor for zero Pieces/Hour rate, got %v", infinite.LaborDuration)
	}
	if !math.IsInf(infinite.Duration, 1) {
		t.Errorf("Expected +Inf total, got %v", infinite.Duration)
	}
	if infinite.IsFinite() {
		t.Error("Expected IsFinite to be false")
	}

	nan := MakeDurations(entities.Operation{MachineTime: 0, MachineUnit: entities.PiecesPerMinute}, 0)
	if !math.IsNaN(nan.MachineDuration) {
		t.Errorf("Expected NaN machine for 0/0, got %v", nan.MachineDuration)
	}
	if nan.IsFinite() {
		t.Error("Expected IsFinite to be false for NaN")
	}

	finite := MakeDurations(entities.Operation{LaborTime: 1, LaborUnit: entities.MinutesPerPiece}, 3)
	if !finite.IsFinite() {
		t.Errorf("Expected finite duration, got %+v", finite)
	}
}

func TestMakeDurations_NegativeInputsPropagate(t *testing.T) {
	d := MakeDurations(entities.Operation{LaborTime: -2, LaborUnit: entities.MinutesPerPiece}, 3)
	if d.LaborDuration != -360_000 {
		t.Errorf("Expected -360000, got %v", d.LaborDuration)
	}
}
