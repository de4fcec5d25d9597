package entities

import (
	"encoding/json"
	"testing"
)

func TestParseTimeUnit_ExactMatch(t *testing.T) {
	for _, unit := range TimeUnits() {
		parsed, ok := ParseTimeUnit(unit.String())
		if !ok {
			t.Errorf("Expected label %q to be recognized", unit.String())
		}
		if parsed != unit {
			t.Errorf("ParseTimeUnit(%q) = %v, want %v", unit.String(), parsed, unit)
		}
	}

	if got := len(TimeUnits()); got != 11 {
		t.Errorf("Expected 11 recognized units, got %d", got)
	}

	for _, label := range []string{"", "hours/piece", "Hours / Piece", "Hours/10 Pieces", "Total Seconds"} {
		if unit, ok := ParseTimeUnit(label); ok || unit != UnknownUnit {
			t.Errorf("Expected %q to be unrecognized, got %v", label, unit)
		}
	}
}

func TestTimeUnit_SetupOnly(t *testing.T) {
	for _, unit := range TimeUnits() {
		want := unit == TotalHours || unit == TotalMinutes
		if unit.IsSetupOnly() != want {
			t.Errorf("%v.IsSetupOnly() = %v, want %v", unit, unit.IsSetupOnly(), want)
		}
	}
}

func TestOperation_JSONUnits(t *testing.T) {
	payload := `{"id":"OP1","setupTime":1,"setupUnit":"Total Hours","laborTime":2,"laborUnit":"Hours/Piece","machineTime":3,"machineUnit":"Furlongs/Fortnight"}`

	var op Operation
	if err := json.Unmarshal([]byte(payload), &op); err != nil {
		t.Fatalf("Failed to decode operation: %v", err)
	}
	if op.SetupUnit != TotalHours {
		t.Errorf("Expected setup unit Total Hours, got %v", op.SetupUnit)
	}
	if op.LaborUnit != HoursPerPiece {
		t.Errorf("Expected labor unit Hours/Piece, got %v", op.LaborUnit)
	}
	if op.MachineUnit != UnknownUnit {
		t.Errorf("Expected unrecognized machine unit to decode as UnknownUnit, got %v", op.MachineUnit)
	}
}

func TestOperationRow_ToOperation(t *testing.T) {
	row := OperationRow{
		ID:          "OP1",
		SetupTime:   15,
		SetupUnit:   "Total Minutes",
		LaborTime:   30,
		LaborUnit:   "Seconds/Piece",
		MachineTime: 1,
		MachineUnit: "",
	}

	op := row.ToOperation()
	if op.SetupUnit != TotalMinutes || op.LaborUnit != SecondsPerPiece || op.MachineUnit != UnknownUnit {
		t.Errorf("Unexpected units: %v %v %v", op.SetupUnit, op.LaborUnit, op.MachineUnit)
	}
}
