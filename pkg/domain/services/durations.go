package services

import "github.com/vsinha/methodtree/pkg/domain/entities"

const (
	millisecondsPerSecond = 1000
	millisecondsPerMinute = 60_000
	millisecondsPerHour   = 3_600_000
)

// MakeDurations converts the setup, labor and machine rates of op into
// milliseconds for a run of quantity pieces. A zero Pieces/Hour or
// Pieces/Minute rate yields +Inf or NaN; callers must check IsFinite.
func MakeDurations(op entities.Operation, quantity float64) entities.Duration {
	setup := SetupMilliseconds(op.SetupTime, op.SetupUnit, quantity)
	labor := RunMilliseconds(op.LaborTime, op.LaborUnit, quantity)
	machine := RunMilliseconds(op.MachineTime, op.MachineUnit, quantity)

	return entities.Duration{
		SetupDuration:   setup,
		LaborDuration:   labor,
		MachineDuration: machine,
		Duration:        setup + labor + machine,
	}
}

// SetupMilliseconds converts a setup time. Setup is the only component that
// accepts the fixed Total Hours and Total Minutes units.
func SetupMilliseconds(rate float64, unit entities.TimeUnit, quantity float64) float64 {
	switch unit {
	case entities.TotalHours:
		return rate * millisecondsPerHour
	case entities.TotalMinutes:
		return rate * millisecondsPerMinute
	default:
		return RunMilliseconds(rate, unit, quantity)
	}
}

// RunMilliseconds converts a labor or machine time. Every unit scales with
// quantity; fixed totals and unknown units contribute zero.
func RunMilliseconds(rate float64, unit entities.TimeUnit, quantity float64) float64 {
	switch unit {
	case entities.HoursPerPiece:
		return rate * quantity * millisecondsPerHour
	case entities.HoursPer100Pieces:
		return (rate / 100) * quantity * millisecondsPerHour
	case entities.HoursPer1000Pieces:
		return (rate / 1000) * quantity * millisecondsPerHour
	case entities.MinutesPerPiece:
		return rate * quantity * millisecondsPerMinute
	case entities.MinutesPer100Pieces:
		return (rate / 100) * quantity * millisecondsPerMinute
	case entities.MinutesPer1000Pieces:
		return (rate / 1000) * quantity * millisecondsPerMinute
	case entities.PiecesPerHour:
		return (quantity / rate) * millisecondsPerHour
	case entities.PiecesPerMinute:
		return (quantity / rate) * millisecondsPerMinute
	case entities.SecondsPerPiece:
		return rate * quantity * millisecondsPerSecond
	case entities.TotalHours, entities.TotalMinutes, entities.UnknownUnit:
		return 0
	default:
		return 0
	}
}
