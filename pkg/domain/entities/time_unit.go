package entities

// TimeUnit is the closed set of rate units an operation time can be expressed in.
// Labels are matched exactly; anything else is UnknownUnit and contributes no time.
type TimeUnit int

const (
	UnknownUnit TimeUnit = iota
	TotalHours
	TotalMinutes
	HoursPerPiece
	HoursPer100Pieces
	HoursPer1000Pieces
	MinutesPerPiece
	MinutesPer100Pieces
	MinutesPer1000Pieces
	PiecesPerHour
	PiecesPerMinute
	SecondsPerPiece
)

var timeUnitLabels = map[TimeUnit]string{
	TotalHours:           "Total Hours",
	TotalMinutes:         "Total Minutes",
	HoursPerPiece:        "Hours/Piece",
	HoursPer100Pieces:    "Hours/100 Pieces",
	HoursPer1000Pieces:   "Hours/1000 Pieces",
	MinutesPerPiece:      "Minutes/Piece",
	MinutesPer100Pieces:  "Minutes/100 Pieces",
	MinutesPer1000Pieces: "Minutes/1000 Pieces",
	PiecesPerHour:        "Pieces/Hour",
	PiecesPerMinute:      "Pieces/Minute",
	SecondsPerPiece:      "Seconds/Piece",
}

var timeUnitsByLabel = func() map[string]TimeUnit {
	byLabel := make(map[string]TimeUnit, len(timeUnitLabels))
	for unit, label := range timeUnitLabels {
		byLabel[label] = unit
	}
	return byLabel
}()

// ParseTimeUnit maps a unit label to a TimeUnit. The second return value is
// false when the label is not recognized.
func ParseTimeUnit(label string) (TimeUnit, bool) {
	unit, ok := timeUnitsByLabel[label]
	return unit, ok
}

// TimeUnits returns every recognized unit in declaration order
func TimeUnits() []TimeUnit {
	units := make([]TimeUnit, 0, len(timeUnitLabels))
	for u := TotalHours; u <= SecondsPerPiece; u++ {
		units = append(units, u)
	}
	return units
}

// String returns the unit label, or "Unknown"
func (u TimeUnit) String() string {
	if label, ok := timeUnitLabels[u]; ok {
		return label
	}
	return "Unknown"
}

// IsSetupOnly reports whether the unit is a fixed total that only applies to setup time
func (u TimeUnit) IsSetupOnly() bool {
	return u == TotalHours || u == TotalMinutes
}

// MarshalText implements encoding.TextMarshaler. UnknownUnit marshals to "".
func (u TimeUnit) MarshalText() ([]byte, error) {
	return []byte(timeUnitLabels[u]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized labels
// decode to UnknownUnit rather than failing.
func (u *TimeUnit) UnmarshalText(text []byte) error {
	parsed, _ := ParseTimeUnit(string(text))
	*u = parsed
	return nil
}
