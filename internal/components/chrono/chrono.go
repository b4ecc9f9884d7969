package chrono

import "time"

// TimeAPI is the interface anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
}

// StandardTime is the TimeAPI backed by the system clock, always in UTC.
type StandardTime struct{}

func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().UTC()
}

// FixedTime is a TimeAPI that always returns the same instant.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At
}
