package pico

// Precision is the size of one stored unit, in milliseconds.
//
// Implementations are empty struct types so that the precision is part of
// the Duration type itself and two durations of different precisions can
// never be mixed by accident.
type Precision interface {
	Millis() uint64
}

// Millisecond is a 1ms precision.
type Millisecond struct{}

// Millis implements Precision.
func (Millisecond) Millis() uint64 { return 1 }

// Centisecond is a 10ms precision.
type Centisecond struct{}

// Millis implements Precision.
func (Centisecond) Millis() uint64 { return 10 }

// Second is a 1s precision.
type Second struct{}

// Millis implements Precision.
func (Second) Millis() uint64 { return 1_000 }

// Minute is a 1m precision.
type Minute struct{}

// Millis implements Precision.
func (Minute) Millis() uint64 { return 60_000 }

// precisionOf returns the unit size of P. A zero unit is treated as 1ms.
func precisionOf[P Precision]() uint64 {
	var p P
	if ms := p.Millis(); ms > 0 {
		return ms
	}
	return 1
}
