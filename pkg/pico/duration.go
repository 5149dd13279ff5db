package pico

import (
	"math"
	"math/bits"
	"time"
)

const maxUnits = math.MaxUint16

// Duration is a time interval stored as a uint16 count of P units.
//
// The zero value is Zero. Durations of the same precision compare with ==
// by stored magnitude.
type Duration[P Precision] struct {
	units uint16
}

// Zero returns the zero-length duration.
func Zero[P Precision]() Duration[P] { return Duration[P]{} }

// Min returns the smallest non-zero duration (exactly one unit).
//
// Positive measurements shorter than one unit are recorded as Min rather
// than Zero.
func Min[P Precision]() Duration[P] { return Duration[P]{units: 1} }

// Max returns the saturated duration.
func Max[P Precision]() Duration[P] { return Duration[P]{units: maxUnits} }

// FromUnits builds a duration from a raw magnitude.
func FromUnits[P Precision](units uint16) Duration[P] { return Duration[P]{units: units} }

// FromMillis converts a millisecond count.
func FromMillis[P Precision](millis uint64) Duration[P] {
	if millis == 0 {
		return Zero[P]()
	}
	p := precisionOf[P]()
	if millis <= p {
		return Min[P]()
	}
	return saturate[P](millis / p)
}

// FromSeconds converts a second count.
//
// The intermediate secs*1000 is computed in 128 bits so that large inputs
// saturate instead of wrapping.
func FromSeconds[P Precision](secs uint64) Duration[P] {
	if secs == 0 {
		return Zero[P]()
	}
	p := precisionOf[P]()
	if secs <= p/1_000 {
		return Min[P]()
	}
	hi, lo := bits.Mul64(secs, 1_000)
	if hi >= p {
		// quotient does not fit in 64 bits
		return Max[P]()
	}
	q, _ := bits.Div64(hi, lo, p)
	return saturate[P](q)
}

// FromDuration converts a time.Duration. Non-positive durations are Zero;
// positive sub-millisecond durations are Min.
func FromDuration[P Precision](d time.Duration) Duration[P] {
	if d <= 0 {
		return Zero[P]()
	}
	millis := uint64(d / time.Millisecond)
	if millis == 0 {
		return Min[P]()
	}
	return FromMillis[P](millis)
}

// Since is shorthand for FromDuration(time.Since(t)).
func Since[P Precision](t time.Time) Duration[P] {
	return FromDuration[P](time.Since(t))
}

func saturate[P Precision](units uint64) Duration[P] {
	if units > maxUnits {
		return Max[P]()
	}
	return Duration[P]{units: uint16(units)}
}

// Units returns the stored magnitude.
func (d Duration[P]) Units() uint16 { return d.units }

// IsZero reports whether d is Zero.
func (d Duration[P]) IsZero() bool { return d.units == 0 }

// IsMax reports whether d is saturated.
func (d Duration[P]) IsMax() bool { return d.units == maxUnits }

// Millis returns the expanded length in milliseconds.
func (d Duration[P]) Millis() uint64 {
	hi, lo := bits.Mul64(uint64(d.units), precisionOf[P]())
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// Duration expands d to a time.Duration. Expansions beyond the
// time.Duration range saturate at math.MaxInt64.
func (d Duration[P]) Duration() time.Duration {
	ms := d.Millis()
	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// Equal reports whether the expansion of d is exactly other.
func (d Duration[P]) Equal(other time.Duration) bool {
	return d.Duration() == other
}

// Compare returns -1, 0 or +1 depending on whether d is shorter than,
// equal to or longer than other.
func (d Duration[P]) Compare(other Duration[P]) int {
	switch {
	case d.units < other.units:
		return -1
	case d.units > other.units:
		return 1
	default:
		return 0
	}
}

// Less reports whether d is shorter than other.
func (d Duration[P]) Less(other Duration[P]) bool { return d.units < other.units }

// Add returns d+other, saturating at Max.
func (d Duration[P]) Add(other Duration[P]) Duration[P] {
	return saturate[P](uint64(d.units) + uint64(other.units))
}

// String renders the expanded duration, e.g. "1m5s".
func (d Duration[P]) String() string {
	return d.Duration().String()
}

// GoString renders the expanded duration for %#v.
func (d Duration[P]) GoString() string {
	return "pico.Duration(" + d.Duration().String() + ")"
}
