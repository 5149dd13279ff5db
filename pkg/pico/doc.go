// Package pico stores elapsed-time measurements in two bytes.
//
// A Duration keeps a single uint16 magnitude counted in units of a
// type-level precision P:
//
//   - Millisecond: 1ms resolution, up to ~65.5s
//   - Centisecond: 10ms resolution, up to ~10.9m
//   - Second: 1s resolution, up to ~18.2h
//   - Minute: 1m resolution, up to ~45.5d
//
// Conversions never fail. Zero is kept distinct from "a little time
// passed": any strictly positive measurement shorter than one unit is
// recorded as Min (one unit), and anything at or beyond the representable
// range saturates to Max.
//
// Usage:
//
//	d := pico.FromDuration[pico.Millisecond](elapsed)
//	buf, _ := d.MarshalBinary() // 2 bytes
//	fmt.Println(d)              // printed as a time.Duration
//
// @design DS-0301
package pico
