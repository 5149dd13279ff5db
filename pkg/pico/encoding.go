package pico

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Size is the encoded length of a Duration in bytes.
const Size = 2

// ErrInvalidLength is returned when decoding input of the wrong size.
var ErrInvalidLength = errors.New("pico: invalid encoded length")

// AppendBinary appends the 2-byte big-endian magnitude to b.
func (d Duration[P]) AppendBinary(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint16(b, d.units), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d Duration[P]) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(make([]byte, 0, Size))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Duration[P]) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return ErrInvalidLength
	}
	d.units = binary.BigEndian.Uint16(data)
	return nil
}

// MarshalJSON encodes the expansion as integer milliseconds.
func (d Duration[P]) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, d.Millis(), 10), nil
}

// UnmarshalJSON decodes integer milliseconds through FromMillis.
func (d *Duration[P]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	ms, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*d = FromMillis[P](ms)
	return nil
}

// MarshalYAML encodes the expansion as a duration string.
func (d Duration[P]) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML decodes a duration string such as "1m30s" through
// FromDuration.
func (d *Duration[P]) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("pico: %w", err)
	}
	*d = FromDuration[P](td)
	return nil
}
