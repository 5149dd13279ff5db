package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/turbine-go/pkg/pico"
)

// ErrCorruptRecord is returned when a stored run record fails to decode.
var ErrCorruptRecord = errors.New("storage: corrupt run record")

const recordVersion = 1

// TaskStatus is the outcome of one task in a run.
type TaskStatus uint8

const (
	StatusUnknown TaskStatus = iota
	StatusSucceeded
	StatusFailed
	StatusSkipped
	StatusInterrupted
)

// String returns the lowercase status name.
func (s TaskStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TaskStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TaskRecord is one task's entry in a run summary.
type TaskRecord struct {
	Name     string                          `json:"name" yaml:"name"`
	Key      uint64                          `json:"key" yaml:"key"`
	Status   TaskStatus                      `json:"status" yaml:"status"`
	ExitCode int                             `json:"exit_code" yaml:"exit_code"`
	Duration pico.Duration[pico.Millisecond] `json:"duration_ms" yaml:"duration"`
}

// RunRecord summarizes one pipeline run. The start time is carried by ID.
type RunRecord struct {
	ID       ulid.ULID                  `json:"id" yaml:"id"`
	ExitCode int                        `json:"exit_code" yaml:"exit_code"`
	Total    pico.Duration[pico.Second] `json:"total_ms" yaml:"total"`
	Tasks    []TaskRecord               `json:"tasks" yaml:"tasks"`
}

// Frame layout:
//
//	version(1) | crc32(4) | exit(varint) | total(2) | n(uvarint) | tasks...
//	task: nameLen(uvarint) | name | key(8) | status(1) | exit(varint) | duration(2)
//
// The CRC covers everything after itself.

func encodeRunRecord(r *RunRecord) []byte {
	body := make([]byte, 0, 16+len(r.Tasks)*24)
	body = binary.AppendVarint(body, int64(r.ExitCode))
	body, _ = r.Total.AppendBinary(body)
	body = binary.AppendUvarint(body, uint64(len(r.Tasks)))
	for _, t := range r.Tasks {
		body = binary.AppendUvarint(body, uint64(len(t.Name)))
		body = append(body, t.Name...)
		body = binary.BigEndian.AppendUint64(body, t.Key)
		body = append(body, byte(t.Status))
		body = binary.AppendVarint(body, int64(t.ExitCode))
		body, _ = t.Duration.AppendBinary(body)
	}

	out := make([]byte, 0, 5+len(body))
	out = append(out, recordVersion)
	out = binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(body))
	return append(out, body...)
}

func decodeRunRecord(id ulid.ULID, data []byte) (*RunRecord, error) {
	if len(data) < 5 {
		return nil, ErrCorruptRecord
	}
	if data[0] != recordVersion {
		return nil, fmt.Errorf("%w: version %d", ErrCorruptRecord, data[0])
	}
	body := data[5:]
	if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(data[1:5]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptRecord)
	}

	d := decoder{buf: body}
	r := &RunRecord{ID: id}
	r.ExitCode = int(d.readVarint())
	d.readDuration(&r.Total)

	n := d.readUvarint()
	if d.err == nil && n > uint64(len(d.buf)) {
		d.err = ErrCorruptRecord
	}
	if d.err == nil && n > 0 {
		r.Tasks = make([]TaskRecord, 0, n)
	}
	for i := uint64(0); i < n && d.err == nil; i++ {
		var t TaskRecord
		t.Name = string(d.readBytes(d.readUvarint()))
		t.Key = d.readUint64()
		t.Status = TaskStatus(d.readByte())
		t.ExitCode = int(d.readVarint())
		d.readDuration(&t.Duration)
		r.Tasks = append(r.Tasks, t)
	}

	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, len(d.buf))
	}
	return r, nil
}

// decoder reads a record body; the first failure sticks in err and turns
// every later read into a no-op.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) take(n uint64) []byte {
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.buf)) {
		d.err = ErrCorruptRecord
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b
}

func (d *decoder) readBytes(n uint64) []byte { return d.take(n) }

func (d *decoder) readByte() byte {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) readUint64() uint64 {
	if b := d.take(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) readVarint() int64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Varint(d.buf)
	if n <= 0 {
		d.err = ErrCorruptRecord
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) readUvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		d.err = ErrCorruptRecord
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) readDuration(dst interface{ UnmarshalBinary([]byte) error }) {
	b := d.take(pico.Size)
	if b == nil {
		return
	}
	if err := dst.UnmarshalBinary(b); err != nil {
		d.err = err
	}
}
