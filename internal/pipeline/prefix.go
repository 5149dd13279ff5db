package pipeline

import (
	"bytes"
	"io"
	"sync"
)

// outputMu serializes writes from all task output streams so lines from
// concurrent tasks never interleave.
var outputMu sync.Mutex

// prefixWriter buffers partial lines and writes each complete line to w as
// "<task> | <line>".
type prefixWriter struct {
	w      io.Writer
	prefix []byte
	buf    []byte
}

func newPrefixWriter(w io.Writer, name string) *prefixWriter {
	return &prefixWriter{w: w, prefix: []byte(name + " | ")}
}

func (pw *prefixWriter) Write(b []byte) (int, error) {
	pw.buf = append(pw.buf, b...)

	rest := pw.buf
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		if err := pw.emit(rest[:i+1]); err != nil {
			return 0, err
		}
		rest = rest[i+1:]
	}
	pw.buf = append(pw.buf[:0], rest...)
	return len(b), nil
}

// Flush writes any trailing partial line, terminated with a newline.
func (pw *prefixWriter) Flush() {
	if len(pw.buf) == 0 {
		return
	}
	line := append(pw.buf, '\n')
	_ = pw.emit(line)
	pw.buf = pw.buf[:0]
}

func (pw *prefixWriter) emit(line []byte) error {
	out := make([]byte, 0, len(pw.prefix)+len(line))
	out = append(out, pw.prefix...)
	out = append(out, line...)

	outputMu.Lock()
	defer outputMu.Unlock()
	_, err := pw.w.Write(out)
	return err
}
