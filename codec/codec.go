// Package codec selects the encoding used for machine-readable tool output
// such as paxdump's metadata and row dumps.
package codec

import (
	"fmt"
	"io"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Appender is implemented by codecs that can encode into a caller buffer.
type Appender interface {
	Append(dst []byte, v any) ([]byte, error)
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the built-in codec names.
func Names() []string { return []string{"json", "go-json"} }

// LineWriter writes one encoded value per line. It is not safe for
// concurrent use.
type LineWriter struct {
	w   io.Writer
	c   Codec
	buf []byte
}

// NewLineWriter returns a LineWriter encoding with c, or Default if c is nil.
func NewLineWriter(w io.Writer, c Codec) *LineWriter {
	if c == nil {
		c = Default
	}
	return &LineWriter{w: w, c: c}
}

// Write encodes v followed by a newline.
func (l *LineWriter) Write(v any) error {
	var err error
	if a, ok := l.c.(Appender); ok {
		l.buf, err = a.Append(l.buf[:0], v)
	} else {
		l.buf, err = l.c.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("codec %s: %w", l.c.Name(), err)
	}
	l.buf = append(l.buf, '\n')
	_, err = l.w.Write(l.buf)
	return err
}
