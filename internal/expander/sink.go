package expander

import (
	"bufio"
	"io"
)

// Sink is the single append-only output shared by every frame of a run.
// Each pass-through line is written followed by exactly one '\n'.
type Sink struct {
	w     *bufio.Writer
	lines int
	bytes int64
}

// NewSink wraps w in a buffered, line-counting sink.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w)}
}

// WriteLine appends text and a newline.
func (s *Sink) WriteLine(text string) error {
	n, err := s.w.WriteString(text)
	s.bytes += int64(n)
	if err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	s.bytes++
	s.lines++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (s *Sink) Flush() error {
	return s.w.Flush()
}

// Lines returns the number of lines written so far.
func (s *Sink) Lines() int {
	return s.lines
}

// Bytes returns the number of bytes written so far, newlines included.
func (s *Sink) Bytes() int64 {
	return s.bytes
}
