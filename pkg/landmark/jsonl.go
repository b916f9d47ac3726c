package landmark

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// maxLineSize bounds one JSON-lines record; a refined mesh is ~40KB.
const maxLineSize = 1 << 20

// ReadFrames decodes a JSON-lines recording, one Frame per line.
// Blank lines are skipped. fn is called in file order; returning an error stops
// reading and that error is returned.
func ReadFrames(r io.Reader, fn func(Frame) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("landmark: line %d: %w", line, err)
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("landmark: read recording: %w", err)
	}
	return nil
}

// FrameWriter encodes frames as JSON lines. It is safe for concurrent use.
type FrameWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewFrameWriter creates a writer on w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{enc: json.NewEncoder(w)}
}

// Write appends one frame.
func (fw *FrameWriter) Write(f Frame) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.enc.Encode(f)
}
