// internal/fixedwidth/writer.go
package fixedwidth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// Writer emits newline-terminated fixed-width lines.
// A non-positive width disables the width check.
type Writer struct {
	bw    *bufio.Writer
	width int
	lines int
}

// NewWriter wraps w. Callers must Flush when done.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{bw: bufio.NewWriter(w), width: width}
}

// WriteLine writes line followed by "\n".
// Returns ErrLineWidth if the line is not exactly width characters.
func (w *Writer) WriteLine(line string) error {
	if w.width > 0 {
		if n := utf8.RuneCountInString(line); n != w.width {
			return fmt.Errorf("%w: line %d has %d characters, want %d", types.ErrLineWidth, w.lines+1, n, w.width)
		}
	}
	if _, err := w.bw.WriteString(line); err != nil {
		return fmt.Errorf("failed to write line %d: %w", w.lines+1, err)
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write line %d: %w", w.lines+1, err)
	}
	w.lines++
	return nil
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// File is a Writer backed by a file on disk.
type File struct {
	*Writer
	f *os.File
}

// Create creates (or truncates) path, making parent directories as needed.
func Create(path string, width int) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &File{Writer: NewWriter(f, width), f: f}, nil
}

// Name returns the path of the underlying file.
func (f *File) Name() string {
	return f.f.Name()
}

// Close flushes buffered lines and closes the file.
func (f *File) Close() error {
	flushErr := f.Flush()
	closeErr := f.f.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush output file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return nil
}

// WriteLines writes all lines to path in order and closes the file.
func WriteLines(path string, width int, lines []string) error {
	f, err := Create(path, width)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := f.WriteLine(line); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
