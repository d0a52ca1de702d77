// Package output emits the per-run JSON audit artifact: one array, one
// element per processed student, for downstream audit or UI consumption.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tovu/retain/internal/domain/model"
)

// Writer persists processed outcomes as a JSON array.
type Writer interface {
	Write(outcomes []model.Outcome) error
}

// FileWriter writes the array to a single file, creating parent
// directories as needed.
type FileWriter struct {
	path string
}

// NewFileWriter creates a writer targeting path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Path returns the target file path.
func (w *FileWriter) Path() string { return w.path }

// Write marshals the outcomes indented and writes them atomically
// enough for a batch artifact: full buffer, single WriteFile.
func (w *FileWriter) Write(outcomes []model.Outcome) error {
	if outcomes == nil {
		outcomes = []model.Outcome{}
	}
	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		return fmt.Errorf("write outcomes: %w", err)
	}
	return nil
}
