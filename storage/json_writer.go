package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"media-etl/models"
)

// JSONWriter writes raw interaction records to array-JSON files in a
// directory, producing the pipeline's expected input format.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates the output directory (if missing) and returns a
// writer targeting it.
func NewJSONWriter(dir string) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{dir: dir}, nil
}

// WriteFiles splits records across numFiles files named interactions_N.json,
// each a single indented JSON array. The last file absorbs the remainder.
func (w *JSONWriter) WriteFiles(records []models.RawRecord, numFiles int) error {
	if numFiles < 1 {
		numFiles = 1
	}
	perFile := len(records) / numFiles

	for i := 0; i < numFiles; i++ {
		start := i * perFile
		end := start + perFile
		if i == numFiles-1 {
			end = len(records)
		}

		path := filepath.Join(w.dir, fmt.Sprintf("interactions_%d.json", i+1))
		data, err := json.MarshalIndent(records[start:end], "", "  ")
		if err != nil {
			return fmt.Errorf("json: marshal %s: %w", path, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("json: write %s: %w", path, err)
		}
	}
	return nil
}
