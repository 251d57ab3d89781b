package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"media-etl/models"
	"media-etl/utils"
)

// Extractor reads raw interaction records from JSON files in a directory.
// Two encodings are tolerated per file: a single JSON array of objects, or
// newline-delimited JSON with one object per non-blank line.
type Extractor struct {
	logger *utils.Logger
}

// New creates an Extractor with the given logger.
func New(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads every *.json file directly inside dir (non-recursive) and
// returns the concatenation of all successfully parsed records in file-then-
// line order. A file that cannot be read or parsed is skipped with a logged
// error; extraction never aborts the run for one bad file. An empty
// directory yields an empty set and a nil error.
func (e *Extractor) Extract(dir string) ([]models.RawRecord, error) {
	e.logger.Info("[extractor] Starting data extraction from %s", dir)

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("extractor: glob %q: %w", dir, err)
	}

	if len(files) == 0 {
		e.logger.Warn("[extractor] No JSON files found in %s", dir)
		return nil, nil
	}

	var all []models.RawRecord
	for _, path := range files {
		e.logger.Info("[extractor] Processing file: %s", path)

		records, err := parseFile(path)
		if err != nil {
			e.logger.Error("[extractor] Error processing file %s: %v", path, err)
			continue
		}

		all = append(all, records...)
		e.logger.Info("[extractor] Successfully processed %d records from %s", len(records), path)
	}

	if len(all) == 0 {
		e.logger.Warn("[extractor] No data was extracted from any files")
		return nil, nil
	}

	e.logger.Info("[extractor] Extracted %d total records from %d files", len(all), len(files))
	return all, nil
}

// parseFile sniffs the first non-whitespace byte to pick the encoding.
// A parse failure anywhere discards the whole file: files are atomic units.
func parseFile(path string) ([]models.RawRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []models.RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parse JSON array: %w", err)
		}
		return records, nil
	}

	// Line-delimited JSON, one object per non-blank line.
	var records []models.RawRecord
	for i, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec models.RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
