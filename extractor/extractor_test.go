package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"media-etl/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestExtractArrayFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[
		{"user_id": "u1", "action": "read"},
		{"user_id": "u2", "action": "share"}
	]`)

	records, err := New(newTestLogger()).Extract(dir)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["user_id"] != "u1" || records[1]["user_id"] != "u2" {
		t.Errorf("records out of order: %v", records)
	}
}

func TestExtractLineDelimitedFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "events.json", `{"user_id": "u1"}

{"user_id": "u2"}
{"user_id": "u3"}
`)

	records, err := New(newTestLogger()).Extract(dir)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records (blank lines ignored), got %d", len(records))
	}
}

func TestExtractMergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"n": "1"}, {"n": "2"}]`)
	writeFile(t, dir, "b.json", `{"n": "3"}`)

	records, err := New(newTestLogger()).Extract(dir)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"1", "2", "3"} {
		if records[i]["n"] != want {
			t.Errorf("record %d = %v; want n=%s", i, records[i], want)
		}
	}
}

func TestExtractSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"user_id": "broken"`)
	writeFile(t, dir, "good.json", `[{"user_id": "u1"}, {"user_id": "u2"}]`)

	records, err := New(newTestLogger()).Extract(dir)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records from the valid file only, got %d", len(records))
	}
}

func TestExtractEmptyDirectory(t *testing.T) {
	records, err := New(newTestLogger()).Extract(t.TempDir())
	if err != nil {
		t.Fatalf("Extract on empty dir returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestExtractIgnoresNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", `not json at all`)
	writeFile(t, dir, "data.json", `[{"user_id": "u1"}]`)

	records, err := New(newTestLogger()).Extract(dir)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}
