package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"media-etl/models"
	"media-etl/utils"
)

// fakeWriter emulates the store's conflict rule: a (interaction_id,
// event_date) pair inserts once and is skipped on every later attempt.
type fakeWriter struct {
	schemaCalls int
	writeCalls  int
	schemaErr   error
	writeErr    error
	seen        map[string]struct{}
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{seen: make(map[string]struct{})}
}

func (f *fakeWriter) EnsureSchema() error {
	f.schemaCalls++
	return f.schemaErr
}

func (f *fakeWriter) Write(interactions []*models.Interaction) (models.InsertSummary, error) {
	f.writeCalls++
	if f.writeErr != nil {
		return models.InsertSummary{}, f.writeErr
	}

	var summary models.InsertSummary
	for _, in := range interactions {
		key := in.InteractionID + "|" + in.EventDate.Format("2006-01-02")
		if _, dup := f.seen[key]; dup {
			summary.Skipped++
			continue
		}
		f.seen[key] = struct{}{}
		summary.Inserted++
	}
	return summary, nil
}

func (f *fakeWriter) Close() error { return nil }

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

const validFile = `[
	{"user_id": "u1", "session_id": "s1", "timestamp": "2025-03-15T10:00:00Z",
	 "page_url": "https://news.example.com/sports/article-42", "action": "read"},
	{"user_id": "u2", "session_id": "s2", "timestamp": "2025-03-16T11:00:00Z",
	 "page_url": "https://news.example.com/health/article-7", "action": "share"}
]`

func TestRunCompletes(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "events.json", validFile)

	writer := newFakeWriter()
	state, summary := New(newTestLogger(), writer).Run(dir)

	if state != StateLoaded {
		t.Fatalf("state = %s; want %s", state, StateLoaded)
	}
	if writer.schemaCalls != 1 {
		t.Errorf("EnsureSchema called %d times; want 1", writer.schemaCalls)
	}
	if summary.Inserted != 2 || summary.Skipped != 0 {
		t.Errorf("summary = %+v; want 2 inserted, 0 skipped", summary)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "events.json", validFile)

	writer := newFakeWriter()
	logger := newTestLogger()

	if _, first := New(logger, writer).Run(dir); first.Inserted != 2 {
		t.Fatalf("first run inserted %d; want 2", first.Inserted)
	}

	state, second := New(logger, writer).Run(dir)
	if state != StateLoaded {
		t.Fatalf("second run state = %s; want %s", state, StateLoaded)
	}
	if second.Inserted != 0 || second.Skipped != 2 {
		t.Errorf("second run summary = %+v; want 0 inserted, 2 skipped", second)
	}
}

func TestRunEmptyDirectoryIsNotAFailure(t *testing.T) {
	writer := newFakeWriter()
	state, summary := New(newTestLogger(), writer).Run(t.TempDir())

	if state == StateFailed {
		t.Fatal("empty directory must not end in FAILED")
	}
	if state != StateExtracted {
		t.Errorf("state = %s; want %s (short-circuit after empty extraction)", state, StateExtracted)
	}
	if writer.writeCalls != 0 {
		t.Errorf("Write called %d times on empty input; want 0", writer.writeCalls)
	}
	if summary.Inserted != 0 {
		t.Errorf("summary.Inserted = %d; want 0", summary.Inserted)
	}
}

func TestRunFailsOnSchemaError(t *testing.T) {
	writer := newFakeWriter()
	writer.schemaErr = errors.New("connection refused")

	state, _ := New(newTestLogger(), writer).Run(t.TempDir())
	if state != StateFailed {
		t.Errorf("state = %s; want %s", state, StateFailed)
	}
}

func TestRunFailsOnTransformError(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "events.json", `[
		{"user_id": "u1", "session_id": "s1", "timestamp": "garbage",
		 "page_url": "https://news.example.com/sports/article-1", "action": "read"}
	]`)

	writer := newFakeWriter()
	state, _ := New(newTestLogger(), writer).Run(dir)

	if state != StateFailed {
		t.Fatalf("state = %s; want %s", state, StateFailed)
	}
	if writer.writeCalls != 0 {
		t.Errorf("Write must not run after a transform failure; called %d times", writer.writeCalls)
	}
}

func TestRunFailsOnLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "events.json", validFile)

	writer := newFakeWriter()
	writer.writeErr = errors.New("deadlock detected")

	state, _ := New(newTestLogger(), writer).Run(dir)
	if state != StateFailed {
		t.Errorf("state = %s; want %s", state, StateFailed)
	}
}

func TestRunSurvivesMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bad.json", `{"user_id": "broken"`)
	writeFixture(t, dir, "good.json", validFile)

	writer := newFakeWriter()
	state, summary := New(newTestLogger(), writer).Run(dir)

	if state != StateLoaded {
		t.Fatalf("state = %s; want %s", state, StateLoaded)
	}
	if summary.Inserted != 2 {
		t.Errorf("inserted %d records; want 2 from the valid file", summary.Inserted)
	}
}
