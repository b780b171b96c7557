package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatRaw(t *testing.T) {
	raw := `{"type":"item.completed","item":{"type":"command_execution"}}
{"type":"turn.completed"}`

	formatted := FormatRaw(raw)

	if !strings.Contains(formatted, "\n\n") {
		t.Error("expected blank line between formatted objects")
	}
	if !strings.Contains(formatted, "  \"type\": \"item.completed\"") {
		t.Error("expected pretty-printed JSON")
	}
	if !strings.HasSuffix(formatted, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestFormatRaw_KeepsMalformedLines(t *testing.T) {
	raw := `{"type":"turn.started"}
this is not json
{"type":"turn.completed"}`

	formatted := FormatRaw(raw)

	if !strings.Contains(formatted, "this is not json") {
		t.Error("malformed line should be preserved as-is")
	}
	if !strings.Contains(formatted, "turn.completed") {
		t.Error("records after a malformed line should still be formatted")
	}
}

func TestFormatRaw_Empty(t *testing.T) {
	if got := FormatRaw(""); got != "" {
		t.Errorf("FormatRaw(\"\") = %q, want empty", got)
	}
}

func TestSplitRecords_CompactJSONL(t *testing.T) {
	content := `{"type":"a"}
{"type":"b"}`

	records, dropped := SplitRecords(content)
	if len(records) != 2 || dropped != 0 {
		t.Fatalf("got %d records, %d dropped; want 2, 0", len(records), dropped)
	}
	if records[0]["type"] != "a" || records[1]["type"] != "b" {
		t.Errorf("records out of order: %v", records)
	}
}

func TestSplitRecords_FormattedTrace(t *testing.T) {
	content := FormatRaw(`{"type":"a","n":1}
{"type":"b","n":2}`)

	records, dropped := SplitRecords(content)
	if len(records) != 2 || dropped != 0 {
		t.Fatalf("got %d records, %d dropped; want 2, 0", len(records), dropped)
	}
}

func TestSplitRecords_DropsBadChunks(t *testing.T) {
	content := `{"type":"a"}
not json at all
{"type":"b"}`

	records, dropped := SplitRecords(content)
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
	if dropped != 1 {
		t.Errorf("got %d dropped, want 1", dropped)
	}
}

func TestReadRecords_MissingFile(t *testing.T) {
	records, dropped, err := ReadRecords(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if len(records) != 0 || dropped != 0 {
		t.Errorf("got %d records, %d dropped; want 0, 0", len(records), dropped)
	}
}

func TestReadRecords_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	content := FormatRaw(`{"type":"session.started"}
{"type":"item.completed","item":{"type":"command_execution","command":"ls"}}`)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, dropped, err := ReadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || dropped != 0 {
		t.Fatalf("got %d records, %d dropped; want 2, 0", len(records), dropped)
	}
	if records[0]["type"] != "session.started" {
		t.Errorf("first record type = %v", records[0]["type"])
	}
}
