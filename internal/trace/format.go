package trace

import (
	"encoding/json"
	"os"
	"strings"
)

// FormatRaw converts compact JSONL output into a human-readable trace:
// each object pretty-printed, objects separated by blank lines.
// Malformed lines are kept as-is so nothing captured is lost.
func FormatRaw(raw string) string {
	var formatted []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			formatted = append(formatted, line)
			continue
		}
		pretty, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			formatted = append(formatted, line)
			continue
		}
		formatted = append(formatted, string(pretty))
	}
	if len(formatted) == 0 {
		return ""
	}
	return strings.Join(formatted, "\n\n") + "\n"
}

// SplitRecords splits trace content into raw JSON objects. It accepts
// both compact JSONL (one object per line) and the formatted form
// produced by FormatRaw (pretty-printed objects separated by blank
// lines). Chunks that fail to parse are counted as dropped; a bad
// record never stops parsing of the rest.
func SplitRecords(content string) (records []map[string]interface{}, dropped int) {
	var chunks []string
	if strings.Contains(content, "\n\n") {
		chunks = strings.Split(content, "\n\n")
	} else {
		chunks = strings.Split(strings.TrimSpace(content), "\n")
	}

	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(chunk), &obj); err != nil {
			dropped++
			continue
		}
		records = append(records, obj)
	}
	return records, dropped
}

// ReadRecords reads a trace file and splits it into raw JSON objects.
// A missing file yields no records and no error: an empty trace is a
// valid (if unhelpful) capture.
func ReadRecords(path string) (records []map[string]interface{}, dropped int, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	records, dropped = SplitRecords(string(content))
	return records, dropped, nil
}
