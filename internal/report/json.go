package report

import (
	"encoding/json"
	"fmt"
)

// FormatJSON renders any report as indented JSON.
func FormatJSON(r interface{}) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}
