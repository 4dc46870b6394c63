package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"coverscan/internal/appform"
)

// DecodeRecord parses a provider's text output into a partial record.
// Field-level confidence normalization happens in the appform unmarshalers;
// entity ids are left empty, the pipeline assigns them after merging.
func DecodeRecord(text string) (*appform.Record, error) {
	text = stripCodeFences(text)

	var rec appform.Record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return nil, fmt.Errorf("parsing provider JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	return &rec, nil
}

// stripCodeFences removes a markdown code fence wrapper if the provider
// ignored the no-fences instruction.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
