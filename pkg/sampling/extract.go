package sampling

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractionError reports raw generator output that could not be parsed
// into a record. It counts as a failed attempt, never as a fatal error.
type ExtractionError struct {
	// Reason describes why extraction failed.
	Reason string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("record extraction failed: %s", e.Reason)
}

// Extract pulls a structured record out of raw generator text using a
// layered strategy: first the whole text is parsed as a JSON object;
// when that fails, the first balanced brace-delimited substring is
// located and parsed instead.
func Extract(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ExtractionError{Reason: "empty output"}
	}

	if record, ok := parseObject(trimmed); ok {
		return record, nil
	}

	candidate, found := firstBalancedObject(trimmed)
	if !found {
		return nil, &ExtractionError{Reason: "no brace-delimited object found"}
	}
	if record, ok := parseObject(candidate); ok {
		return record, nil
	}
	return nil, &ExtractionError{Reason: "embedded object is not valid JSON"}
}

// parseObject parses text as a JSON object. Top-level arrays, scalars
// and malformed documents are rejected.
func parseObject(text string) (map[string]any, bool) {
	var record map[string]any
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, false
	}
	if record == nil {
		return nil, false
	}
	return record, true
}

// firstBalancedObject scans for the first '{' and returns the substring
// through its matching '}'. Braces inside JSON string literals are
// ignored, including escaped quotes.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
