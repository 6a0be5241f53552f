// Package sanitize turns raw model output into validated structured data.
// The upstream producer is instructed to emit a pure JSON payload but
// sometimes wraps it in commentary or code fences; this package recovers the
// payload without attempting semantic repair of malformed structure.
package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

// Extract recovers a strict-parseable JSON payload from a raw model response.
// Strategies run in order and the first success wins:
//  1. strict parse of the whole trimmed text;
//  2. strict parse of the substring between the first opening brace and the
//     last closing brace (brackets when the payload is a top-level array);
//  3. removal of fenced-code wrappers followed by a strict parse.
//
// When all strategies fail the response is malformed and a
// MalformedResponseError is returned. Bracket balancing or other structural
// repair is never attempted.
func Extract(rawText string) (string, error) {
	trimmed := strings.TrimSpace(rawText)

	// 1. The whole text is already valid JSON.
	if isValidJSON(trimmed) {
		return trimmed, nil
	}

	// 2. Substring between the first opening and last closing delimiter.
	if candidate := sliceDelimited(trimmed); candidate != "" {
		if isValidJSON(candidate) {
			return candidate, nil
		}
	}

	// 3. Strip code fences and retry a strict parse of the block body.
	if candidate := stripFences(trimmed); candidate != "" {
		if isValidJSON(candidate) {
			return candidate, nil
		}
	}

	return "", &models.MalformedResponseError{Snippet: stringShort(trimmed, 80)}
}

// ValidateStructure checks that value is an object containing every required
// top-level field. The error names every missing field, not just the first.
// Field types and enum membership are deliberately not checked here; deeper
// validation belongs to the consumer of the value.
func ValidateStructure(value map[string]interface{}, requiredFields []string, context string) error {
	if value == nil {
		return &models.ValidationError{Context: context}
	}
	var missing []string
	for _, field := range requiredFields {
		if _, ok := value[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &models.ValidationError{Context: context, Missing: missing}
	}
	return nil
}

// DecodeObject parses jsonText as a generic object and validates its required
// fields in one step.
func DecodeObject(jsonText string, requiredFields []string, context string) (map[string]interface{}, error) {
	var value map[string]interface{}
	if err := json.Unmarshal([]byte(jsonText), &value); err != nil {
		return nil, &models.ValidationError{Context: context}
	}
	if err := ValidateStructure(value, requiredFields, context); err != nil {
		return nil, err
	}
	return value, nil
}

// isValidJSON reports whether s parses as JSON under the strict decoder.
func isValidJSON(s string) bool {
	if s == "" {
		return false
	}
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

// sliceDelimited returns the substring spanning the outermost JSON
// delimiters, preferring an object over an array when both occur.
func sliceDelimited(text string) string {
	firstBrace := strings.Index(text, "{")
	lastBrace := strings.LastIndex(text, "}")
	firstBracket := strings.Index(text, "[")
	lastBracket := strings.LastIndex(text, "]")

	start, end := -1, -1
	if firstBrace != -1 && (firstBracket == -1 || firstBrace < firstBracket) {
		start, end = firstBrace, lastBrace
	} else if firstBracket != -1 {
		start, end = firstBracket, lastBracket
	}

	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

// stripFences removes a fenced-code wrapper (```json ... ``` or ``` ... ```)
// and returns the first block body that parses, falling back to the text with
// all fence markers removed.
func stripFences(text string) string {
	if body, ok := fencedBody(text, "```json"); ok && isValidJSON(body) {
		return body
	}
	if body, ok := fencedBody(text, "```"); ok {
		// A generic fence may still carry a language tag on its first line.
		body = strings.TrimSpace(strings.TrimPrefix(body, "json"))
		if isValidJSON(body) {
			return body
		}
	}
	if strings.Contains(text, "```") {
		return strings.TrimSpace(strings.ReplaceAll(text, "```", ""))
	}
	return ""
}

// fencedBody extracts the content between an opening marker and the next
// closing ``` fence.
func fencedBody(text, opening string) (string, bool) {
	start := strings.Index(text, opening)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(opening):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// stringShort truncates s to maxLen, appending an ellipsis when truncated.
func stringShort(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
