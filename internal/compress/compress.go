// Package compress bounds the size of an artifact before it is re-submitted
// as context to a later generation call. Embedded binary and geometry data is
// irrelevant to a textual edit and would blow the request's input budget.
package compress

import (
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Placeholder tokens substituted for oversized content. Neither token matches
// the pattern it replaces, which keeps compression idempotent. Placeholders
// exist only in compressed context, never in the artifact of record.
const (
	DataURIPlaceholder = "[DATA_URI_OMITTED]"
	ArrayPlaceholder   = "[LONG_ARRAY_OMITTED]"
)

var (
	// data:<mime>;base64,<payload>
	dataURIPattern = regexp.MustCompile(`data:[a-zA-Z0-9][a-zA-Z0-9.+/-]*;base64,[A-Za-z0-9+/=]+`)
	// Bracketed literal of more than ten comma-separated numbers.
	longArrayPattern = regexp.MustCompile(`\[\s*(?:-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\s*,\s*){10,}-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\s*\]`)
)

// Compress replaces embedded base64 data URIs and long numeric array literals
// with fixed placeholders. The transformation is lossy and one-directional;
// the result serves as request context only and is never stored back as the
// artifact.
func Compress(text string) string {
	out := dataURIPattern.ReplaceAllString(text, DataURIPlaceholder)
	out = longArrayPattern.ReplaceAllString(out, ArrayPlaceholder)
	return out
}

// ContainsPlaceholder reports whether s carries a compression placeholder.
// Since placeholders never occur in the full artifact, an edit that targets
// one can never match and is skipped up front.
func ContainsPlaceholder(s string) bool {
	return strings.Contains(s, DataURIPlaceholder) || strings.Contains(s, ArrayPlaceholder)
}

// EstimateTokens approximates how many tokens text occupies in the context
// window of the given model. Falls back to a bytes/4 heuristic when no
// tokenizer is known for the model.
func EstimateTokens(text, model string) int {
	if tke, err := tiktoken.EncodingForModel(model); err == nil {
		return len(tke.Encode(text, nil, nil))
	}
	return len(text) / 4
}
