package models

import (
	"errors"
	"fmt"
	"strings"
)

// Application-wide standard errors
var (
	// Common resource errors
	ErrNotFound     = errors.New("resource not found")
	ErrGameNotFound = errors.New("game not found")

	// Refinement preconditions
	ErrNoArtifact       = errors.New("game has no built artifact to refine")
	ErrEmptyInstruction = errors.New("refinement instruction is empty")

	// PatchMatchMiss: a single edit's search text was not found in the
	// artifact. Recoverable; the edit is skipped and the refinement call
	// still succeeds.
	ErrPatchMatchMiss = errors.New("patch search text not found in artifact")

	// General request/server errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)

// ProviderErrorKind classifies a generation provider failure. Callers must
// inspect the kind before treating a provider error as retryable.
type ProviderErrorKind string

const (
	ProviderErrTransport ProviderErrorKind = "transport"
	ProviderErrQuota     ProviderErrorKind = "quota"
	ProviderErrPolicy    ProviderErrorKind = "policy"
)

// ProviderError is returned when the generation provider rejects or fails a
// request. Always fatal to the phase that issued the request; this core never
// retries it silently.
type ProviderError struct {
	Kind ProviderErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err with a provider failure classification.
func NewProviderError(kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Kind: kind, Err: err}
}

// MalformedResponseError is returned when every sanitization strategy failed
// to recover parseable structured data from a raw model response.
type MalformedResponseError struct {
	// Snippet holds the start of the offending response for diagnostics.
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("no parseable JSON found in model response (starts with %q)", e.Snippet)
}

// ValidationError is returned when a parsed response is not an object or
// omits required fields. Missing lists every absent field, not just the first.
type ValidationError struct {
	Context string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s: response is not a JSON object", e.Context)
	}
	return fmt.Sprintf("%s: missing required fields: %s", e.Context, strings.Join(e.Missing, ", "))
}
