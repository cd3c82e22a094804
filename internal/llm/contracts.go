package llm

import (
	"context"
	"fmt"
)

// Generator is the reasoning-service contract the pipeline depends on.
//
// GenerateJSON returns the decoded object together with the cleaned raw
// text it was decoded from. A reply that cannot be decoded yields an empty
// map and a nil error: one malformed model response must not abort a whole
// claim. Callers that need a required field treat its absence as a
// per-document failure.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (map[string]any, string, error)
}

// ExhaustedError reports that every candidate model failed for one call.
// It carries the last observed error for diagnostics and is the only error
// shape Generate* return, so call sites can tell exhaustion apart from an
// empty structured result via errors.As.
type ExhaustedError struct {
	Candidates int
	LastErr    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d candidate models failed, last error: %v", e.Candidates, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}
