package core

import (
	"errors"
	"fmt"
)

// ========== Error taxonomy ==========
//
// The boundary layer maps these to status codes; the core never
// collapses them into a generic failure.

// ErrVideoNotFound is the expected outcome of looking up an unknown
// video identifier. It is not an I/O error.
var ErrVideoNotFound = errors.New("video not found")

// RecognitionError reports a failed recognition pass. The request
// fails, no partial result is produced.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition failed: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// AlignmentUnsupportedError signals that no alignment model exists for
// the language. It is distinct from AlignmentError: the recognition
// output is still valid, so the coarse segments ride along for callers
// that choose segment-only fallback.
type AlignmentUnsupportedError struct {
	Language string
	Segments []Segment
}

func (e *AlignmentUnsupportedError) Error() string {
	return fmt.Sprintf("alignment not supported for language %q", e.Language)
}

// AlignmentError reports a failed alignment pass for a language that
// does have an alignment model.
type AlignmentError struct {
	Language string
	Err      error
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment failed for language %q: %v", e.Language, e.Err)
}

func (e *AlignmentError) Unwrap() error { return e.Err }

// ModelConstructionError reports a failed model load. Construction
// failures are never cached; the next call retries from scratch.
type ModelConstructionError struct {
	Kind string // "recognition" or "alignment"
	Err  error
}

func (e *ModelConstructionError) Error() string {
	return fmt.Sprintf("could not load %s model: %v", e.Kind, e.Err)
}

func (e *ModelConstructionError) Unwrap() error { return e.Err }
