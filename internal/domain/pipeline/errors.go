package pipeline

import "fmt"

// ProbeError means a file could not be parsed as media. It is the only
// fatal failure in the ingest path and occurs before any asset exists.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ExtractionError means one sample sub-step (frame or audio) failed.
// Downstream stages proceed with the sample missing.
type ExtractionError struct {
	Kind string // "frame" or "audio"
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// InferenceError means an external analysis call failed. The stage
// substitutes its documented fallback value.
type InferenceError struct {
	Stage string // "transcribe", "vision", or "content"
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
