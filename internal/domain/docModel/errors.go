package docModel

import "fmt"

// ValidationError rejects a request before any pipeline work happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// ParseError means the document format was unsupported or corrupt.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmbeddingError wraps an embedding-provider failure. It is never retried by
// the core; retry policy belongs to the calling layer.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return "embedding provider: " + e.Err.Error() }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// DimensionError is a programming or configuration error: vector width or
// chunk/embedding count mismatch. Fails fast, never truncated or padded.
type DimensionError struct {
	Want int
	Got  int
	What string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch (%s): want %d, got %d", e.What, e.Want, e.Got)
}

// ConsistencyError means the index row count diverged from the chunk log.
// Fatal at load time: the store refuses to serve misaligned results.
type ConsistencyError struct {
	IndexRows int
	LogRows   int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("index has %d rows but chunk log has %d entries", e.IndexRows, e.LogRows)
}
