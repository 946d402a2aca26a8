package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals malformed or missing caller input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBuild signals a per-record document transformation failure.
	ErrBuild = errors.New("build failed")
	// ErrProvisioning signals a schema declaration failure. Fatal to ingestion.
	ErrProvisioning = errors.New("index provisioning failed")
	// ErrWrite signals a document persistence failure after retries.
	ErrWrite = errors.New("write failed")
	// ErrQueryExecution signals a store failure while running a query.
	ErrQueryExecution = errors.New("query execution failed")
	// ErrReconstruction signals a malformed stored document.
	ErrReconstruction = errors.New("document reconstruction failed")

	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// InvalidArgument wraps ErrInvalidArgument with a caller-facing message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// BuildError is a per-record or per-laureate transformation failure.
// Index is the position of the source record in the input batch.
type BuildError struct {
	Index int
	Key   string
	Err   error
}

func (e *BuildError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("build record %d (%s): %v", e.Index, e.Key, e.Err)
	}
	return fmt.Sprintf("build record %d: %v", e.Index, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *BuildError) Unwrap() []error { return []error{ErrBuild, e.Err} }

// ProvisioningError is a schema declaration failure for a layout.
type ProvisioningError struct {
	Layout string
	Err    error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision %s index: %v", e.Layout, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *ProvisioningError) Unwrap() []error { return []error{ErrProvisioning, e.Err} }

// WriteError is a document write that failed on every attempt.
type WriteError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s failed after %d attempts: %v", e.Key, e.Attempts, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// ReconstructionError is a stored document whose nested body could not be parsed.
// It is logged and the document degrades to an empty laureate list.
type ReconstructionError struct {
	Key string
	Err error
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("reconstruct %s: %v", e.Key, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *ReconstructionError) Unwrap() []error { return []error{ErrReconstruction, e.Err} }
