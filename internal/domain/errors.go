package domain

import "errors"

var (
	// ErrInvalidConfig marks a caller bug: bad chunk/overlap sizes,
	// out-of-range generation parameters, or a vector whose dimensionality
	// does not match the store. Never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInsufficientContext is returned when generation is requested with
	// no retrieved context to ground the questions in. Recoverable by the
	// caller (ingest more material).
	ErrInsufficientContext = errors.New("insufficient context")

	// ErrGenerationFailed is returned when the generative backend produced
	// no usable questions after the internal retry.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrBackendUnavailable wraps I/O failures talking to the embedding or
	// generation backend, so callers can tell transport problems apart from
	// data-validation failures.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNotFound is returned when a stored entity does not exist.
	ErrNotFound = errors.New("not found")
)
