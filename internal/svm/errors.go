package svm

import "errors"

// Every message carries the "svm:" prefix. Wrap with fmt.Errorf("ctx: %w", ErrX)
// when context is needed; callers match with errors.Is.
var (
	// ErrInvalidModel reports a structurally broken model: coefficient count
	// not matching the support vectors, negative or unordered feature indices,
	// NaN/Inf values.
	ErrInvalidModel = errors.New("svm: invalid model")

	// ErrUnsupportedKernel is returned when an operation needs the RBF kernel.
	ErrUnsupportedKernel = errors.New("svm: unsupported kernel")

	// ErrMalformedFile is returned by the libsvm text reader.
	ErrMalformedFile = errors.New("svm: malformed model file")
)
