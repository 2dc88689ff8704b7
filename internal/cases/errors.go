package cases

import "errors"

var (
	// ErrUnexpectedShape means a detail-style response contained no
	// recognizable case record. Detail loads never substitute a default.
	ErrUnexpectedShape = errors.New("unexpected case detail response shape")

	ErrNotFound = errors.New("not found")
)

const (
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeUpstream      = "UPSTREAM_ERROR"
	ErrorCodeUpstreamShape = "UPSTREAM_SHAPE_ERROR"
	ErrorCodeInternal      = "INTERNAL_ERROR"
)
