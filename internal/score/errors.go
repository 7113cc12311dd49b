package score

import "errors"

// Error taxonomy. Configuration and schema errors are raised at
// construction or binding time, never deferred to the first row; inference
// errors surface through the per-row getter and are never retried.
var (
	// ErrConfig reports missing or blank construction arguments.
	ErrConfig = errors.New("invalid configuration")

	// ErrSchemaMismatch reports an incompatibility between a bound column
	// and the model's expected input: absent column, wrong vector-ness,
	// wrong concrete length, or mismatched element kind.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnsupportedType reports an element kind with no registry mapping.
	ErrUnsupportedType = errors.New("unsupported element type")

	// ErrNoModelOutput reports an engine run that returned an empty output
	// list for a well-formed input.
	ErrNoModelOutput = errors.New("inference produced no outputs")
)
