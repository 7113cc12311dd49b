package serialization

import "errors"

// Decode errors. Every one of them aborts the load; nothing is silently
// recovered.
var (
	ErrInvalidSignature   = errors.New("invalid container signature")
	ErrUnsupportedVersion = errors.New("unsupported container version")
	ErrBlankColumnName    = errors.New("blank column name")
	ErrFieldTooLarge      = errors.New("length-prefixed field exceeds maximum size")
)
