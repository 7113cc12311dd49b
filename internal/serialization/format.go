// Package serialization implements the versioned binary container that
// persists a bound model: the raw model bytes plus the input and output
// column names.
package serialization

// Format constants.
const (
	// Signature is the fixed 8-byte ASCII header of every container.
	Signature = "ONNXSCOR"

	// VerWritten is the version stamped into containers this writer
	// produces.
	VerWritten uint32 = 0x00010001
	// VerReadableCur is the newest container version this reader accepts.
	VerReadableCur uint32 = 0x00010001
	// VerReadableFloor is the oldest container version this reader accepts.
	// Containers written before the floor are refused outright.
	VerReadableFloor uint32 = 0x00010001

	// maxFieldLen bounds length-prefixed fields to keep corrupt length
	// prefixes from driving huge allocations.
	maxFieldLen = 1 << 30
)

// Container holds one persisted binding: the serialized model and the two
// bound column names. Instances exist only transiently during save/load.
type Container struct {
	VersionWritten       uint32
	VersionReadableCur   uint32
	VersionReadableFloor uint32
	ModelBytes           []byte
	InputColumn          string
	OutputColumn         string
}
