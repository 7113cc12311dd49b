// Package tensor provides the dense tensor types used to carry row values
// into and out of an inference session.
package tensor

// DType is a constraint for supported tensor element types.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	~float32 | ~float64 | ~int16 | ~int32 | ~int64 | ~uint16 | ~uint32 | ~uint64 | ~bool | ~string
}

// DataType represents runtime type information for tensor elements.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int16
	Int32
	Int64
	Uint16
	Uint32
	Uint64
	Bool
	String
)

// Size returns the byte size of one element, or 0 for variable-width types.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	case Int16, Uint16:
		return 2
	case Bool:
		return 1
	case String:
		return 0
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is one of the supported element types.
func (dt DataType) Valid() bool {
	return dt >= Float32 && dt <= String
}

// Numeric reports whether dt is a fixed-width numeric type.
func (dt DataType) Numeric() bool {
	return dt.Valid() && dt != Bool && dt != String
}

// KindOf infers the DataType for a generic element type T.
func KindOf[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case bool:
		return Bool
	case string:
		return String
	default:
		panic("unsupported type")
	}
}
