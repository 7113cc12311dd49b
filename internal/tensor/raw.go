package tensor

import (
	"fmt"
	"unsafe"
)

// Tensor is a dense n-dimensional value with a fixed element type.
// The backing buffer is flat and row-major. A Tensor built with Wrap shares
// memory with the caller's slice, so producers may overwrite it between
// uses; consumers must not retain it past the producer's next call.
type Tensor struct {
	dtype DataType
	shape Shape
	data  []byte   // fixed-width element storage
	strs  []string // String element storage
}

// NewRaw creates a zeroed Tensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid data type: %d", int(dtype))
	}

	n := shape.NumElements()
	t := &Tensor{
		dtype: dtype,
		shape: shape.Clone(),
	}
	if dtype == String {
		t.strs = make([]string, n)
	} else {
		t.data = make([]byte, n*dtype.Size())
	}
	return t, nil
}

// Wrap builds a Tensor around an existing slice without copying.
// len(data) must equal the shape's element count.
func Wrap[T DType](data []T, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.NumElements())
	}

	dtype := KindOf[T]()
	t := &Tensor{
		dtype: dtype,
		shape: shape.Clone(),
	}
	if dtype == String {
		t.strs = any(data).([]string)
		return t, nil
	}
	if len(data) > 0 {
		//nolint:gosec // unsafe.Slice for zero-copy reuse of the caller's buffer.
		t.data = unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size())
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's element type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Data returns the raw byte storage for fixed-width element types.
func (t *Tensor) Data() []byte {
	return t.data
}

func elems[T DType](t *Tensor) []T {
	want := KindOf[T]()
	if t.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", t.dtype, want))
	}
	if want == String {
		return any(t.strs).([]T)
	}
	if len(t.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length derived from NumElements.
	return unsafe.Slice((*T)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// Float32s interprets the storage as []float32. Panics on dtype mismatch.
func (t *Tensor) Float32s() []float32 { return elems[float32](t) }

// Float64s interprets the storage as []float64. Panics on dtype mismatch.
func (t *Tensor) Float64s() []float64 { return elems[float64](t) }

// Int16s interprets the storage as []int16. Panics on dtype mismatch.
func (t *Tensor) Int16s() []int16 { return elems[int16](t) }

// Int32s interprets the storage as []int32. Panics on dtype mismatch.
func (t *Tensor) Int32s() []int32 { return elems[int32](t) }

// Int64s interprets the storage as []int64. Panics on dtype mismatch.
func (t *Tensor) Int64s() []int64 { return elems[int64](t) }

// Uint16s interprets the storage as []uint16. Panics on dtype mismatch.
func (t *Tensor) Uint16s() []uint16 { return elems[uint16](t) }

// Uint32s interprets the storage as []uint32. Panics on dtype mismatch.
func (t *Tensor) Uint32s() []uint32 { return elems[uint32](t) }

// Uint64s interprets the storage as []uint64. Panics on dtype mismatch.
func (t *Tensor) Uint64s() []uint64 { return elems[uint64](t) }

// Bools interprets the storage as []bool. Panics on dtype mismatch.
func (t *Tensor) Bools() []bool { return elems[bool](t) }

// Strings returns the string storage. Panics if the dtype is not String.
func (t *Tensor) Strings() []string { return elems[string](t) }
