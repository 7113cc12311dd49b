package row

import (
	"fmt"

	"github.com/rowml/onnxscore/internal/tensor"
)

// Value holds one column value for a cursor's current row.
//
// Length is the logical element count (1 for scalars). When Indices is nil
// the value is dense and Data holds Length elements; otherwise the value is
// sparse, Indices lists the populated positions in their original order, and
// Data holds len(Indices) elements. Data is always a []T slice of the
// column's element kind.
type Value struct {
	Length  int
	Indices []int
	Data    any
}

// ScalarOf builds a dense single-element Value.
func ScalarOf[T tensor.DType](v T) Value {
	return Value{Length: 1, Data: []T{v}}
}

// DenseOf builds a dense Value over vals.
func DenseOf[T tensor.DType](vals []T) Value {
	return Value{Length: len(vals), Data: vals}
}

// SparseOf builds a sparse Value of the given logical length.
func SparseOf[T tensor.DType](length int, indices []int, vals []T) Value {
	return Value{Length: length, Indices: indices, Data: vals}
}

// Elements returns the backing slice of v as []T.
func Elements[T tensor.DType](v *Value) ([]T, error) {
	data, ok := v.Data.([]T)
	if !ok {
		return nil, fmt.Errorf("value holds %T, not %T", v.Data, []T(nil))
	}
	return data, nil
}

// EnsureDense prepares v as a dense value of n elements of type T, reusing
// the existing backing slice when it has capacity. The buffer grows on
// demand and never shrinks below its high-water mark.
func EnsureDense[T tensor.DType](v *Value, n int) []T {
	buf, _ := v.Data.([]T)
	if cap(buf) < n {
		buf = make([]T, n)
	}
	buf = buf[:n]
	v.Length = n
	v.Indices = nil
	v.Data = buf
	return buf
}
