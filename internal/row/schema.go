// Package row defines the pull-based row source contract consumed by the
// scoring core: schema introspection, cursors, and per-column value getters.
package row

import (
	"fmt"

	"github.com/rowml/onnxscore/internal/tensor"
)

// ColumnType describes the declared type of a schema column: a scalar, a
// fixed-length vector (Size > 0), or a variable-length vector (Size == 0).
type ColumnType struct {
	Kind   tensor.DataType
	Vector bool
	Size   int
}

// Scalar builds a scalar column type.
func Scalar(kind tensor.DataType) ColumnType {
	return ColumnType{Kind: kind}
}

// Vector builds a fixed-length vector column type.
func Vector(kind tensor.DataType, size int) ColumnType {
	return ColumnType{Kind: kind, Vector: true, Size: size}
}

// VarVector builds a variable-length vector column type.
func VarVector(kind tensor.DataType) ColumnType {
	return ColumnType{Kind: kind, Vector: true}
}

// String renders the type like "float32", "vec<float32,5>" or "vec<float32,*>".
func (t ColumnType) String() string {
	if !t.Vector {
		return t.Kind.String()
	}
	if t.Size == 0 {
		return fmt.Sprintf("vec<%s,*>", t.Kind)
	}
	return fmt.Sprintf("vec<%s,%d>", t.Kind, t.Size)
}

// Column is one named column in a schema.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is an ordered set of columns.
type Schema []Column

// FindColumn returns the index of the named column.
func (s Schema) FindColumn(name string) (int, bool) {
	for i := range s {
		if s[i].Name == name {
			return i, true
		}
	}
	return 0, false
}
