package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// DynamicDim marks a dimension whose extent is not fixed by the model and
// must be supplied by the caller before a concrete tensor can be built.
const DynamicDim = -1

// Shape represents the dimensions of a tensor.
// A zero-length shape describes a scalar (rank-0) tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// Dynamic dimensions contribute nothing meaningful; call Validate first.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// IsDynamic reports whether any dimension is unresolved.
func (s Shape) IsDynamic() bool {
	for _, dim := range s {
		if dim == DynamicDim {
			return true
		}
	}
	return false
}

// Validate checks that every dimension is a positive extent.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim == DynamicDim {
			return fmt.Errorf("dimension %d is unresolved", i)
		}
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String renders the shape like [1 5] with unresolved dims shown as ?.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		if dim == DynamicDim {
			parts[i] = "?"
		} else {
			parts[i] = strconv.Itoa(dim)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
