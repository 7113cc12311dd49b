// Copyright 2025 RowML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense tensors exchanged
// with inference engines.
//
// Tensors are flat typed buffers with a shape. They are created either by
// allocating zeroed storage or by wrapping an existing slice without
// copying:
//
//	buf := []float32{1, 2, 3, 4, 5, 6}
//	t, err := tensor.Wrap(buf, tensor.Shape{2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(t.Shape(), t.DType()) // [2 3] float32
package tensor

import (
	"github.com/rowml/onnxscore/internal/tensor"
)

// DType is a constraint over the element types a tensor can hold.
type DType = tensor.DType

// DataType identifies the element type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int16   DataType = tensor.Int16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint16  DataType = tensor.Uint16
	Uint32  DataType = tensor.Uint32
	Uint64  DataType = tensor.Uint64
	Bool    DataType = tensor.Bool
	String  DataType = tensor.String
)

// Shape represents the dimensions of a tensor. An empty Shape is a scalar.
type Shape = tensor.Shape

// DynamicDim marks a dimension whose extent is not known until runtime.
const DynamicDim = tensor.DynamicDim

// Tensor is a dense typed buffer with a shape.
type Tensor = tensor.Tensor

// NewRaw allocates a zeroed tensor of the given shape and data type.
func NewRaw(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// Wrap builds a tensor view over data without copying. The tensor and the
// slice share storage.
func Wrap[T DType](data []T, shape Shape) (*Tensor, error) {
	return tensor.Wrap(data, shape)
}

// KindOf returns the DataType for a Go element type.
func KindOf[T DType]() DataType {
	return tensor.KindOf[T]()
}
