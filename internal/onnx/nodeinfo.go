package onnx

import (
	"errors"
	"fmt"

	"github.com/rowml/onnxscore/internal/tensor"
)

// ErrUnsupportedElemType reports a node element type with no host mapping.
var ErrUnsupportedElemType = errors.New("unsupported element type")

// elemToKind and kindToElem are the immutable bidirectional mapping between
// ONNX element codes and host element types. Built once; never mutated.
var elemToKind = map[int32]tensor.DataType{
	ElemFloat:  tensor.Float32,
	ElemDouble: tensor.Float64,
	ElemInt16:  tensor.Int16,
	ElemInt32:  tensor.Int32,
	ElemInt64:  tensor.Int64,
	ElemUint16: tensor.Uint16,
	ElemUint32: tensor.Uint32,
	ElemUint64: tensor.Uint64,
	ElemBool:   tensor.Bool,
	ElemString: tensor.String,
}

var kindToElem = map[tensor.DataType]int32{
	tensor.Float32: ElemFloat,
	tensor.Float64: ElemDouble,
	tensor.Int16:   ElemInt16,
	tensor.Int32:   ElemInt32,
	tensor.Int64:   ElemInt64,
	tensor.Uint16:  ElemUint16,
	tensor.Uint32:  ElemUint32,
	tensor.Uint64:  ElemUint64,
	tensor.Bool:    ElemBool,
	tensor.String:  ElemString,
}

// KindFromElem maps an ONNX element code to a host element type.
func KindFromElem(elem int32) (tensor.DataType, bool) {
	dt, ok := elemToKind[elem]
	return dt, ok
}

// ElemFromKind maps a host element type to an ONNX element code.
func ElemFromKind(dt tensor.DataType) (int32, bool) {
	elem, ok := kindToElem[dt]
	return elem, ok
}

// NodeInfo describes one model input or output: name, shape, element type.
// Immutable once read from the loaded model.
type NodeInfo struct {
	Name  string
	Shape tensor.Shape
	DType tensor.DataType
}

// nodeInfoFromValueInfo converts graph boundary metadata to a NodeInfo.
// Symbolic or non-positive dimensions map to tensor.DynamicDim.
func nodeInfoFromValueInfo(vi *ValueInfoProto) (NodeInfo, error) {
	if vi.Type == nil || vi.Type.TensorType == nil {
		return NodeInfo{}, fmt.Errorf("node %q: missing tensor type", vi.Name)
	}
	tt := vi.Type.TensorType

	dt, ok := KindFromElem(tt.ElemType)
	if !ok {
		return NodeInfo{}, fmt.Errorf("node %q: %w: ONNX element code %d", vi.Name, ErrUnsupportedElemType, tt.ElemType)
	}

	var shape tensor.Shape
	if tt.Shape != nil {
		shape = make(tensor.Shape, len(tt.Shape.Dims))
		for i, dim := range tt.Shape.Dims {
			if dim.DimParam != "" || dim.DimValue <= 0 {
				shape[i] = tensor.DynamicDim
			} else {
				shape[i] = int(dim.DimValue)
			}
		}
	}

	return NodeInfo{Name: vi.Name, Shape: shape, DType: dt}, nil
}
