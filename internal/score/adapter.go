package score

import (
	"fmt"

	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/row"
	"github.com/rowml/onnxscore/internal/tensor"
)

// rowTensorAdapter converts the bound column of a live cursor's current row
// into a tensor shaped for the model's input node. One adapter serves one
// cursor; its scratch buffer is reused across rows and is not safe for
// concurrent use.
type rowTensorAdapter struct {
	produce func() (*tensor.Tensor, error)
}

// newAdapter resolves the target shape, selects the extraction strategy,
// and validates the binding. All schema and type errors are raised here,
// before any row is pulled.
func newAdapter(cursor row.Cursor, colIdx int, node onnx.NodeInfo) (*rowTensorAdapter, error) {
	col := cursor.Schema()[colIdx]

	if _, ok := onnx.ElemFromKind(col.Type.Kind); !ok {
		return nil, fmt.Errorf("%w: column %q has kind %s", ErrUnsupportedType, col.Name, col.Type.Kind)
	}
	if col.Type.Kind != node.DType {
		return nil, fmt.Errorf("%w: column %q has element kind %s, model input %q expects %s",
			ErrSchemaMismatch, col.Name, col.Type.Kind, node.Name, node.DType)
	}

	target, err := resolveShape(node)
	if err != nil {
		return nil, err
	}

	get, err := cursor.Getter(colIdx)
	if err != nil {
		return nil, err
	}

	if !col.Type.Vector {
		return dispatch(col.Type.Kind, scalarAdapter{getter: get, column: col.Name})
	}

	flat := target.NumElements()
	if col.Type.Size > 0 && col.Type.Size != flat {
		return nil, fmt.Errorf("%w: column %q has length %d, model input %q expects shape %s (%d elements)",
			ErrSchemaMismatch, col.Name, col.Type.Size, node.Name, target, flat)
	}
	return dispatch(col.Type.Kind, vectorAdapter{getter: get, column: col.Name, shape: target, flat: flat})
}

// resolveShape pins an unresolved leading (batch) dimension to 1; exactly
// one row is scored per call regardless of what the model nominally allows.
// Unresolved dimensions elsewhere cannot be satisfied by a row value.
func resolveShape(node onnx.NodeInfo) (tensor.Shape, error) {
	target := node.Shape.Clone()
	if len(target) > 0 && target[0] == tensor.DynamicDim {
		target[0] = 1
	}
	for i, dim := range target {
		if dim == tensor.DynamicDim {
			return nil, fmt.Errorf("%w: model input %q has unresolved dimension %d in shape %s",
				ErrSchemaMismatch, node.Name, i, node.Shape)
		}
	}
	return target, nil
}

type scalarAdapter struct {
	getter row.ValueGetter
	column string
}

type vectorAdapter struct {
	getter row.ValueGetter
	column string
	shape  tensor.Shape
	flat   int
}

// dispatch instantiates the concrete extractor for the column's element
// kind. The type switch runs once here; per-row calls are monomorphic.
func dispatch(kind tensor.DataType, spec any) (*rowTensorAdapter, error) {
	switch kind {
	case tensor.Float32:
		return build[float32](spec), nil
	case tensor.Float64:
		return build[float64](spec), nil
	case tensor.Int16:
		return build[int16](spec), nil
	case tensor.Int32:
		return build[int32](spec), nil
	case tensor.Int64:
		return build[int64](spec), nil
	case tensor.Uint16:
		return build[uint16](spec), nil
	case tensor.Uint32:
		return build[uint32](spec), nil
	case tensor.Uint64:
		return build[uint64](spec), nil
	case tensor.Bool:
		return build[bool](spec), nil
	case tensor.String:
		return build[string](spec), nil
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedType, kind)
	}
}

func build[T tensor.DType](spec any) *rowTensorAdapter {
	switch s := spec.(type) {
	case scalarAdapter:
		return &rowTensorAdapter{produce: scalarProducer[T](s)}
	case vectorAdapter:
		return &rowTensorAdapter{produce: vectorProducer[T](s)}
	default:
		panic(fmt.Sprintf("unknown adapter spec %T", spec))
	}
}

// scalarProducer reads a single value and wraps it as a rank-0 tensor.
// The one-element scratch and the tensor view over it are allocated once.
func scalarProducer[T tensor.DType](s scalarAdapter) func() (*tensor.Tensor, error) {
	scratch := make([]T, 1)
	out, err := tensor.Wrap(scratch, tensor.Shape{})
	if err != nil {
		panic(err) // one element against a rank-0 shape cannot fail
	}

	var val row.Value
	return func() (*tensor.Tensor, error) {
		if err := s.getter(&val); err != nil {
			return nil, fmt.Errorf("column %q: %w", s.column, err)
		}
		if val.Length != 1 || val.Indices != nil {
			return nil, fmt.Errorf("%w: column %q produced a non-scalar value (length %d)",
				ErrSchemaMismatch, s.column, val.Length)
		}
		data, err := row.Elements[T](&val)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", s.column, err)
		}
		if len(data) < 1 {
			return nil, fmt.Errorf("%w: column %q produced an empty value", ErrSchemaMismatch, s.column)
		}
		scratch[0] = data[0]
		return out, nil
	}
}

// vectorProducer copies the row's vector value into a dense scratch buffer
// of the resolved flattened length, densifying sparse values: zeros in
// unlisted positions, assigned values at their reported positions in
// original order. The scratch and tensor view are allocated once and
// overwritten on every call.
func vectorProducer[T tensor.DType](s vectorAdapter) func() (*tensor.Tensor, error) {
	scratch := make([]T, s.flat)
	out, err := tensor.Wrap(scratch, s.shape)
	if err != nil {
		panic(err) // scratch length equals the resolved shape's element count
	}

	var val row.Value
	return func() (*tensor.Tensor, error) {
		if err := s.getter(&val); err != nil {
			return nil, fmt.Errorf("column %q: %w", s.column, err)
		}
		if val.Length != s.flat {
			return nil, fmt.Errorf("%w: column %q produced %d elements, expected %d",
				ErrSchemaMismatch, s.column, val.Length, s.flat)
		}
		data, err := row.Elements[T](&val)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", s.column, err)
		}

		if val.Indices == nil {
			if len(data) != s.flat {
				return nil, fmt.Errorf("%w: column %q dense value holds %d elements, declared %d",
					ErrSchemaMismatch, s.column, len(data), s.flat)
			}
			copy(scratch, data)
			return out, nil
		}

		if len(data) != len(val.Indices) {
			return nil, fmt.Errorf("%w: column %q sparse value holds %d elements for %d indices",
				ErrSchemaMismatch, s.column, len(data), len(val.Indices))
		}
		var zero T
		for i := range scratch {
			scratch[i] = zero
		}
		for j, idx := range val.Indices {
			if idx < 0 || idx >= s.flat {
				return nil, fmt.Errorf("%w: column %q sparse index %d out of range [0,%d)",
					ErrSchemaMismatch, s.column, idx, s.flat)
			}
			scratch[idx] = data[j]
		}
		return out, nil
	}
}

// ProduceTensor builds the tensor for the cursor's current row. The
// returned tensor's shape and element kind never change for one adapter;
// its backing buffer is overwritten by the next call.
func (a *rowTensorAdapter) ProduceTensor() (*tensor.Tensor, error) {
	return a.produce()
}
