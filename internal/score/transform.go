// Package score binds one model input node to a source column and exposes
// the model's first output as a derived column over a pull-based row
// source.
package score

import (
	"fmt"
	"io"
	"strings"

	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/row"
	"github.com/rowml/onnxscore/internal/serialization"
	"github.com/rowml/onnxscore/internal/tensor"
)

// Transform is a bound scoring configuration: a model handle plus the input
// and output column names. It is read-only after construction and may serve
// any number of cursors; each cursor gets its own adapter and buffers while
// all share the one handle.
//
// Only the first declared model input and output node are bound; extra
// nodes are ignored.
type Transform struct {
	handle     *onnx.ModelHandle
	inputCol   string
	outputCol  string
	inputNode  onnx.NodeInfo
	outputNode onnx.NodeInfo
	outputType row.ColumnType
}

// New binds a loaded model handle to the named input and output columns.
func New(handle *onnx.ModelHandle, inputCol, outputCol string) (*Transform, error) {
	if handle == nil {
		return nil, fmt.Errorf("%w: nil model handle", ErrConfig)
	}
	if strings.TrimSpace(inputCol) == "" {
		return nil, fmt.Errorf("%w: blank input column name", ErrConfig)
	}
	if strings.TrimSpace(outputCol) == "" {
		return nil, fmt.Errorf("%w: blank output column name", ErrConfig)
	}

	t := &Transform{
		handle:     handle,
		inputCol:   inputCol,
		outputCol:  outputCol,
		inputNode:  handle.Inputs()[0],
		outputNode: handle.Outputs()[0],
	}
	t.outputType = deriveOutputType(t.outputNode)
	return t, nil
}

// FromFile loads a model from a file and binds it.
func FromFile(path, inputCol, outputCol string, opts ...onnx.LoadOption) (*Transform, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: blank model path", ErrConfig)
	}
	handle, err := onnx.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	t, err := New(handle, inputCol, outputCol)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}
	return t, nil
}

// FromBytes loads a model from bytes (staged to a private temporary file)
// and binds it.
func FromBytes(model []byte, inputCol, outputCol string, opts ...onnx.LoadOption) (*Transform, error) {
	if len(model) == 0 {
		return nil, fmt.Errorf("%w: empty model bytes", ErrConfig)
	}
	handle, err := onnx.LoadFromBytes(model, opts...)
	if err != nil {
		return nil, err
	}
	t, err := New(handle, inputCol, outputCol)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}
	return t, nil
}

// FromContainer restores a transform persisted with Save.
func FromContainer(r io.Reader, opts ...onnx.LoadOption) (*Transform, error) {
	c, err := serialization.Read(r)
	if err != nil {
		return nil, err
	}
	return FromBytes(c.ModelBytes, c.InputColumn, c.OutputColumn, opts...)
}

// Load restores a transform from container bytes.
func Load(data []byte, opts ...onnx.LoadOption) (*Transform, error) {
	c, err := serialization.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromBytes(c.ModelBytes, c.InputColumn, c.OutputColumn, opts...)
}

// deriveOutputType drops the leading (batch) dimension of the model's
// output shape, since exactly one row is scored at a time. Unresolved
// remaining dimensions yield a variable-length vector column.
func deriveOutputType(node onnx.NodeInfo) row.ColumnType {
	shape := node.Shape
	if len(shape) > 0 {
		shape = shape[1:]
	}
	if shape.IsDynamic() {
		return row.VarVector(node.DType)
	}
	return row.Vector(node.DType, shape.NumElements())
}

// InputColumn returns the bound source column name.
func (t *Transform) InputColumn() string { return t.inputCol }

// OutputColumn returns the derived column name.
func (t *Transform) OutputColumn() string { return t.outputCol }

// Handle returns the shared model handle.
func (t *Transform) Handle() *onnx.ModelHandle { return t.handle }

// OutputSchema declares the single derived output column.
func (t *Transform) OutputSchema() row.Schema {
	return row.Schema{{Name: t.outputCol, Type: t.outputType}}
}

// Dependencies reports whether the bound input column must be read: it is
// required iff the derived output column is requested. A column-pruning
// host can skip reading the input entirely when the output is inactive.
func (t *Transform) Dependencies(outputActive bool) bool {
	return outputActive
}

// CheckBinding validates an upstream schema declaration before any row is
// read: the bound column must exist and be a vector column, fixed- or
// variable-length. Concrete lengths are verified later, when a cursor with
// a resolved schema is bound.
func (t *Transform) CheckBinding(schema row.Schema) error {
	idx, ok := schema.FindColumn(t.inputCol)
	if !ok {
		return fmt.Errorf("%w: input column %q not found in source schema", ErrSchemaMismatch, t.inputCol)
	}
	if !schema[idx].Type.Vector {
		return fmt.Errorf("%w: input column %q must be a vector column, got %s",
			ErrSchemaMismatch, t.inputCol, schema[idx].Type)
	}
	return nil
}

// CreateGetter binds one adapter to the cursor and returns a getter that
// scores the cursor's current row into dst. Each invocation pulls the
// row's tensor, runs inference, and copies the first output into dst's
// reusable buffer; calling it twice without advancing redoes the same
// computation.
func (t *Transform) CreateGetter(cursor row.Cursor) (row.ValueGetter, error) {
	schema := cursor.Schema()
	idx, ok := schema.FindColumn(t.inputCol)
	if !ok {
		return nil, fmt.Errorf("%w: input column %q not found in cursor schema", ErrSchemaMismatch, t.inputCol)
	}

	adapter, err := newAdapter(cursor, idx, t.inputNode)
	if err != nil {
		return nil, err
	}

	copyOut, err := outputCopier(t.outputNode.DType)
	if err != nil {
		return nil, err
	}

	inputs := make([]*tensor.Tensor, 1)
	return func(dst *row.Value) error {
		in, err := adapter.ProduceTensor()
		if err != nil {
			return err
		}
		inputs[0] = in

		outs, err := t.handle.Run(inputs)
		if err != nil {
			return fmt.Errorf("output column %q: %w", t.outputCol, err)
		}
		if len(outs) == 0 {
			return fmt.Errorf("output column %q: %w", t.outputCol, ErrNoModelOutput)
		}

		out := outs[0]
		if out.DType() != t.outputNode.DType {
			return fmt.Errorf("%w: engine produced %s output, model metadata declares %s",
				ErrSchemaMismatch, out.DType(), t.outputNode.DType)
		}
		return copyOut(dst, out)
	}, nil
}

// outputCopier selects, once per getter, the typed copy from an output
// tensor into a destination value buffer. The destination grows on demand
// and never shrinks below its high-water mark.
func outputCopier(kind tensor.DataType) (func(*row.Value, *tensor.Tensor) error, error) {
	switch kind {
	case tensor.Float32:
		return copyInto[float32]((*tensor.Tensor).Float32s), nil
	case tensor.Float64:
		return copyInto[float64]((*tensor.Tensor).Float64s), nil
	case tensor.Int16:
		return copyInto[int16]((*tensor.Tensor).Int16s), nil
	case tensor.Int32:
		return copyInto[int32]((*tensor.Tensor).Int32s), nil
	case tensor.Int64:
		return copyInto[int64]((*tensor.Tensor).Int64s), nil
	case tensor.Uint16:
		return copyInto[uint16]((*tensor.Tensor).Uint16s), nil
	case tensor.Uint32:
		return copyInto[uint32]((*tensor.Tensor).Uint32s), nil
	case tensor.Uint64:
		return copyInto[uint64]((*tensor.Tensor).Uint64s), nil
	case tensor.Bool:
		return copyInto[bool]((*tensor.Tensor).Bools), nil
	case tensor.String:
		return copyInto[string]((*tensor.Tensor).Strings), nil
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedType, kind)
	}
}

func copyInto[T tensor.DType](elems func(*tensor.Tensor) []T) func(*row.Value, *tensor.Tensor) error {
	return func(dst *row.Value, out *tensor.Tensor) error {
		src := elems(out)
		buf := row.EnsureDense[T](dst, len(src))
		copy(buf, src)
		return nil
	}
}

// Save persists the bound configuration: the model's raw bytes and the two
// column names, independent of any row source.
func (t *Transform) Save(w io.Writer) error {
	return serialization.Write(w, &serialization.Container{
		ModelBytes:   t.handle.RawBytes(),
		InputColumn:  t.inputCol,
		OutputColumn: t.outputCol,
	})
}

// Bytes returns the persisted container for this transform.
func (t *Transform) Bytes() ([]byte, error) {
	return serialization.Encode(&serialization.Container{
		ModelBytes:   t.handle.RawBytes(),
		InputColumn:  t.inputCol,
		OutputColumn: t.outputCol,
	})
}

// Close releases the underlying model handle.
func (t *Transform) Close() error {
	return t.handle.Close()
}
