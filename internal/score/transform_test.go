package score

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/onnxtest"
	"github.com/rowml/onnxscore/internal/row"
	"github.com/rowml/onnxscore/internal/tensor"
)

func vecModel(n int64) []byte {
	return onnxtest.ModelBytes(
		[]onnxtest.NodeSpec{{Name: "features", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Value: n}}}},
		[]onnxtest.NodeSpec{{Name: "probabilities", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Value: n}}}},
	)
}

func floatSource(t *testing.T, size int, rows ...row.Value) *row.MemSource {
	t.Helper()
	schema := row.Schema{{Name: "features", Type: row.Vector(tensor.Float32, size)}}
	wrapped := make([][]row.Value, len(rows))
	for i, v := range rows {
		wrapped[i] = []row.Value{v}
	}
	src, err := row.NewMemSource(schema, wrapped)
	require.NoError(t, err)
	return src
}

func scoreRows(t *testing.T, tr *Transform, src *row.MemSource) [][]float32 {
	t.Helper()
	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	get, err := tr.CreateGetter(cur)
	require.NoError(t, err)

	var out [][]float32
	var val row.Value
	for cur.Next() {
		require.NoError(t, get(&val))
		data, err := row.Elements[float32](&val)
		require.NoError(t, err)
		out = append(out, append([]float32(nil), data...))
	}
	require.NoError(t, cur.Err())
	return out
}

func TestTransformSoftmaxEndToEnd(t *testing.T) {
	tr, err := FromBytes(vecModel(1000), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Softmax()}))
	require.NoError(t, err)
	defer tr.Close()

	features := make([]float32, 1000)
	for i := range features {
		features[i] = float32(i%7) * 0.25
	}
	src := floatSource(t, 1000, row.DenseOf(features))

	rows := scoreRows(t, tr, src)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 1000)

	var sum float64
	for _, p := range rows[0] {
		assert.GreaterOrEqual(t, p, float32(0))
		sum += float64(p)
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestTransformDensifiesSparseInOrder(t *testing.T) {
	tr, err := FromBytes(vecModel(5), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 5, row.SparseOf(5, []int{0, 3, 4}, []float32{float32(math.Copysign(0, -1)), 1, 1}))
	rows := scoreRows(t, tr, src)
	require.Len(t, rows, 1)
	assert.Equal(t, []float32{0, 0, 0, 1, 1}, rows[0])
	assert.True(t, math.Signbit(float64(rows[0][0])), "explicit negative zero survives densification")
}

func TestTransformPinsDynamicBatchToOne(t *testing.T) {
	var seen tensor.Shape
	session := onnxtest.SessionFunc(func(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
		seen = inputs[0].Shape().Clone()
		return inputs, nil
	})
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: session}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 3, row.DenseOf([]float32{1, 2, 3}))
	scoreRows(t, tr, src)
	assert.Equal(t, tensor.Shape{1, 3}, seen)
}

func TestTransformDeterministicAcrossCursors(t *testing.T) {
	tr, err := FromBytes(vecModel(4), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Softmax()}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 4,
		row.DenseOf([]float32{0.5, -1, 2, 0}),
		row.SparseOf(4, []int{1, 2}, []float32{3, -0.5}),
	)
	first := scoreRows(t, tr, src)
	second := scoreRows(t, tr, src)
	assert.Equal(t, first, second)
}

func TestTransformRejectsLengthMismatchBeforeRows(t *testing.T) {
	tr, err := FromBytes(vecModel(5), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 4, row.DenseOf([]float32{1, 2, 3, 4}))
	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	_, err = tr.CreateGetter(cur)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTransformRejectsKindMismatch(t *testing.T) {
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	schema := row.Schema{{Name: "features", Type: row.Vector(tensor.Float64, 3)}}
	src, err := row.NewMemSource(schema, [][]row.Value{{row.DenseOf([]float64{1, 2, 3})}})
	require.NoError(t, err)

	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	_, err = tr.CreateGetter(cur)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTransformRejectsUnresolvedInnerDim(t *testing.T) {
	model := onnxtest.ModelBytes(
		[]onnxtest.NodeSpec{{Name: "features", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Param: "M"}}}},
		[]onnxtest.NodeSpec{{Name: "probabilities", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Value: 3}}}},
	)
	tr, err := FromBytes(model, "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 3, row.DenseOf([]float32{1, 2, 3}))
	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	_, err = tr.CreateGetter(cur)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTransformScalarInput(t *testing.T) {
	model := onnxtest.ModelBytes(
		[]onnxtest.NodeSpec{{Name: "x", Elem: onnx.ElemFloat}},
		[]onnxtest.NodeSpec{{Name: "y", Elem: onnx.ElemFloat}},
	)
	tr, err := FromBytes(model, "x", "y",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	assert.Equal(t, row.Vector(tensor.Float32, 1), tr.OutputSchema()[0].Type)

	schema := row.Schema{{Name: "x", Type: row.Scalar(tensor.Float32)}}
	src, err := row.NewMemSource(schema, [][]row.Value{{row.ScalarOf(float32(42))}})
	require.NoError(t, err)

	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	get, err := tr.CreateGetter(cur)
	require.NoError(t, err)

	require.True(t, cur.Next())
	var val row.Value
	require.NoError(t, get(&val))
	data, err := row.Elements[float32](&val)
	require.NoError(t, err)
	assert.Equal(t, []float32{42}, data)
}

func TestTransformOutputSchema(t *testing.T) {
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	out := tr.OutputSchema()
	require.Len(t, out, 1)
	assert.Equal(t, "probabilities", out[0].Name)
	assert.Equal(t, row.Vector(tensor.Float32, 3), out[0].Type)
}

func TestTransformOutputSchemaVarLength(t *testing.T) {
	model := onnxtest.ModelBytes(
		[]onnxtest.NodeSpec{{Name: "features", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Value: 3}}}},
		[]onnxtest.NodeSpec{{Name: "probabilities", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Param: "C"}}}},
	)
	tr, err := FromBytes(model, "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	assert.Equal(t, row.VarVector(tensor.Float32), tr.OutputSchema()[0].Type)
}

func TestTransformDependencies(t *testing.T) {
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	assert.True(t, tr.Dependencies(true))
	assert.False(t, tr.Dependencies(false))
}

func TestTransformCheckBinding(t *testing.T) {
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer tr.Close()

	ok := row.Schema{{Name: "features", Type: row.VarVector(tensor.Float32)}}
	assert.NoError(t, tr.CheckBinding(ok))

	missing := row.Schema{{Name: "other", Type: row.Vector(tensor.Float32, 3)}}
	assert.ErrorIs(t, tr.CheckBinding(missing), ErrSchemaMismatch)

	scalar := row.Schema{{Name: "features", Type: row.Scalar(tensor.Float32)}}
	assert.ErrorIs(t, tr.CheckBinding(scalar), ErrSchemaMismatch)
}

func TestTransformConfigErrors(t *testing.T) {
	_, err := New(nil, "a", "b")
	assert.ErrorIs(t, err, ErrConfig)

	_, err = FromBytes(vecModel(3), "", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = FromBytes(vecModel(3), "features", "  ",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = FromBytes(nil, "features", "probabilities")
	assert.ErrorIs(t, err, ErrConfig)

	_, err = FromFile("", "features", "probabilities")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestTransformInferenceErrorPropagates(t *testing.T) {
	sessionErr := errors.New("kernel exploded")
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Failing(sessionErr)}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 3, row.DenseOf([]float32{1, 2, 3}))
	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	get, err := tr.CreateGetter(cur)
	require.NoError(t, err)

	require.True(t, cur.Next())
	var val row.Value
	err = get(&val)
	require.ErrorIs(t, err, sessionErr)
}

func TestTransformEmptyEngineOutput(t *testing.T) {
	empty := onnxtest.SessionFunc(func([]*tensor.Tensor) ([]*tensor.Tensor, error) {
		return nil, nil
	})
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: empty}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 3, row.DenseOf([]float32{1, 2, 3}))
	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	get, err := tr.CreateGetter(cur)
	require.NoError(t, err)

	require.True(t, cur.Next())
	var val row.Value
	require.ErrorIs(t, get(&val), ErrNoModelOutput)
}

func TestTransformEngineDTypeMismatch(t *testing.T) {
	wrong := onnxtest.SessionFunc(func([]*tensor.Tensor) ([]*tensor.Tensor, error) {
		out, err := tensor.Wrap([]int64{1, 2, 3}, tensor.Shape{1, 3})
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor{out}, nil
	})
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: wrong}))
	require.NoError(t, err)
	defer tr.Close()

	src := floatSource(t, 3, row.DenseOf([]float32{1, 2, 3}))
	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	get, err := tr.CreateGetter(cur)
	require.NoError(t, err)

	require.True(t, cur.Next())
	var val row.Value
	require.ErrorIs(t, get(&val), ErrSchemaMismatch)
}

func TestTransformSaveLoadRoundTrip(t *testing.T) {
	tr, err := FromBytes(vecModel(4), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Softmax()}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.Save(&buf))

	src := floatSource(t, 4, row.DenseOf([]float32{1, 0, -1, 2}))
	want := scoreRows(t, tr, src)
	require.NoError(t, tr.Close())

	restored, err := Load(buf.Bytes(), onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Softmax()}))
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, "features", restored.InputColumn())
	assert.Equal(t, "probabilities", restored.OutputColumn())
	assert.Equal(t, want, scoreRows(t, restored, src))
}

func TestTransformFromContainerReader(t *testing.T) {
	tr, err := FromBytes(vecModel(3), "features", "probabilities",
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)

	data, err := tr.Bytes()
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	restored, err := FromContainer(bytes.NewReader(data),
		onnx.WithRuntime(&onnxtest.Runtime{Session: onnxtest.Echo()}))
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, row.Vector(tensor.Float32, 3), restored.OutputSchema()[0].Type)
}
