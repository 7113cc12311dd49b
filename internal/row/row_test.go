package row

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowml/onnxscore/internal/tensor"
)

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "float32", Scalar(tensor.Float32).String())
	assert.Equal(t, "vec<float32,5>", Vector(tensor.Float32, 5).String())
	assert.Equal(t, "vec<float64,*>", VarVector(tensor.Float64).String())
}

func TestSchemaFindColumn(t *testing.T) {
	schema := Schema{
		{Name: "id", Type: Scalar(tensor.Int64)},
		{Name: "features", Type: Vector(tensor.Float32, 4)},
	}

	idx, ok := schema.FindColumn("features")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = schema.FindColumn("missing")
	assert.False(t, ok)
}

func TestEnsureDenseReusesBuffer(t *testing.T) {
	var v Value
	buf := EnsureDense[float32](&v, 4)
	require.Len(t, buf, 4)

	// Shrinking the logical length keeps the allocation.
	buf2 := EnsureDense[float32](&v, 2)
	assert.Equal(t, 2, len(buf2))
	assert.Same(t, &buf[0], &buf2[0])

	// Growing past capacity reallocates.
	buf3 := EnsureDense[float32](&v, 100)
	assert.Len(t, buf3, 100)
	assert.Equal(t, 100, v.Length)
	assert.Nil(t, v.Indices)
}

func TestElementsTypeMismatch(t *testing.T) {
	v := DenseOf([]float32{1, 2})
	_, err := Elements[float64](&v)
	assert.Error(t, err)

	got, err := Elements[float32](&v)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got)
}

func TestMemSourceCursor(t *testing.T) {
	schema := Schema{
		{Name: "label", Type: Scalar(tensor.String)},
		{Name: "features", Type: Vector(tensor.Float32, 3)},
	}
	src, err := NewMemSource(schema, [][]Value{
		{ScalarOf("a"), DenseOf([]float32{1, 2, 3})},
		{ScalarOf("b"), SparseOf(3, []int{1}, []float32{9})},
	})
	require.NoError(t, err)

	cur, err := src.Open()
	require.NoError(t, err)
	defer cur.Close()

	get, err := cur.Getter(1)
	require.NoError(t, err)

	// Getter before the first advance fails.
	var v Value
	assert.Error(t, get(&v))

	require.True(t, cur.Next())
	require.NoError(t, get(&v))
	assert.Equal(t, 3, v.Length)
	assert.Nil(t, v.Indices)

	require.True(t, cur.Next())
	require.NoError(t, get(&v))
	assert.Equal(t, []int{1}, v.Indices)

	assert.False(t, cur.Next())
	assert.NoError(t, cur.Err())
}

func TestMemSourceRowArityCheck(t *testing.T) {
	schema := Schema{{Name: "x", Type: Scalar(tensor.Float32)}}
	_, err := NewMemSource(schema, [][]Value{{ScalarOf(float32(1)), ScalarOf(float32(2))}})
	assert.Error(t, err)
}

func TestMemSourceIndependentCursors(t *testing.T) {
	schema := Schema{{Name: "x", Type: Scalar(tensor.Int32)}}
	src, err := NewMemSource(schema, [][]Value{{ScalarOf(int32(1))}, {ScalarOf(int32(2))}})
	require.NoError(t, err)

	a, err := src.Open()
	require.NoError(t, err)
	b, err := src.Open()
	require.NoError(t, err)

	require.True(t, a.Next())
	require.True(t, a.Next())
	require.True(t, b.Next(), "second cursor starts at the beginning")
}

func TestMemSourceGetterOutOfRange(t *testing.T) {
	schema := Schema{{Name: "x", Type: Scalar(tensor.Int32)}}
	src, err := NewMemSource(schema, nil)
	require.NoError(t, err)
	cur, err := src.Open()
	require.NoError(t, err)

	_, err = cur.Getter(1)
	assert.Error(t, err)
}
