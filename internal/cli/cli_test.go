package cli

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowml/onnxscore/internal/engine"
	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/onnxtest"
	"github.com/rowml/onnxscore/internal/serialization"
)

func init() {
	engine.Register("softmax-test", &onnxtest.Runtime{Session: onnxtest.Softmax()})
	engine.Register("failing-test", &onnxtest.Runtime{Session: onnxtest.Failing(errors.New("session down"))})
}

func testModelFile(t *testing.T, n int64) string {
	t.Helper()
	model := onnxtest.ModelBytes(
		[]onnxtest.NodeSpec{{Name: "features", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Value: n}}}},
		[]onnxtest.NodeSpec{{Name: "probabilities", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Param: "N"}, {Value: n}}}},
	)
	path := filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, os.WriteFile(path, model, 0o600))
	return path
}

func testDBFile(t *testing.T, values ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE samples (features TEXT)`)
	require.NoError(t, err)
	for _, v := range values {
		_, err = db.Exec(`INSERT INTO samples (features) VALUES (?)`, v)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
	return dbPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInspectModel(t *testing.T) {
	path := testModelFile(t, 3)

	out, err := runCommand(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "features")
	assert.Contains(t, out, "probabilities")
	assert.Contains(t, out, "float32")
}

func TestInspectContainer(t *testing.T) {
	model := onnxtest.ModelBytes(
		[]onnxtest.NodeSpec{{Name: "x", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Value: 2}}}},
		[]onnxtest.NodeSpec{{Name: "y", Elem: onnx.ElemFloat, Dims: []onnxtest.Dim{{Value: 2}}}},
	)
	data, err := serialization.Encode(&serialization.Container{
		ModelBytes:   model,
		InputColumn:  "x",
		OutputColumn: "y",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "packed.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := runCommand(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Container:")
	assert.Contains(t, out, `"x"`)
	assert.Contains(t, out, `"y"`)
}

func TestInspectMissingFile(t *testing.T) {
	_, err := runCommand(t, "inspect", filepath.Join(t.TempDir(), "absent.onnx"))
	require.Error(t, err)
}

func TestPackRoundTrip(t *testing.T) {
	model := testModelFile(t, 4)
	out := filepath.Join(t.TempDir(), "packed.bin")

	output, err := runCommand(t, "pack",
		"--model", model, "--input", "features", "--output", "probabilities", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Packed")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	c, err := serialization.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "features", c.InputColumn)
	assert.Equal(t, "probabilities", c.OutputColumn)
}

func TestPackRequiresModel(t *testing.T) {
	_, err := runCommand(t, "pack", "--out", filepath.Join(t.TempDir(), "c.bin"))
	require.Error(t, err)
}

func TestScoreFromSQLite(t *testing.T) {
	model := testModelFile(t, 3)
	dbPath := testDBFile(t, "[1.0, 0.0, -1.0]", "[0.5, 0.5, 0.5]")

	out, err := runCommand(t, "score",
		"--model", model,
		"--runtime", "softmax-test",
		"--db", dbPath,
		"--query", "SELECT features FROM samples",
		"--vector-size", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Scored 2 rows")
	assert.Contains(t, out, "probabilities")
}

func TestScoreSourceFromEnv(t *testing.T) {
	model := testModelFile(t, 3)
	dbPath := testDBFile(t, "[1.0, 0.0, -1.0]")
	t.Setenv("ONNXSCORE_DB", dbPath)
	t.Setenv("ONNXSCORE_QUERY", "SELECT features FROM samples")
	t.Setenv("ONNXSCORE_VECTOR_SIZE", "3")

	out, err := runCommand(t, "score", "--model", model, "--runtime", "softmax-test")
	require.NoError(t, err)
	assert.Contains(t, out, "Scored 1 rows")
}

func TestScoreSessionErrorSurfaces(t *testing.T) {
	model := testModelFile(t, 3)
	dbPath := testDBFile(t, "[1.0, 0.0, -1.0]")

	_, err := runCommand(t, "score",
		"--model", model,
		"--runtime", "failing-test",
		"--db", dbPath,
		"--query", "SELECT features FROM samples",
		"--vector-size", "3")
	require.Error(t, err)
}
