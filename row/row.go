// Copyright 2025 RowML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package row provides the public API for schema-typed, pull-based row
// sources.
//
// A Source declares a Schema and opens Cursors; a Cursor advances one row
// at a time and hands out lazy ValueGetters per column. Values are either
// scalars or vectors, and vectors may be sparse:
//
//	schema := row.Schema{{Name: "features", Type: row.Vector(tensor.Float32, 4)}}
//	src, err := row.NewMemSource(schema, [][]row.Value{
//	    {row.DenseOf([]float32{1, 2, 3, 4})},
//	    {row.SparseOf(4, []int{0, 3}, []float32{5, 6})},
//	})
package row

import (
	"database/sql"

	"github.com/rowml/onnxscore/internal/row"
	"github.com/rowml/onnxscore/internal/tensor"
)

// ColumnType describes a column's element kind and arity.
type ColumnType = row.ColumnType

// Scalar builds a single-element column type.
func Scalar(kind tensor.DataType) ColumnType { return row.Scalar(kind) }

// Vector builds a fixed-length vector column type.
func Vector(kind tensor.DataType, size int) ColumnType { return row.Vector(kind, size) }

// VarVector builds a variable-length vector column type.
func VarVector(kind tensor.DataType) ColumnType { return row.VarVector(kind) }

// Column is one named, typed column of a schema.
type Column = row.Column

// Schema is an ordered list of columns.
type Schema = row.Schema

// Value holds one cell: a dense or sparse scalar/vector payload.
type Value = row.Value

// ScalarOf builds a scalar value.
func ScalarOf[T tensor.DType](v T) Value { return row.ScalarOf(v) }

// DenseOf builds a dense vector value over vals without copying.
func DenseOf[T tensor.DType](vals []T) Value { return row.DenseOf(vals) }

// SparseOf builds a sparse vector value of the given logical length.
// Indices positions vals within the dense form; unlisted slots are zero.
func SparseOf[T tensor.DType](length int, indices []int, vals []T) Value {
	return row.SparseOf(length, indices, vals)
}

// Elements returns the typed payload slice of a value.
func Elements[T tensor.DType](v *Value) ([]T, error) { return row.Elements[T](v) }

// EnsureDense resets v to a dense vector of n elements, reusing its buffer
// when capacity allows, and returns the buffer.
func EnsureDense[T tensor.DType](v *Value, n int) []T { return row.EnsureDense[T](v, n) }

// ValueGetter fills dst with the current row's value for one column.
type ValueGetter = row.ValueGetter

// Cursor iterates a source one row at a time.
type Cursor = row.Cursor

// Source declares a schema and opens cursors.
type Source = row.Source

// MemSource is an in-memory source, mainly for tests and small runs.
type MemSource = row.MemSource

// NewMemSource builds a MemSource; every row must match the schema arity.
func NewMemSource(schema Schema, rows [][]Value) (*MemSource, error) {
	return row.NewMemSource(schema, rows)
}

// SQLSource streams rows from a SQL query. Vector columns are read from
// JSON array cells.
type SQLSource = row.SQLSource

// NewSQLSource binds a query to a schema over an open database handle.
func NewSQLSource(db *sql.DB, query string, schema Schema) (*SQLSource, error) {
	return row.NewSQLSource(db, query, schema)
}
