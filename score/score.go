// Copyright 2025 RowML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package score binds an ONNX model to a row source column and exposes the
// model's output as a derived column.
//
// A Transform is built once and then serves any number of cursors:
//
//	tr, err := score.FromFile("model.onnx", "features", "probabilities")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	cur, _ := src.Open()
//	get, err := tr.CreateGetter(cur)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var val row.Value
//	for cur.Next() {
//	    if err := get(&val); err != nil {
//	        log.Fatal(err)
//	    }
//	    // val now holds the model output for this row
//	}
//
// Transforms persist to a small binary container that carries the model
// bytes and the two column names; Save and Load round-trip it.
package score

import (
	"io"

	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/score"
)

// Transform is a bound scoring configuration over one model.
type Transform = score.Transform

// Sentinel errors raised while binding and scoring.
var (
	ErrConfig          = score.ErrConfig
	ErrSchemaMismatch  = score.ErrSchemaMismatch
	ErrUnsupportedType = score.ErrUnsupportedType
	ErrNoModelOutput   = score.ErrNoModelOutput
)

// New binds a loaded model handle to the named input and output columns.
func New(handle *onnx.ModelHandle, inputCol, outputCol string) (*Transform, error) {
	return score.New(handle, inputCol, outputCol)
}

// FromFile loads a model file and binds it.
func FromFile(path, inputCol, outputCol string, opts ...onnx.LoadOption) (*Transform, error) {
	return score.FromFile(path, inputCol, outputCol, opts...)
}

// FromBytes loads model bytes and binds them.
func FromBytes(model []byte, inputCol, outputCol string, opts ...onnx.LoadOption) (*Transform, error) {
	return score.FromBytes(model, inputCol, outputCol, opts...)
}

// FromContainer restores a transform persisted with Save.
func FromContainer(r io.Reader, opts ...onnx.LoadOption) (*Transform, error) {
	return score.FromContainer(r, opts...)
}

// Load restores a transform from container bytes.
func Load(data []byte, opts ...onnx.LoadOption) (*Transform, error) {
	return score.Load(data, opts...)
}
