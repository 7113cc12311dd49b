// Copyright 2025 RowML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onnx loads ONNX model files and exposes their graph boundary
// metadata together with an open inference session.
//
// Only the model's declared inputs and outputs are interpreted here; the
// actual kernels run inside whichever engine runtime the handle was opened
// with. A handle is loaded once and scores any number of rows:
//
//	handle, err := onnx.Load("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer handle.Close()
//
//	for _, in := range handle.Inputs() {
//	    fmt.Println(in.Name, in.DType, in.Shape)
//	}
//
// Engine runtimes register themselves with the engine registry; pass
// WithRuntime or WithRuntimeName to select one explicitly.
package onnx

import (
	"github.com/rowml/onnxscore/internal/onnx"
)

// NodeInfo describes one graph input or output: its name, its element
// type, and its declared shape with DynamicDim for unresolved dimensions.
type NodeInfo = onnx.NodeInfo

// ModelHandle is a loaded model: raw bytes, boundary metadata, and an open
// engine session.
type ModelHandle = onnx.ModelHandle

// LoadOption configures model loading.
type LoadOption = onnx.LoadOption

// WithRuntime selects an explicit engine runtime for the session.
var WithRuntime = onnx.WithRuntime

// WithRuntimeName selects a registered engine runtime by name.
var WithRuntimeName = onnx.WithRuntimeName

// Sentinel errors surfaced while loading a model.
var (
	ErrUnsupportedElemType = onnx.ErrUnsupportedElemType
	ErrNoInputs            = onnx.ErrNoInputs
	ErrNoOutputs           = onnx.ErrNoOutputs
)

// Load opens a model file and binds an engine session to it.
func Load(path string, opts ...LoadOption) (*ModelHandle, error) {
	return onnx.Load(path, opts...)
}

// LoadFromBytes stages model bytes to a private temporary file and loads
// it. The handle removes the staged file on Close.
func LoadFromBytes(data []byte, opts ...LoadOption) (*ModelHandle, error) {
	return onnx.LoadFromBytes(data, opts...)
}
