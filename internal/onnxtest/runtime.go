package onnxtest

import (
	"errors"
	"math"

	"github.com/rowml/onnxscore/internal/engine"
	"github.com/rowml/onnxscore/internal/tensor"
)

// SessionFunc adapts a function to the engine.Session interface.
type SessionFunc func(inputs []*tensor.Tensor) ([]*tensor.Tensor, error)

// Run calls f.
func (f SessionFunc) Run(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) { return f(inputs) }

// Close is a no-op.
func (f SessionFunc) Close() error { return nil }

// Runtime opens the same stub session for every model path and records the
// paths it was asked to open.
type Runtime struct {
	Session engine.Session
	Opened  []string
	OpenErr error
}

// Open returns the configured session.
func (r *Runtime) Open(path string) (engine.Session, error) {
	r.Opened = append(r.Opened, path)
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	return r.Session, nil
}

// Echo returns a session that hands its inputs back as outputs.
func Echo() engine.Session {
	return SessionFunc(func(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
		return inputs, nil
	})
}

// Softmax returns a session that reads one float32 input and produces a
// [1 n] softmax distribution over its elements.
func Softmax() engine.Session {
	return SessionFunc(func(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
		if len(inputs) != 1 {
			return nil, errors.New("softmax session expects one input")
		}
		src := inputs[0].Float32s()
		if len(src) == 0 {
			return nil, errors.New("softmax session expects a non-empty input")
		}

		maxVal := src[0]
		for _, v := range src[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		out := make([]float32, len(src))
		var sum float64
		for i, v := range src {
			e := math.Exp(float64(v - maxVal))
			out[i] = float32(e)
			sum += e
		}
		for i := range out {
			out[i] = float32(float64(out[i]) / sum)
		}

		t, err := tensor.Wrap(out, tensor.Shape{1, len(out)})
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor{t}, nil
	})
}

// Failing returns a session whose Run always fails with err.
func Failing(err error) engine.Session {
	return SessionFunc(func([]*tensor.Tensor) ([]*tensor.Tensor, error) {
		return nil, err
	})
}
