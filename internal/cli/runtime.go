package cli

import (
	"errors"

	"github.com/rowml/onnxscore/internal/engine"
	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/tensor"
)

// ErrNoRuntime is returned when a command that runs inference has no real
// engine runtime to use.
var ErrNoRuntime = errors.New("no inference runtime linked; pass --runtime or link an engine")

// metadataRuntime opens sessions that expose model metadata but refuse to
// run inference. Commands that only read boundary information (inspect,
// pack) load models through it.
type metadataRuntime struct{}

type metadataSession struct{}

func (metadataSession) Run([]*tensor.Tensor) ([]*tensor.Tensor, error) { return nil, ErrNoRuntime }
func (metadataSession) Close() error                                   { return nil }

func (metadataRuntime) Open(string) (engine.Session, error) { return metadataSession{}, nil }

// loadOptions selects the configured runtime, falling back to the
// metadata-only runtime when none is named and none is registered.
func loadOptions(name string) []onnx.LoadOption {
	if name != "" {
		return []onnx.LoadOption{onnx.WithRuntimeName(name)}
	}
	if _, err := engine.Lookup(""); err == nil {
		return nil
	}
	return []onnx.LoadOption{onnx.WithRuntime(metadataRuntime{})}
}
