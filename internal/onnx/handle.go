package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rowml/onnxscore/internal/engine"
	"github.com/rowml/onnxscore/internal/tensor"
)

// Configuration errors raised at handle construction.
var (
	ErrNoInputs  = errors.New("model declares no inputs")
	ErrNoOutputs = errors.New("model declares no outputs")
)

// LoadOption configures model loading.
type LoadOption func(*loadConfig)

type loadConfig struct {
	runtime     engine.Runtime
	runtimeName string
}

// WithRuntime loads the model with an explicit engine runtime, bypassing
// the registry.
func WithRuntime(rt engine.Runtime) LoadOption {
	return func(c *loadConfig) { c.runtime = rt }
}

// WithRuntimeName loads the model with a named registered runtime.
func WithRuntimeName(name string) LoadOption {
	return func(c *loadConfig) { c.runtimeName = name }
}

// ModelHandle owns a loaded model: the raw bytes kept for persistence, an
// open inference session, and the input/output node metadata. It is
// read-only after construction and may be shared across row cursors; the
// session declares its own safety for concurrent Run calls.
type ModelHandle struct {
	raw       []byte
	session   engine.Session
	inputs    []NodeInfo
	outputs   []NodeInfo
	stagedDir string // non-empty when constructed from bytes; removed on Close
	closed    bool
}

// Load reads a model from a file and opens an inference session over it.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for model loading.
func Load(path string, opts ...LoadOption) (*ModelHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return newHandle(data, path, "", opts)
}

// LoadFromBytes stages the model bytes to a private, uniquely-named
// temporary file and delegates to path-based construction. The handle owns
// the staged directory and removes it on Close.
func LoadFromBytes(data []byte, opts ...LoadOption) (*ModelHandle, error) {
	dir, err := os.MkdirTemp("", "onnxscore-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".onnx")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to stage model bytes: %w", err)
	}

	handle, err := newHandle(data, path, dir, opts)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return handle, nil
}

func newHandle(data []byte, path, stagedDir string, opts []LoadOption) (*ModelHandle, error) {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	proto, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if proto.Graph == nil {
		return nil, errors.New("model has no graph")
	}

	inputs, outputs, err := boundaryNodes(proto.Graph)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	rt := cfg.runtime
	if rt == nil {
		rt, err = engine.Lookup(cfg.runtimeName)
		if err != nil {
			return nil, err
		}
	}
	session, err := rt.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inference session: %w", err)
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	return &ModelHandle{
		raw:       raw,
		session:   session,
		inputs:    inputs,
		outputs:   outputs,
		stagedDir: stagedDir,
	}, nil
}

// boundaryNodes derives input and output NodeInfo lists from the graph,
// excluding initializers (weights) from the inputs.
func boundaryNodes(graph *GraphProto) (inputs, outputs []NodeInfo, err error) {
	initNames := make(map[string]bool, len(graph.InitializerNames))
	for _, name := range graph.InitializerNames {
		initNames[name] = true
	}

	for i := range graph.Inputs {
		if initNames[graph.Inputs[i].Name] {
			continue
		}
		info, err := nodeInfoFromValueInfo(&graph.Inputs[i])
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, info)
	}
	for i := range graph.Outputs {
		info, err := nodeInfoFromValueInfo(&graph.Outputs[i])
		if err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, info)
	}
	return inputs, outputs, nil
}

// Inputs returns the model's input node metadata.
func (h *ModelHandle) Inputs() []NodeInfo {
	return h.inputs
}

// Outputs returns the model's output node metadata.
func (h *ModelHandle) Outputs() []NodeInfo {
	return h.outputs
}

// RawBytes returns the original serialized model bytes.
func (h *ModelHandle) RawBytes() []byte {
	return h.raw
}

// Run invokes the inference session. Same inputs yield the same outputs;
// no caching is performed and failures are never retried.
func (h *ModelHandle) Run(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if h.closed {
		return nil, errors.New("model handle is closed")
	}
	outputs, err := h.session.Run(inputs)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return outputs, nil
}

// Close closes the inference session and removes any staged temp artifacts.
func (h *ModelHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	err := h.session.Close()
	if h.stagedDir != "" {
		if rmErr := os.RemoveAll(h.stagedDir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
