// Package engine defines the seam between the scoring core and a native
// inference runtime. The runtime is an opaque collaborator: given input
// tensors it returns output tensors. The core adds no locking around Run;
// a Session declares its own concurrency guarantees.
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rowml/onnxscore/internal/tensor"
)

// Session is an open inference session over one loaded model.
// Run must be deterministic over its argument list and perform no caching.
type Session interface {
	Run(inputs []*tensor.Tensor) ([]*tensor.Tensor, error)
	Close() error
}

// Runtime opens inference sessions from model files on disk.
type Runtime interface {
	Open(path string) (Session, error)
}

var (
	mu          sync.RWMutex
	runtimes    = make(map[string]Runtime)
	defaultName string
)

// Register adds a named runtime. The first registered runtime becomes the
// default. Registering the same name twice panics: runtime wiring is a
// process-startup concern, not a recoverable condition.
func Register(name string, rt Runtime) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := runtimes[name]; dup {
		panic(fmt.Sprintf("engine: runtime %q registered twice", name))
	}
	runtimes[name] = rt
	if defaultName == "" {
		defaultName = name
	}
}

// SetDefault selects the runtime used when no name is given.
func SetDefault(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := runtimes[name]; !ok {
		return fmt.Errorf("engine: unknown runtime %q", name)
	}
	defaultName = name
	return nil
}

// Lookup returns a registered runtime by name, or the default when name is
// empty.
func Lookup(name string) (Runtime, error) {
	mu.RLock()
	defer mu.RUnlock()
	if name == "" {
		name = defaultName
	}
	if name == "" {
		return nil, fmt.Errorf("engine: no runtime registered")
	}
	rt, ok := runtimes[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown runtime %q (registered: %v)", name, namesLocked())
	}
	return rt, nil
}

// Names returns the registered runtime names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(runtimes))
	for name := range runtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
