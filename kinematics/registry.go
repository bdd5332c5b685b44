package kinematics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constructor builds a solver from a machine description
type Constructor func(cfg Config) (Solver, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

func init() {
	identity := func(cfg Config) (Solver, error) {
		return NewTrivial(cfg)
	}
	Register("identity", identity)
	Register("trivkins", identity)
}

// Register makes a solver available by name. It panics on a duplicate name.
func Register(name string, ctor Constructor) {
	name = strings.ToLower(name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic("kinematics: Register called twice for " + name)
	}
	registry[name] = ctor
}

// New constructs the named solver and wraps it with Checked
func New(name string, cfg Config) (Solver, error) {
	registryMu.RLock()
	ctor, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported kinematics: %s", name)
	}

	s, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s kinematics: %w", name, err)
	}
	return Checked(s), nil
}

// Names returns the registered solver names, sorted
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
