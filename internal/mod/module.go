// Package mod provides the step kinds a pipeline can execute
package mod

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gnzdotmx/climateflow/internal/validator"
)

// Module defines how one kind of step is executed by the interpreter
type Module interface {
	// Name returns the step kind it handles, e.g. "notebook"
	Name() string

	// Noun names the step's entry point in messages ("Notebook", "Script")
	Noun() string

	// Args returns the interpreter arguments running target
	Args(target string, params Params) []string

	// Tools returns the external tools that must work before any step of
	// this kind can run
	Tools(interpreter string) []validator.ExternalTool
}

// Params carries the run settings a module may hand to the interpreter
type Params struct {
	// CellTimeout bounds a single notebook cell
	CellTimeout time.Duration
}

// ModuleRegistry stores all available step kinds
type ModuleRegistry struct {
	modules      map[string]Module
	sync.RWMutex // Add thread safety
}

// NewModuleRegistry creates a new module registry
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		modules: make(map[string]Module),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *ModuleRegistry
)

// Default returns the registry holding the built-in notebook and script kinds
func Default() *ModuleRegistry {
	defaultOnce.Do(func() {
		defaultRegistry = NewModuleRegistry()
		for _, m := range []Module{Notebook{}, Script{}} {
			if err := defaultRegistry.Register(m); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("cannot register nil module")
	}

	name := m.Name()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if m.Noun() == "" {
		return fmt.Errorf("module %s has no noun", name)
	}

	r.Lock()
	defer r.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %s is already registered", name)
	}

	r.modules[name] = m
	return nil
}

// Get retrieves a module by step kind
func (r *ModuleRegistry) Get(name string) (Module, error) {
	if name == "" {
		return nil, fmt.Errorf("step kind cannot be empty")
	}

	r.RLock()
	defer r.RUnlock()

	module, exists := r.modules[name]
	if !exists {
		return nil, fmt.Errorf("unsupported step kind %q", name)
	}
	return module, nil
}

// Names returns the registered step kinds, sorted
func (r *ModuleRegistry) Names() []string {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tools returns the tools needed by the given kinds, in first-use order and
// without duplicates. Unknown kinds are ignored.
func (r *ModuleRegistry) Tools(interpreter string, kinds []string) []validator.ExternalTool {
	seen := make(map[string]bool)
	var tools []validator.ExternalTool
	for _, kind := range kinds {
		m, err := r.Get(kind)
		if err != nil {
			continue
		}
		for _, t := range m.Tools(interpreter) {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			tools = append(tools, t)
		}
	}
	return tools
}
