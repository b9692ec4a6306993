package fixtures

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable exposed to criteria and attribute
// expressions. Faker helpers are registered this way so expressions can call
// name(), email(), sentence(3), and friends.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by case-insensitive name.
// Faker helpers are registered as defaults: caller registrations shadow them,
// and swapping the faker replaces only the default entries.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
	defaults  map[string]bool
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
		defaults:  make(map[string]bool),
	}
}

// Register stores fn under name, guarding against duplicates. Registering
// over a default entry replaces it.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("fixtures: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("fixtures: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists && !r.defaults[key] {
		return fmt.Errorf("fixtures: function %q already registered", name)
	}
	r.functions[key] = fn
	delete(r.defaults, key)
	return nil
}

// registerDefault stores fn under name as a default entry. Existing caller
// registrations are left alone; existing defaults are replaced.
func (r *FunctionRegistry) registerDefault(name string, fn Function) {
	if fn == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if r.defaults == nil {
		r.defaults = make(map[string]bool)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists && !r.defaults[key] {
		return
	}
	r.functions[key] = fn
	r.defaults[key] = true
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
		defaults:  make(map[string]bool, len(r.defaults)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	for name, isDefault := range r.defaults {
		clone.defaults[name] = isDefault
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("fixtures: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("fixtures: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry configures a factory to expose registry to its
// evaluators. The registry is cloned so later registrations on the original
// do not leak into already-built factories.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the factory's evaluators.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
