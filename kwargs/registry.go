package kwargs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Config controls binding behaviour.
type Config struct {
	// StrictTypes limits arguments to values assignable to the parameter
	// type, disabling the untyped-constant style numeric, string, and bool
	// conversions.
	StrictTypes bool
}

var (
	ErrAlreadyRegistered = errors.New("callable already registered")
	ErrUnknownCallable   = errors.New("unknown callable")
)

// Registry maps callable names to their descriptors. It is safe for
// concurrent use; each lookup and call is resolved independently.
type Registry struct {
	config Config
	mu     sync.RWMutex
	funcs  map[string]*Func
}

// Default is the registry populated by generated declarations.
var Default = NewRegistry(Config{})

// NewRegistry constructs an empty Registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		config: cfg,
		funcs:  make(map[string]*Func),
	}
}

// Declare describes fn under the registry's Config and registers it.
func (r *Registry) Declare(name string, fn any, specs ...ParamSpec) (*Func, error) {
	f, err := describe(r.config, name, fn, specs)
	if err != nil {
		return nil, err
	}
	if err := r.Register(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Register adds f under its name. Names are unique per registry.
func (r *Registry) Register(f *Func) error {
	if f == nil {
		return fmt.Errorf("register: %w", extractionError("", "nil callable"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[f.Name()]; exists {
		return fmt.Errorf("register %s: %w", f.Name(), ErrAlreadyRegistered)
	}
	r.funcs[f.Name()] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns the callable registered under name.
func (r *Registry) Lookup(name string) (*Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	return f, ok
}

// Funcs returns every registered callable sorted by name.
func (r *Registry) Funcs() []*Func {
	r.mu.RLock()
	out := make([]*Func, 0, len(r.funcs))
	for _, f := range r.funcs {
		out = append(out, f)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Call binds args against the named callable under the registry's Config
// and invokes it.
func (r *Registry) Call(name string, args ...Named) ([]any, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("call %s: %w", name, ErrUnknownCallable)
	}
	b, err := r.config.bind(f.sig, nil, args)
	if err != nil {
		return nil, err
	}
	return f.Emit(b)
}

// Register adds f to the Default registry.
func Register(f *Func) error {
	return Default.Register(f)
}

// MustRegister adds f to the Default registry, panicking on error.
func MustRegister(f *Func) {
	Default.MustRegister(f)
}

// Lookup finds name in the Default registry.
func Lookup(name string) (*Func, bool) {
	return Default.Lookup(name)
}

// Call invokes name from the Default registry.
func Call(name string, args ...Named) ([]any, error) {
	return Default.Call(name, args...)
}
