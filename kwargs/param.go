package kwargs

import (
	"fmt"
	"reflect"
	"strings"
)

var anyType = reflect.TypeFor[any]()

// Param describes one formal parameter of a bindable callable.
type Param struct {
	Name  string
	Index int
	Type  reflect.Type
	// HasDefault reports whether the declaration supplies a value for an
	// omitted argument. Default must then be non-nil and pure.
	HasDefault bool
	Default    func() any
	// Variadic marks the trailing ...T parameter. Type is the slice type.
	Variadic bool
}

func (p Param) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte(' ')
	if p.Variadic {
		b.WriteString("..." + p.Type.Elem().String())
	} else {
		b.WriteString(p.Type.String())
	}
	if p.HasDefault && !p.Variadic {
		fmt.Fprintf(&b, " = %#v", p.Default())
	}
	return b.String()
}

// materialize produces the declared default converted to the parameter type.
func (p Param) materialize() (reflect.Value, bool) {
	if p.Default == nil {
		return reflect.Zero(p.Type), p.Variadic
	}
	return convertValue(valueOf(p.Default()), p.Type, false)
}

// Signature is the ordered parameter list of one callable.
type Signature struct {
	Name     string
	Params   []Param
	Variadic bool

	index map[string]int
}

// NewSignature validates params and returns an immutable Signature. Names must
// be non-empty and pairwise distinct, defaults must convert to their
// parameter type, and only the last parameter may be variadic. A parameter
// with a nil Type is typed as any.
func NewSignature(name string, params ...Param) (*Signature, error) {
	sig := &Signature{
		Name:   name,
		Params: make([]Param, len(params)),
		index:  make(map[string]int, len(params)),
	}
	for i, p := range params {
		if p.Name == "" || p.Name == "_" {
			return nil, extractionError(name, fmt.Sprintf("parameter %d has no name", i))
		}
		if _, dup := sig.index[p.Name]; dup {
			return nil, extractionError(name, fmt.Sprintf("parameter %q declared more than once", p.Name))
		}
		if p.Type == nil {
			p.Type = anyType
		}
		p.Index = i
		if p.Variadic {
			if i != len(params)-1 {
				return nil, extractionError(name, fmt.Sprintf("variadic parameter %q must be last", p.Name))
			}
			if p.Type.Kind() != reflect.Slice {
				return nil, extractionError(name, fmt.Sprintf("variadic parameter %q must be a slice, got %s", p.Name, p.Type))
			}
			// Variadic tails may always be omitted, as in a positional call.
			p.HasDefault = true
			sig.Variadic = true
		}
		if p.HasDefault && !p.Variadic {
			if p.Default == nil {
				return nil, extractionError(name, fmt.Sprintf("parameter %q has a default but no supplier", p.Name))
			}
			if _, ok := p.materialize(); !ok {
				return nil, extractionError(name, fmt.Sprintf("default for parameter %q is %s, not convertible to %s",
					p.Name, describeValueType(valueOf(p.Default())), p.Type))
			}
		}
		sig.index[p.Name] = i
		sig.Params[i] = p
	}
	return sig, nil
}

// Len returns the parameter count.
func (s *Signature) Len() int {
	return len(s.Params)
}

// Param looks up a parameter by name.
func (s *Signature) Param(name string) (Param, bool) {
	idx, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.Params[idx], true
}

// Names returns the parameter names in declaration order.
func (s *Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

func (s *Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ParamSpec declares the name, and optionally the default, of one parameter
// of a function passed to Describe. Specs are matched to the function's
// parameters by position.
type ParamSpec struct {
	name       string
	hasDefault bool
	supplier   func() any
}

// Required declares a parameter that every call site must name.
func Required(name string) ParamSpec {
	return ParamSpec{name: name}
}

// Optional declares a parameter whose omitted argument falls back to value.
// The same value is returned on every materialization.
func Optional(name string, value any) ParamSpec {
	return ParamSpec{name: name, hasDefault: true, supplier: func() any { return value }}
}

// OptionalFunc declares a parameter whose default is produced by supplier each
// time an argument is omitted.
func OptionalFunc[T any](name string, supplier func() T) ParamSpec {
	spec := ParamSpec{name: name, hasDefault: true}
	if supplier != nil {
		spec.supplier = func() any { return supplier() }
	}
	return spec
}

// Name returns the declared parameter name.
func (s ParamSpec) Name() string {
	return s.name
}
