package kwargs

import (
	"fmt"
	"reflect"
)

// Func is a function value paired with its parameter descriptors.
type Func struct {
	sig    *Signature
	fn     reflect.Value
	config Config
}

// Describe extracts the descriptors of fn. Go keeps no parameter names at
// run time, so specs name each parameter in order; types come from fn itself.
// A non-function, a nil function, or a spec list that does not cover every
// parameter is reported as ExtractionFailure.
func Describe(name string, fn any, specs ...ParamSpec) (*Func, error) {
	return describe(Config{}, name, fn, specs)
}

// MustDescribe is like Describe but panics on error. It is meant for
// package-level declarations and generated code.
func MustDescribe(name string, fn any, specs ...ParamSpec) *Func {
	f, err := Describe(name, fn, specs...)
	if err != nil {
		panic(err)
	}
	return f
}

func describe(cfg Config, name string, fn any, specs []ParamSpec) (*Func, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() {
		return nil, extractionError(name, "nil is not a function")
	}
	if v.Kind() != reflect.Func {
		return nil, extractionError(name, fmt.Sprintf("%s is not a function", v.Type()))
	}
	if v.IsNil() {
		return nil, extractionError(name, fmt.Sprintf("nil %s", v.Type()))
	}
	t := v.Type()
	if t.NumIn() != len(specs) {
		return nil, extractionError(name, fmt.Sprintf("function has %d parameters, %d declared", t.NumIn(), len(specs)))
	}

	params := make([]Param, len(specs))
	for i, spec := range specs {
		params[i] = Param{
			Name:       spec.name,
			Type:       t.In(i),
			HasDefault: spec.hasDefault,
			Default:    spec.supplier,
			Variadic:   t.IsVariadic() && i == t.NumIn()-1,
		}
	}
	sig, err := NewSignature(name, params...)
	if err != nil {
		return nil, err
	}
	return &Func{sig: sig, fn: v, config: cfg}, nil
}

// Name returns the declared callable name.
func (f *Func) Name() string {
	return f.sig.Name
}

// Signature returns the extracted descriptors.
func (f *Func) Signature() *Signature {
	return f.sig
}

// Type returns the reflected function type.
func (f *Func) Type() reflect.Type {
	return f.fn.Type()
}

func (f *Func) String() string {
	return f.sig.String()
}
