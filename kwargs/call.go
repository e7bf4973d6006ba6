package kwargs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	errorType = reflect.TypeFor[error]()

	// ErrForeignBinding is returned when a Binding is emitted against a
	// Func other than the one whose Signature produced it.
	ErrForeignBinding = errors.New("binding belongs to a different signature")
)

// Bind resolves args against f's descriptors.
func (f *Func) Bind(args ...Named) (*Binding, error) {
	return f.config.bind(f.sig, nil, args)
}

// BindPositional resolves leading positional values followed by named args.
func (f *Func) BindPositional(positional []any, args ...Named) (*Binding, error) {
	return f.config.bind(f.sig, positional, args)
}

// Call binds args and invokes f once, returning its results.
func (f *Func) Call(args ...Named) ([]any, error) {
	b, err := f.Bind(args...)
	if err != nil {
		return nil, err
	}
	return f.Emit(b)
}

// CallPositional binds and invokes f with leading positional values.
func (f *Func) CallPositional(positional []any, args ...Named) ([]any, error) {
	b, err := f.BindPositional(positional, args...)
	if err != nil {
		return nil, err
	}
	return f.Emit(b)
}

// Emit invokes f exactly once with the slots of b in declaration order.
// Borrowed slots are read now, not when b was built.
func (f *Func) Emit(b *Binding) ([]any, error) {
	if b == nil || b.Signature != f.sig {
		return nil, fmt.Errorf("emit %s: %w", f.sig.Name, ErrForeignBinding)
	}
	in := b.Values()
	var out []reflect.Value
	if f.sig.Variadic {
		out = f.fn.CallSlice(in)
	} else {
		out = f.fn.Call(in)
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

// Invoke calls f and returns its first result as R. A trailing error result
// is returned as the error. Functions with no value result yield the zero R.
func Invoke[R any](f *Func, args ...Named) (R, error) {
	var zero R
	results, err := f.Call(args...)
	if err != nil {
		return zero, err
	}
	return unpackResults[R](f, results)
}

// InvokePositional is Invoke with leading positional values.
func InvokePositional[R any](f *Func, positional []any, args ...Named) (R, error) {
	var zero R
	results, err := f.CallPositional(positional, args...)
	if err != nil {
		return zero, err
	}
	return unpackResults[R](f, results)
}

func unpackResults[R any](f *Func, results []any) (R, error) {
	var zero R
	t := f.fn.Type()
	n := t.NumOut()
	if n > 0 && t.Out(n-1) == errorType {
		if callErr, _ := results[n-1].(error); callErr != nil {
			return zero, callErr
		}
		results = results[:n-1]
	}
	if len(results) == 0 || results[0] == nil {
		return zero, nil
	}
	val, ok := results[0].(R)
	if !ok {
		return zero, fmt.Errorf("%s returns %s, not %s", f.sig.Name, t.Out(0), reflect.TypeFor[R]())
	}
	return val, nil
}
