package kwargs

import (
	"reflect"
	"slices"
)

// Set is the ordered argument list of one call site. It accepts duplicate
// names; the binder rejects them.
type Set struct {
	args []Named
}

// Make groups args into a Set.
func Make(args ...Named) Set {
	return Set{args: slices.Clone(args)}
}

// Len returns the number of arguments.
func (s Set) Len() int {
	return len(s.args)
}

// At returns the i'th argument in call-site order.
func (s Set) At(i int) Named {
	return s.args[i]
}

// Args returns a copy of the arguments, suitable for Bind or Func.Call.
func (s Set) Args() []Named {
	return slices.Clone(s.args)
}

// Names returns the argument names in call-site order.
func (s Set) Names() []string {
	names := make([]string, len(s.args))
	for i, arg := range s.args {
		names[i] = arg.name
	}
	return names
}

// Has reports whether an argument is named name.
func (s Set) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Lookup returns the first argument named name.
func (s Set) Lookup(name string) (Named, bool) {
	for _, arg := range s.args {
		if arg.name == name {
			return arg, true
		}
	}
	return Named{}, false
}

// Get returns the argument named name converted to T.
func Get[T any](s Set, name string) (T, error) {
	var zero T
	arg, ok := s.Lookup(name)
	if !ok {
		return zero, &BindError{Kind: MissingRequired, Names: []string{name}}
	}
	return convertArg[T](arg, name, -1)
}

// GetOr is Get with a fallback for a missing name. A present argument of the
// wrong type is still an error.
func GetOr[T any](s Set, name string, def T) (T, error) {
	arg, ok := s.Lookup(name)
	if !ok {
		return def, nil
	}
	return convertArg[T](arg, name, -1)
}

// GetAt returns the i'th argument converted to T.
func GetAt[T any](s Set, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(s.args) {
		return zero, &BindError{Kind: MissingRequired, Positions: []int{i}}
	}
	return convertArg[T](s.args[i], s.args[i].name, i)
}

// GetAtOr is GetAt with a fallback for an out-of-range index.
func GetAtOr[T any](s Set, i int, def T) (T, error) {
	if i < 0 || i >= len(s.args) {
		return def, nil
	}
	return convertArg[T](s.args[i], s.args[i].name, i)
}

func convertArg[T any](arg Named, name string, pos int) (T, error) {
	var zero T
	to := reflect.TypeFor[T]()
	v, ok := convertValue(arg.current(), to, false)
	if !ok {
		err := &BindError{
			Kind:     TypeMismatch,
			Names:    []string{name},
			Expected: to.String(),
			Actual:   describeValueType(arg.current()),
		}
		if pos >= 0 {
			err.Positions = []int{pos}
		}
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}
