package kwargs

import (
	"fmt"
	"reflect"
)

// Category records how a wrapped value is forwarded.
type Category uint8

const (
	// Owned values are copied into the wrapper when it is built.
	Owned Category = iota
	// Borrowed values are read from the caller's variable when the target is
	// invoked.
	Borrowed
)

func (c Category) String() string {
	switch c {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// Named pairs a name with a value at one call site. Construction performs no
// validation; names and types are checked when the argument is bound.
type Named struct {
	name     string
	value    reflect.Value
	category Category
}

// Arg wraps an owned value. The static type T is kept, so Arg[int64]("n", 1)
// binds as an int64 regardless of the literal. A nil interface value is
// treated as untyped nil.
func Arg[T any](name string, value T) Named {
	v := reflect.ValueOf(&value).Elem()
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			v = reflect.Value{}
		} else {
			v = v.Elem()
		}
	}
	return Named{name: name, value: v, category: Owned}
}

// Ref wraps a borrowed variable. The bound parameter receives the variable's
// value as of the call, or ptr itself when the parameter type is *T.
func Ref[T any](name string, ptr *T) Named {
	return Named{name: name, value: reflect.ValueOf(ptr), category: Borrowed}
}

// Name returns the argument name.
func (n Named) Name() string {
	return n.name
}

// Category reports whether the argument is owned or borrowed.
func (n Named) Category() Category {
	return n.category
}

// Type returns the type of the wrapped value, or nil for untyped nil. For a
// borrowed argument it is the type of the referenced variable.
func (n Named) Type() reflect.Type {
	if !n.value.IsValid() {
		return nil
	}
	if n.category == Borrowed {
		return n.value.Type().Elem()
	}
	return n.value.Type()
}

// Value returns the current wrapped value.
func (n Named) Value() any {
	v := n.current()
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func (n Named) String() string {
	return fmt.Sprintf("%s=%v", n.name, n.Value())
}

// current dereferences borrowed arguments; a nil reference yields an invalid
// value.
func (n Named) current() reflect.Value {
	if n.category == Borrowed {
		if !n.value.IsValid() || n.value.IsNil() {
			return reflect.Value{}
		}
		return n.value.Elem()
	}
	return n.value
}
