package kwargs

import "reflect"

// Convert converts v to type t under the rules the binder applies to a
// non-strict argument. Failure is a TypeMismatch *BindError.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	out, ok := convertValue(valueOf(v), t, false)
	if !ok {
		return reflect.Value{}, &BindError{Kind: TypeMismatch, Expected: t.String(), Actual: describeValueType(valueOf(v))}
	}
	return out, nil
}

func valueOf(x any) reflect.Value {
	return reflect.ValueOf(x)
}

// convertValue applies Go's implicit conversion rules to v for a parameter of
// type to. An invalid v stands for untyped nil. Unless strict is set, a value
// whose type is a predeclared basic type also converts the way an untyped
// constant would: any lossless conversion within the numeric, string, or bool
// family succeeds, so Arg("depth", 1) binds an int64 or a named int type.
func convertValue(v reflect.Value, to reflect.Type, strict bool) (reflect.Value, bool) {
	if !v.IsValid() {
		if nillable(to) {
			return reflect.Zero(to), true
		}
		return reflect.Value{}, false
	}
	if v.Type() == to {
		return v, true
	}
	if v.Type().AssignableTo(to) {
		return assignTo(v, to), true
	}
	if strict {
		return reflect.Value{}, false
	}
	return convertLiteral(v, to)
}

func convertLiteral(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	from := v.Type()
	if from.PkgPath() != "" || from.Name() == "" {
		return reflect.Value{}, false
	}
	switch {
	case isNumeric(from.Kind()) && isNumeric(to.Kind()) && isComplex(from.Kind()) == isComplex(to.Kind()):
		out := v.Convert(to)
		if !out.Convert(from).Equal(v) || isNegative(v) != isNegative(out) {
			return reflect.Value{}, false
		}
		return out, true
	case from.Kind() == reflect.String && to.Kind() == reflect.String,
		from.Kind() == reflect.Bool && to.Kind() == reflect.Bool:
		return v.Convert(to), true
	default:
		return reflect.Value{}, false
	}
}

// convertibleType is the value-free check used for borrowed arguments, whose
// pointee is only read at emission.
func convertibleType(from, to reflect.Type) bool {
	return from == to || from.AssignableTo(to)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

func isNegative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case v.CanFloat():
		return v.Float() < 0
	default:
		return false
	}
}

func isComplex(k reflect.Kind) bool {
	return k == reflect.Complex64 || k == reflect.Complex128
}

// assignTo converts an assignable value to exactly type t, so interface
// parameters hold an interface-typed reflect.Value.
func assignTo(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}
	if v.Type() == t {
		return v
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out
}

func describeValueType(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}
