package kwargs

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

var durationType = reflect.TypeFor[time.Duration]()

type structShape struct {
	sig    *Signature
	fields []int
	err    error
}

var structShapes sync.Map // reflect.Type -> *structShape

// DescribeStruct extracts constructor descriptors from the exported fields of
// struct type t, in field order. Field tags adjust each parameter:
//
//	Width int           `kwarg:"width"`
//	Depth int           `kwarg:"depth" default:"1"`
//	Label string        `kwarg:",optional"` // zero value when omitted
//	cache map[string]int                    // unexported: skipped
//	Debug bool          `kwarg:"-"`         // skipped
//
// Results are cached per type.
func DescribeStruct(t reflect.Type) (*Signature, error) {
	shape := shapeOf(t)
	return shape.sig, shape.err
}

func shapeOf(t reflect.Type) *structShape {
	if t == nil {
		return &structShape{err: extractionError("", "nil type")}
	}
	if cached, ok := structShapes.Load(t); ok {
		return cached.(*structShape)
	}
	shape := buildShape(t)
	actual, _ := structShapes.LoadOrStore(t, shape)
	return actual.(*structShape)
}

func buildShape(t reflect.Type) *structShape {
	name := t.String()
	if t.Kind() != reflect.Struct {
		return &structShape{err: extractionError(name, fmt.Sprintf("%s is not a struct", t))}
	}
	var params []Param
	var fields []int
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("kwarg")
		if tag == "-" {
			continue
		}
		paramName, opts, _ := strings.Cut(tag, ",")
		if paramName == "" {
			paramName = field.Name
		}
		p := Param{Name: paramName, Type: field.Type}
		if def, ok := field.Tag.Lookup("default"); ok {
			supplier, err := parseDefaultTag(def, field.Type)
			if err != nil {
				return &structShape{err: extractionError(name, fmt.Sprintf("field %s: %v", field.Name, err))}
			}
			p.HasDefault, p.Default = true, supplier
		} else if opts == "optional" {
			zero := reflect.Zero(field.Type).Interface()
			p.HasDefault, p.Default = true, func() any { return zero }
		}
		params = append(params, p)
		fields = append(fields, i)
	}
	sig, err := NewSignature(name, params...)
	if err != nil {
		return &structShape{err: err}
	}
	return &structShape{sig: sig, fields: fields}
}

func parseDefaultTag(raw string, t reflect.Type) (func() any, error) {
	out := reflect.New(t).Elem()
	switch {
	case t == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		out.SetInt(int64(d))
	case out.CanInt():
		n, err := strconv.ParseInt(raw, 0, t.Bits())
		if err != nil {
			return nil, err
		}
		out.SetInt(n)
	case out.CanUint():
		n, err := strconv.ParseUint(raw, 0, t.Bits())
		if err != nil {
			return nil, err
		}
		out.SetUint(n)
	case out.CanFloat():
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		out.SetFloat(f)
	case t.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case t.Kind() == reflect.String:
		out.SetString(raw)
	default:
		return nil, fmt.Errorf("default tag not supported for %s", t)
	}
	val := out.Interface()
	return func() any { return val }, nil
}

// Construct builds a T from named arguments matched against its exported
// fields, filling omitted optional fields from their defaults.
func Construct[T any](args ...Named) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	shape := shapeOf(t)
	if shape.err != nil {
		return zero, shape.err
	}
	b, err := Bind(shape.sig, args...)
	if err != nil {
		return zero, err
	}
	out := reflect.New(t).Elem()
	for i, slot := range b.Slots {
		out.Field(shape.fields[i]).Set(slot.Value())
	}
	return out.Interface().(T), nil
}
