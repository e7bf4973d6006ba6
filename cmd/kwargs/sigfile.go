package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rsl-org/kwargs/kwargs"
	"gopkg.in/yaml.v3"
)

// signatureFile is the on-disk declaration of callables bound from the CLI.
//
//	functions:
//	  - name: volume
//	    params:
//	      - {name: width, type: int}
//	      - {name: depth, type: int, default: 1}
type signatureFile struct {
	Functions []functionDecl `yaml:"functions" toml:"functions"`
}

type functionDecl struct {
	Name   string      `yaml:"name" toml:"name"`
	Params []paramDecl `yaml:"params" toml:"params"`
}

type paramDecl struct {
	Name     string `yaml:"name" toml:"name"`
	Type     string `yaml:"type" toml:"type"`
	Default  any    `yaml:"default,omitempty" toml:"default,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty" toml:"variadic,omitempty"`
}

type signatureSet struct {
	path   string
	sigs   []*kwargs.Signature
	byName map[string]*kwargs.Signature
}

func (s *signatureSet) Lookup(name string) (*kwargs.Signature, bool) {
	sig, ok := s.byName[name]
	return sig, ok
}

// Names returns the declared callable names, sorted.
func (s *signatureSet) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isSignatureFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

func loadSignatureFile(path string) (*signatureSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signatures: %w", err)
	}
	set, err := parseSignatures(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func parseSignatures(path string, data []byte) (*signatureSet, error) {
	var file signatureFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported signature file extension %q", filepath.Ext(path))
	}

	set := &signatureSet{path: path, byName: make(map[string]*kwargs.Signature, len(file.Functions))}
	var errs []error
	for i, decl := range file.Functions {
		if decl.Name == "" {
			errs = append(errs, fmt.Errorf("function %d has no name", i))
			continue
		}
		if _, dup := set.byName[decl.Name]; dup {
			errs = append(errs, fmt.Errorf("function %q declared more than once", decl.Name))
			continue
		}
		sig, err := decl.signature()
		if err != nil {
			errs = append(errs, fmt.Errorf("function %q: %w", decl.Name, err))
			continue
		}
		set.sigs = append(set.sigs, sig)
		set.byName[decl.Name] = sig
	}
	if len(errs) > 0 {
		return nil, combineErrors(errs)
	}
	return set, nil
}

func (d functionDecl) signature() (*kwargs.Signature, error) {
	params := make([]kwargs.Param, len(d.Params))
	for i, decl := range d.Params {
		typeName := strings.TrimSpace(decl.Type)
		variadic := decl.Variadic
		if rest, ok := strings.CutPrefix(typeName, "..."); ok {
			typeName, variadic = "[]"+rest, true
		}
		t := anyType
		if typeName != "" {
			parsed, err := parseTypeName(typeName)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", decl.Name, err)
			}
			t = parsed
		}
		if variadic && t.Kind() != reflect.Slice {
			t = reflect.SliceOf(t)
		}
		params[i] = kwargs.Param{Name: decl.Name, Type: t, Variadic: variadic}
		if decl.Default != nil {
			supplier, err := defaultSupplier(decl.Default, t)
			if err != nil {
				return nil, fmt.Errorf("parameter %q default: %w", decl.Name, err)
			}
			params[i].HasDefault, params[i].Default = true, supplier
		}
	}
	return kwargs.NewSignature(d.Name, params...)
}

var (
	anyType      = reflect.TypeFor[any]()
	durationType = reflect.TypeFor[time.Duration]()

	namedTypes = map[string]reflect.Type{
		"any":           anyType,
		"interface{}":   anyType,
		"bool":          reflect.TypeFor[bool](),
		"string":        reflect.TypeFor[string](),
		"int":           reflect.TypeFor[int](),
		"int8":          reflect.TypeFor[int8](),
		"int16":         reflect.TypeFor[int16](),
		"int32":         reflect.TypeFor[int32](),
		"rune":          reflect.TypeFor[rune](),
		"int64":         reflect.TypeFor[int64](),
		"uint":          reflect.TypeFor[uint](),
		"uint8":         reflect.TypeFor[uint8](),
		"byte":          reflect.TypeFor[byte](),
		"uint16":        reflect.TypeFor[uint16](),
		"uint32":        reflect.TypeFor[uint32](),
		"uint64":        reflect.TypeFor[uint64](),
		"float32":       reflect.TypeFor[float32](),
		"float64":       reflect.TypeFor[float64](),
		"complex64":     reflect.TypeFor[complex64](),
		"complex128":    reflect.TypeFor[complex128](),
		"time.Duration": durationType,
	}
)

// parseTypeName maps the type spellings accepted in signature files and
// composite literals to reflect types. Slices and pointers nest.
func parseTypeName(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(name, "[]"):
		elem, err := parseTypeName(name[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(name, "*"):
		elem, err := parseTypeName(name[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	}
	if t, ok := namedTypes[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unsupported type %q", name)
}

// defaultSupplier converts a decoded default to t. Slice defaults are copied
// on every materialization so callees cannot alias them.
func defaultSupplier(raw any, t reflect.Type) (func() any, error) {
	v, err := decodedValue(raw, t)
	if err != nil {
		return nil, err
	}
	if v.Kind() == reflect.Slice {
		return func() any {
			out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
			reflect.Copy(out, v)
			return out.Interface()
		}, nil
	}
	val := v.Interface()
	return func() any { return val }, nil
}

func decodedValue(raw any, t reflect.Type) (reflect.Value, error) {
	if t == durationType {
		if s, ok := raw.(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		}
	}
	if items, ok := raw.([]any); ok && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			elem, err := decodedValue(item, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	}
	v, err := kwargs.Convert(raw, t)
	if err != nil {
		var bindErr *kwargs.BindError
		if errors.As(err, &bindErr) {
			return reflect.Value{}, fmt.Errorf("%s is not convertible to %s", bindErr.Actual, bindErr.Expected)
		}
		return reflect.Value{}, err
	}
	return v, nil
}
