package main

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rsl-org/kwargs/kwargs"
)

func TestParseSignaturesYAMLAndTOMLAgree(t *testing.T) {
	yamlSrc := `functions:
  - name: fetch
    params:
      - {name: url, type: string}
      - {name: retries, type: uint8, default: 3}
      - {name: timeout, type: time.Duration, default: 2s}
      - {name: codes, type: "[]int", default: [200, 204]}
      - {name: extra, type: any, default: hello}
`
	tomlSrc := `
[[functions]]
name = "fetch"
params = [
  { name = "url", type = "string" },
  { name = "retries", type = "uint8", default = 3 },
  { name = "timeout", type = "time.Duration", default = "2s" },
  { name = "codes", type = "[]int", default = [200, 204] },
  { name = "extra", type = "any", default = "hello" },
]
`
	fromYAML, err := parseSignatures("sigs.yaml", []byte(yamlSrc))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	fromTOML, err := parseSignatures("sigs.toml", []byte(tomlSrc))
	if err != nil {
		t.Fatalf("toml: %v", err)
	}

	for _, set := range []*signatureSet{fromYAML, fromTOML} {
		sig, ok := set.Lookup("fetch")
		if !ok {
			t.Fatalf("%s: fetch missing", set.path)
		}
		b, err := kwargs.Bind(sig, kwargs.Arg("url", "http://x"))
		if err != nil {
			t.Fatalf("%s: bind: %v", set.path, err)
		}
		want := []any{"http://x", uint8(3), 2 * time.Second, []int{200, 204}, "hello"}
		if got := b.Interfaces(); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %#v, want %#v", set.path, got, want)
		}
	}
}

func TestSliceDefaultsAreCopied(t *testing.T) {
	set, err := parseSignatures("sigs.yaml", []byte(`functions:
  - name: f
    params:
      - {name: xs, type: "[]int", default: [1, 2]}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sig, _ := set.Lookup("f")
	first, err := kwargs.Bind(sig)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	first.Slots[0].Value().Index(0).SetInt(99)
	second, err := kwargs.Bind(sig)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := second.Slots[0].Interface(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("default was aliased: %v", got)
	}
}

func TestParseSignaturesErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		src  string
		want string
	}{
		{name: "extension", path: "sigs.json", src: "{}", want: "unsupported signature file extension"},
		{name: "bad yaml", path: "sigs.yaml", src: "functions: [", want: "decode yaml"},
		{name: "bad toml", path: "sigs.toml", src: "functions = [", want: "decode toml"},
		{name: "no name", path: "sigs.yaml", src: "functions:\n  - params: []\n", want: "function 0 has no name"},
		{name: "duplicate function", path: "sigs.yaml", src: "functions:\n  - name: f\n  - name: f\n", want: `function "f" declared more than once`},
		{name: "unknown type", path: "sigs.yaml", src: "functions:\n  - name: f\n    params:\n      - {name: x, type: widget}\n", want: `unsupported type "widget"`},
		{name: "duplicate param", path: "sigs.yaml", src: "functions:\n  - name: f\n    params:\n      - {name: x, type: int}\n      - {name: x, type: int}\n", want: `parameter "x" declared more than once`},
		{name: "lossy default", path: "sigs.yaml", src: "functions:\n  - name: f\n    params:\n      - {name: x, type: int8, default: 300}\n", want: "int is not convertible to int8"},
		{name: "bad duration", path: "sigs.yaml", src: "functions:\n  - name: f\n    params:\n      - {name: d, type: time.Duration, default: soon}\n", want: "invalid duration"},
		{name: "variadic not last", path: "sigs.yaml", src: "functions:\n  - name: f\n    params:\n      - {name: xs, type: ...int}\n      - {name: y, type: int}\n", want: "must be last"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSignatures(tc.path, []byte(tc.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err)
			}
		})
	}
}

func TestParseTypeName(t *testing.T) {
	cases := map[string]reflect.Type{
		"int":           reflect.TypeFor[int](),
		"[]string":      reflect.TypeFor[[]string](),
		"[][]float64":   reflect.TypeFor[[][]float64](),
		"*int":          reflect.TypeFor[*int](),
		"any":           reflect.TypeFor[any](),
		"byte":          reflect.TypeFor[uint8](),
		"time.Duration": reflect.TypeFor[time.Duration](),
	}
	for name, want := range cases {
		got, err := parseTypeName(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: got %s, want %s", name, got, want)
		}
	}
}
