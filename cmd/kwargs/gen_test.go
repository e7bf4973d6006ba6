package main

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

func TestGenerateSource(t *testing.T) {
	pkg := extractSource(t, geometrySource)

	src, err := generateSource(pkg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(src)

	for _, want := range []string{
		"// Code generated by kwargs gen. DO NOT EDIT.",
		"package geometry",
		`"github.com/rsl-org/kwargs/kwargs"`,
		`"time"`,
		`kwargs.MustRegister(kwargs.MustDescribe("geometry.Volume", Volume,`,
		`kwargs.Required("width"),`,
		`kwargs.OptionalFunc("depth", func() int { return defaultDepth }),`,
		`kwargs.MustRegister(kwargs.MustDescribe("wait", Wait,`,
		`kwargs.OptionalFunc("timeout", func() time.Duration { return 2 * time.Second }),`,
		`kwargs.Required("tags"),`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("generated source missing %q:\n%s", want, out)
		}
	}

	if strings.Index(out, `"geometry.Volume"`) > strings.Index(out, `"wait"`) {
		t.Fatalf("functions should keep source order:\n%s", out)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "zz_kwargs.go", src, 0); err != nil {
		t.Fatalf("generated source does not parse: %v", err)
	}
}

func TestGenerateSourceIsDeterministic(t *testing.T) {
	first, err := generateSource(extractSource(t, geometrySource))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := generateSource(extractSource(t, geometrySource))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("output changed between runs:\n%s\n---\n%s", first, again)
		}
	}
}

func TestGenerateSourceAliasesImports(t *testing.T) {
	pkg := &extractedPackage{
		Name:    "p",
		Imports: []generatedImport{{Name: "yaml", Path: "gopkg.in/yaml.v3"}},
		Funcs: []extractedFunc{{
			Name:       "F",
			Registered: "p.F",
			Params:     []extractedParam{{Name: "n", Type: "yaml.Kind", Default: "yaml.ScalarNode"}},
		}},
	}
	src, err := generateSource(pkg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(src), `yaml "gopkg.in/yaml.v3"`) {
		t.Fatalf("expected aliased import:\n%s", src)
	}
}

func TestGenCommandRejectsPathOutput(t *testing.T) {
	err := genCommand([]string{"-o", "sub/zz.go"})
	if err == nil || !strings.Contains(err.Error(), "-o must be a file name") {
		t.Fatalf("unexpected error: %v", err)
	}
}
