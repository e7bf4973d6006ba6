package main

import (
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strings"
	"testing"
)

const geometrySource = `package geometry

import "time"

const defaultDepth = 1

// Volume multiplies the box dimensions.
//
//kwargs:bind
//kwargs:default depth=defaultDepth
func Volume(width, height, depth int) int { return width * height * depth }

//kwargs:bind wait
//kwargs:default timeout = 2 * time.Second
func Wait(name string, timeout time.Duration, tags ...string) {}

func helper(x int) {}
`

func TestExtractPackage(t *testing.T) {
	pkg := extractSource(t, geometrySource)

	if pkg.Name != "geometry" || pkg.Path != "example.com/geometry" {
		t.Fatalf("unexpected package %s %s", pkg.Name, pkg.Path)
	}
	if len(pkg.Funcs) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(pkg.Funcs))
	}

	volume := pkg.Funcs[0]
	if volume.Name != "Volume" || volume.Registered != "geometry.Volume" {
		t.Fatalf("unexpected first function %+v", volume)
	}
	wantVolume := []extractedParam{
		{Name: "width", Type: "int"},
		{Name: "height", Type: "int"},
		{Name: "depth", Type: "int", Default: "defaultDepth"},
	}
	if !reflect.DeepEqual(volume.Params, wantVolume) {
		t.Fatalf("unexpected Volume params %+v", volume.Params)
	}

	wait := pkg.Funcs[1]
	if wait.Registered != "wait" {
		t.Fatalf("expected registered name override, got %q", wait.Registered)
	}
	wantWait := []extractedParam{
		{Name: "name", Type: "string"},
		{Name: "timeout", Type: "time.Duration", Default: "2 * time.Second"},
		{Name: "tags", Type: "[]string", Variadic: true},
	}
	if !reflect.DeepEqual(wait.Params, wantWait) {
		t.Fatalf("unexpected Wait params %+v", wait.Params)
	}

	if !reflect.DeepEqual(pkg.Imports, []generatedImport{{Name: "time", Path: "time"}}) {
		t.Fatalf("unexpected imports %+v", pkg.Imports)
	}
}

func TestExtractPackageErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "method",
			src:  "type box struct{}\n\n//kwargs:bind\nfunc (box) Volume(w int) {}\n",
			want: "kwargs:bind on method Volume is not supported",
		},
		{
			name: "generic",
			src:  "//kwargs:bind\nfunc Max[T int | float64](a, b T) T { return a }\n",
			want: "kwargs:bind on generic function Max is not supported",
		},
		{
			name: "blank parameter",
			src:  "//kwargs:bind\nfunc F(a int, _ string) {}\n",
			want: "F: parameter 1 has no name",
		},
		{
			name: "unnamed parameter",
			src:  "//kwargs:bind\nfunc F(int) {}\n",
			want: "F: parameter 0 has no name",
		},
		{
			name: "unknown default",
			src:  "//kwargs:bind\n//kwargs:default depth=1\nfunc F(width int) {}\n",
			want: "default for unknown parameter depth",
		},
		{
			name: "duplicate default",
			src:  "//kwargs:bind\n//kwargs:default w=1\n//kwargs:default w=2\nfunc F(w int) {}\n",
			want: "default for w declared more than once",
		},
		{
			name: "malformed default",
			src:  "//kwargs:bind\n//kwargs:default w\nfunc F(w int) {}\n",
			want: "malformed directive",
		},
		{
			name: "mistyped default",
			src:  "//kwargs:bind\n//kwargs:default w=\"wide\"\nfunc F(w int) {}\n",
			want: "is not assignable to int",
		},
		{
			name: "overflowing default",
			src:  "//kwargs:bind\n//kwargs:default small=300\nfunc F(small int8) {}\n",
			want: "default for small",
		},
		{
			name: "fractional default",
			src:  "//kwargs:bind\n//kwargs:default n=1.5\nfunc F(n int) {}\n",
			want: "default for n",
		},
		{
			name: "undefined default",
			src:  "//kwargs:bind\n//kwargs:default n=missing\nfunc F(n int) {}\n",
			want: "undefined: missing",
		},
		{
			name: "variadic default",
			src:  "//kwargs:bind\n//kwargs:default rest=nil\nfunc F(rest ...int) {}\n",
			want: "variadic parameter rest cannot have a default",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fset, files, pkg, info := checkSource(t, "package p\n\n"+tc.src)
			_, err := extractPackage(fset, files, pkg, info)
			if err == nil {
				t.Fatalf("expected extraction error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err)
			}
		})
	}
}

func TestExtractPackageIgnoresUndirectedFunctions(t *testing.T) {
	fset, files, pkg, info := checkSource(t, "package p\n\n// F is documented.\nfunc F(a int) {}\n\n//kwargs:binding\nfunc G(a int) {}\n")
	out, err := extractPackage(fset, files, pkg, info)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(out.Funcs) != 0 {
		t.Fatalf("expected no functions, got %+v", out.Funcs)
	}
}

func TestRepresentable(t *testing.T) {
	cases := []struct {
		value constant.Value
		typ   types.Type
		want  bool
	}{
		{constant.MakeInt64(127), types.Typ[types.Int8], true},
		{constant.MakeInt64(128), types.Typ[types.Int8], false},
		{constant.MakeInt64(-1), types.Typ[types.Uint], false},
		{constant.MakeFloat64(2), types.Typ[types.Int], true},
		{constant.MakeFloat64(2.5), types.Typ[types.Int], false},
		{constant.MakeInt64(1), types.Typ[types.Float32], true},
		{constant.MakeString("x"), types.Typ[types.String], true},
		{nil, types.Typ[types.Int], true},
	}
	for _, tc := range cases {
		if got := representable(tc.value, tc.typ); got != tc.want {
			t.Fatalf("representable(%v, %s) = %v, want %v", tc.value, tc.typ, got, tc.want)
		}
	}
}

func extractSource(t *testing.T, src string) *extractedPackage {
	t.Helper()
	fset, files, pkg, info := checkSource(t, src)
	out, err := extractPackage(fset, files, pkg, info)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return out
}

func checkSource(t *testing.T, src string) (*token.FileSet, []*ast.File, *types.Package, *types.Info) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "/src/geometry/geometry.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: fakeImporter{"time": timePackage()}}
	pkg, err := conf.Check("example.com/"+file.Name.Name, fset, []*ast.File{file}, info)
	if err != nil {
		t.Fatalf("type check: %v", err)
	}
	return fset, []*ast.File{file}, pkg, info
}

type fakeImporter map[string]*types.Package

func (f fakeImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := f[path]; ok {
		return pkg, nil
	}
	return nil, &importError{path: path}
}

type importError struct {
	path string
}

func (e *importError) Error() string {
	return "no package " + e.path
}

// timePackage declares the slice of package time the fixtures use.
func timePackage() *types.Package {
	pkg := types.NewPackage("time", "time")
	durationName := types.NewTypeName(token.NoPos, pkg, "Duration", nil)
	duration := types.NewNamed(durationName, types.Typ[types.Int64], nil)
	pkg.Scope().Insert(durationName)
	pkg.Scope().Insert(types.NewConst(token.NoPos, pkg, "Second", duration, constant.MakeInt64(1_000_000_000)))
	pkg.MarkComplete()
	return pkg
}
