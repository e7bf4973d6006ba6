package main

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

const (
	bindDirective    = "//kwargs:bind"
	defaultDirective = "//kwargs:default"
)

// extractedFunc is a //kwargs:bind function read from source.
type extractedFunc struct {
	Name       string
	Registered string
	Pos        token.Position
	Params     []extractedParam
}

type extractedParam struct {
	Name string
	// Type is qualified relative to the declaring package.
	Type string
	// Default is the Go source of the default expression, empty when the
	// parameter is required.
	Default  string
	Variadic bool
}

type extractedPackage struct {
	Name    string
	Path    string
	Dir     string
	Funcs   []extractedFunc
	Imports []generatedImport
}

type generatedImport struct {
	Name string
	Path string
}

func loadPackages(dir string, patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax,
		Dir: dir,
		Env: append(os.Environ(), "GOWORK=off"),
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	return pkgs, nil
}

func extractLoaded(pkg *packages.Package) (*extractedPackage, error) {
	out, err := extractPackage(pkg.Fset, pkg.Syntax, pkg.Types, pkg.TypesInfo)
	if err != nil {
		return nil, err
	}
	out.Path = pkg.PkgPath
	return out, nil
}

// extractPackage collects the annotated functions of one type-checked
// package, ordered by file name and then source position.
func extractPackage(fset *token.FileSet, files []*ast.File, pkg *types.Package, info *types.Info) (*extractedPackage, error) {
	sorted := append([]*ast.File(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fset.Position(sorted[i].Pos()).Filename < fset.Position(sorted[j].Pos()).Filename
	})

	ex := &extractor{
		fset:    fset,
		pkg:     pkg,
		info:    info,
		imports: make(map[string]string),
	}
	out := &extractedPackage{Name: pkg.Name(), Path: pkg.Path()}
	var errs []error
	for _, file := range sorted {
		if out.Dir == "" {
			out.Dir = filepath.Dir(fset.Position(file.Pos()).Filename)
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !hasDirective(fn.Doc, bindDirective) {
				continue
			}
			extracted, err := ex.extractFunc(fn)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out.Funcs = append(out.Funcs, extracted)
		}
	}
	if len(errs) > 0 {
		return nil, combineErrors(errs)
	}
	out.Imports = ex.sortedImports()
	if err := ex.importClash(); err != nil {
		return nil, err
	}
	return out, nil
}

type extractor struct {
	fset    *token.FileSet
	pkg     *types.Package
	info    *types.Info
	imports map[string]string // path -> name
	clash   error
}

func (ex *extractor) fail(pos token.Pos, format string, args ...any) error {
	return fmt.Errorf("%s: %s", ex.fset.Position(pos), fmt.Sprintf(format, args...))
}

func (ex *extractor) extractFunc(fn *ast.FuncDecl) (extractedFunc, error) {
	name := fn.Name.Name
	if fn.Recv != nil {
		return extractedFunc{}, ex.fail(fn.Pos(), "kwargs:bind on method %s is not supported", name)
	}
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		return extractedFunc{}, ex.fail(fn.Pos(), "kwargs:bind on generic function %s is not supported", name)
	}
	obj, ok := ex.info.Defs[fn.Name].(*types.Func)
	if !ok {
		return extractedFunc{}, ex.fail(fn.Pos(), "no type information for %s", name)
	}
	sig := obj.Type().(*types.Signature)

	registered := ex.pkg.Name() + "." + name
	defaults := make(map[string]string)
	var defaultOrder []string
	for _, c := range fn.Doc.List {
		if rest, ok := directiveArgs(c.Text, bindDirective); ok && rest != "" {
			registered = rest
		}
		rest, ok := directiveArgs(c.Text, defaultDirective)
		if !ok {
			continue
		}
		paramName, expr, found := strings.Cut(rest, "=")
		paramName, expr = strings.TrimSpace(paramName), strings.TrimSpace(expr)
		if !found || paramName == "" || expr == "" {
			return extractedFunc{}, ex.fail(c.Pos(), "malformed directive %q, want %s name=<expr>", c.Text, defaultDirective)
		}
		if _, dup := defaults[paramName]; dup {
			return extractedFunc{}, ex.fail(c.Pos(), "default for %s declared more than once", paramName)
		}
		defaults[paramName] = expr
		defaultOrder = append(defaultOrder, paramName)
	}

	out := extractedFunc{Name: name, Registered: registered, Pos: ex.fset.Position(fn.Pos())}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		if p.Name() == "" || p.Name() == "_" {
			return extractedFunc{}, ex.fail(fn.Pos(), "%s: parameter %d has no name", name, i)
		}
		param := extractedParam{
			Name:     p.Name(),
			Type:     types.TypeString(p.Type(), types.RelativeTo(ex.pkg)),
			Variadic: sig.Variadic() && i == params.Len()-1,
		}
		if expr, ok := defaults[p.Name()]; ok {
			if param.Variadic {
				return extractedFunc{}, ex.fail(fn.Pos(), "%s: variadic parameter %s cannot have a default", name, p.Name())
			}
			if err := ex.checkDefault(fn, p, expr); err != nil {
				return extractedFunc{}, err
			}
			param.Default = expr
			param.Type = types.TypeString(p.Type(), ex.recordingQualifier)
			delete(defaults, p.Name())
		}
		out.Params = append(out.Params, param)
	}
	for _, paramName := range defaultOrder {
		if _, unused := defaults[paramName]; unused {
			return extractedFunc{}, ex.fail(fn.Pos(), "%s: default for unknown parameter %s", name, paramName)
		}
	}
	return out, nil
}

// checkDefault type-checks expr in file scope and records the imports it
// uses, since the generated declaration must compile on its own.
func (ex *extractor) checkDefault(fn *ast.FuncDecl, param *types.Var, expr string) error {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return ex.fail(fn.Doc.Pos(), "default for %s: %v", param.Name(), err)
	}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	if err := types.CheckExpr(ex.fset, ex.pkg, fn.Doc.Pos(), parsed, info); err != nil {
		return ex.fail(fn.Doc.Pos(), "default for %s: %v", param.Name(), err)
	}
	tv := info.Types[parsed]
	if !types.AssignableTo(tv.Type, param.Type()) || !representable(tv.Value, param.Type()) {
		return ex.fail(fn.Doc.Pos(), "default for %s: %s is not assignable to %s",
			param.Name(), types.TypeString(tv.Type, types.RelativeTo(ex.pkg)), types.TypeString(param.Type(), types.RelativeTo(ex.pkg)))
	}
	for _, obj := range info.Uses {
		if pkgName, ok := obj.(*types.PkgName); ok {
			ex.recordImport(pkgName.Name(), pkgName.Imported().Path())
		}
	}
	return nil
}

func (ex *extractor) recordingQualifier(p *types.Package) string {
	if p == ex.pkg {
		return ""
	}
	ex.recordImport(p.Name(), p.Path())
	return p.Name()
}

func (ex *extractor) recordImport(name, path string) {
	if existing, ok := ex.imports[path]; ok && existing != name && ex.clash == nil {
		ex.clash = fmt.Errorf("package %s imported as both %s and %s", path, existing, name)
	}
	ex.imports[path] = name
}

func (ex *extractor) importClash() error {
	if ex.clash != nil {
		return ex.clash
	}
	byName := make(map[string]string, len(ex.imports))
	for path, name := range ex.imports {
		if other, ok := byName[name]; ok {
			return fmt.Errorf("import name %s refers to both %s and %s", name, other, path)
		}
		byName[name] = path
	}
	return nil
}

func (ex *extractor) sortedImports() []generatedImport {
	out := make([]generatedImport, 0, len(ex.imports))
	for path, name := range ex.imports {
		out = append(out, generatedImport{Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func hasDirective(doc *ast.CommentGroup, directive string) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if _, ok := directiveArgs(c.Text, directive); ok {
			return true
		}
	}
	return false
}

// directiveArgs reports whether text is directive, optionally followed by
// space-separated arguments, and returns the trimmed arguments.
func directiveArgs(text, directive string) (string, bool) {
	rest, ok := strings.CutPrefix(text, directive)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}


var gcSizes = types.SizesFor("gc", "amd64")

// representable reports whether constant v fits type t. Non-constant values
// and non-basic targets are left to AssignableTo.
func representable(v constant.Value, t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	if v == nil || !ok {
		return true
	}
	info := basic.Info()
	switch {
	case info&types.IsBoolean != 0:
		return v.Kind() == constant.Bool
	case info&types.IsString != 0:
		return v.Kind() == constant.String
	case info&types.IsInteger != 0:
		n := constant.ToInt(v)
		if n.Kind() != constant.Int {
			return false
		}
		bits := uint(gcSizes.Sizeof(basic) * 8)
		if info&types.IsUnsigned != 0 {
			u, exact := constant.Uint64Val(n)
			return exact && (bits == 64 || u < 1<<bits)
		}
		i, exact := constant.Int64Val(n)
		return exact && (bits == 64 || (i >= -(1<<(bits-1)) && i < 1<<(bits-1)))
	case info&types.IsFloat != 0:
		return constant.ToFloat(v).Kind() == constant.Float
	case info&types.IsComplex != 0:
		return constant.ToComplex(v).Kind() == constant.Complex
	default:
		return true
	}
}
