package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"text/template"
)

const kwargsImportPath = "github.com/rsl-org/kwargs/kwargs"

var generatedTemplate = template.Must(template.New("kwargs").Parse(`// Code generated by kwargs gen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)

func init() {
{{- range .Funcs}}
	kwargs.MustRegister(kwargs.MustDescribe({{.Registered}}, {{.Name}},
	{{- range .Specs}}
		{{.}},
	{{- end}}
	))
{{- end}}
}
`))

type generatedFile struct {
	Package string
	Imports []string
	Funcs   []generatedFunc
}

type generatedFunc struct {
	Registered string
	Name       string
	Specs      []string
}

func genCommand(args []string) error {
	fs, verbose := newFlagSet("gen")
	output := fs.String("o", "zz_kwargs.go", "file name written into each package directory")
	dir := fs.String("dir", ".", "directory packages are resolved from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	if filepath.Base(*output) != *output {
		return fmt.Errorf("kwargs gen: -o must be a file name, got %q", *output)
	}
	logger := newLogger(*verbose)

	pkgs, err := loadPackages(*dir, patterns)
	if err != nil {
		return err
	}
	var errs []error
	for _, pkg := range pkgs {
		extracted, err := extractLoaded(pkg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(extracted.Funcs) == 0 {
			logger.Debug("no annotated functions", "package", pkg.PkgPath)
			continue
		}
		src, err := generateSource(extracted)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pkg.PkgPath, err))
			continue
		}
		target := filepath.Join(extracted.Dir, *output)
		if err := os.WriteFile(target, src, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", target, err))
			continue
		}
		logger.Info("generated", "file", target, "functions", len(extracted.Funcs))
	}
	return combineErrors(errs)
}

// generateSource renders the registration file for pkg. Defaults become
// suppliers typed as their parameter so every call evaluates the expression
// afresh and constants take the parameter's type.
func generateSource(pkg *extractedPackage) ([]byte, error) {
	file := generatedFile{Package: pkg.Name, Imports: []string{strconv.Quote(kwargsImportPath)}}
	for _, imp := range pkg.Imports {
		if imp.Path == kwargsImportPath {
			continue
		}
		spec := strconv.Quote(imp.Path)
		if imp.Name != path.Base(imp.Path) {
			spec = imp.Name + " " + spec
		}
		file.Imports = append(file.Imports, spec)
	}

	for _, fn := range pkg.Funcs {
		gf := generatedFunc{Registered: strconv.Quote(fn.Registered), Name: fn.Name}
		for _, p := range fn.Params {
			if p.Default == "" {
				gf.Specs = append(gf.Specs, fmt.Sprintf("kwargs.Required(%q)", p.Name))
				continue
			}
			gf.Specs = append(gf.Specs, fmt.Sprintf("kwargs.OptionalFunc(%q, func() %s { return %s })", p.Name, p.Type, p.Default))
		}
		file.Funcs = append(file.Funcs, gf)
	}

	var buf bytes.Buffer
	if err := generatedTemplate.Execute(&buf, file); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w\n%s", err, buf.String())
	}
	return src, nil
}
