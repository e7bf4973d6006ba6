package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rsl-org/kwargs/kwargs"
)

type descriptorView struct {
	Name   string
	Params []paramView
}

type paramView struct {
	Name       string
	Type       string
	Default    string
	HasDefault bool
	Variadic   bool
}

func describeCommand(args []string) error {
	fs, verbose := newFlagSet("describe")
	sigPath := fs.String("sig", "", "describe a signature file instead of Go packages")
	dir := fs.String("dir", ".", "directory packages are resolved from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := newLogger(*verbose)

	var views []descriptorView
	if *sigPath != "" {
		sigs, err := loadSignatureFile(*sigPath)
		if err != nil {
			return err
		}
		for _, name := range sigs.Names() {
			sig, _ := sigs.Lookup(name)
			views = append(views, viewOfSignature(sig))
		}
	} else {
		patterns := fs.Args()
		if len(patterns) == 0 {
			patterns = []string{"."}
		}
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
			for _, fn := range extracted.Funcs {
				logger.Debug("extracted", "func", fn.Registered, "pos", fn.Pos)
				views = append(views, viewOfExtracted(fn))
			}
		}
		if err := combineErrors(errs); err != nil {
			return err
		}
	}

	r := describeRenderer{styled: stdoutIsTerminal()}
	for _, view := range views {
		fmt.Println(r.render(view))
	}
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func viewOfSignature(sig *kwargs.Signature) descriptorView {
	view := descriptorView{Name: sig.Name}
	for _, p := range sig.Params {
		pv := paramView{Name: p.Name, Type: p.Type.String(), Variadic: p.Variadic}
		if p.Variadic {
			pv.Type = p.Type.Elem().String()
		} else if p.HasDefault {
			pv.HasDefault, pv.Default = true, fmt.Sprintf("%#v", p.Default())
		}
		view.Params = append(view.Params, pv)
	}
	return view
}

func viewOfExtracted(fn extractedFunc) descriptorView {
	view := descriptorView{Name: fn.Registered}
	for _, p := range fn.Params {
		pv := paramView{Name: p.Name, Type: p.Type, Variadic: p.Variadic}
		if p.Variadic {
			pv.Type = strings.TrimPrefix(p.Type, "[]")
		}
		if p.Default != "" {
			pv.HasDefault, pv.Default = true, p.Default
		}
		view.Params = append(view.Params, pv)
	}
	return view
}

type describeRenderer struct {
	styled bool
}

func (r describeRenderer) render(view descriptorView) string {
	style := func(s string, render func(...string) string) string {
		if !r.styled {
			return s
		}
		return render(s)
	}

	parts := make([]string, len(view.Params))
	for i, p := range view.Params {
		typ := p.Type
		if p.Variadic {
			typ = "..." + typ
		}
		part := style(p.Name, paramNameStyle.Render) + " " + style(typ, mutedStyle.Render)
		if p.HasDefault {
			part += " = " + style(p.Default, resultStyle.Render)
		}
		parts[i] = part
	}
	return style(view.Name, headerNameStyle.Render) + "(" + strings.Join(parts, ", ") + ")"
}
