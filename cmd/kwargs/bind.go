package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rsl-org/kwargs/kwargs"
)

func bindCommand(args []string) error {
	fs, verbose := newFlagSet("bind")
	sigPath := fs.String("sig", "", "signature file (.yaml, .yml, or .toml)")
	strict := fs.Bool("strict", false, "disable literal conversions between numeric types")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sigPath == "" {
		return errors.New("kwargs bind: -sig file required")
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("kwargs bind: call text required")
	}

	logger := newLogger(*verbose)
	sigs, err := loadSignatureFile(*sigPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded signatures", "file", *sigPath, "functions", len(sigs.sigs))

	out, err := bindCallText(sigs, text, kwargs.Config{StrictTypes: *strict}, logger)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// bindCallText parses text, binds it against the matching signature, and
// renders the resulting positional call.
func bindCallText(sigs *signatureSet, text string, cfg kwargs.Config, logger *log.Logger) (string, error) {
	call, err := parseCall(text)
	if err != nil {
		return "", err
	}
	sig, ok := sigs.Lookup(call.Name)
	if !ok {
		return "", fmt.Errorf("%q: %w", call.Name, kwargs.ErrUnknownCallable)
	}
	positional, named := call.split()
	binding, err := cfg.BindPositional(sig, positional, named)
	if err != nil {
		return "", newDiagnostic(call, err)
	}
	for _, slot := range binding.Slots {
		logger.Debug("bound", "param", slot.Param.Name, "index", slot.Param.Index, "source", slot.Source)
	}
	return renderBinding(binding), nil
}

func renderBinding(b *kwargs.Binding) string {
	parts := make([]string, len(b.Slots))
	for i, slot := range b.Slots {
		parts[i] = fmt.Sprintf("%#v", slot.Interface())
	}
	return b.Signature.Name + "(" + strings.Join(parts, ", ") + ")"
}
