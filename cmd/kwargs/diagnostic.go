package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rsl-org/kwargs/kwargs"
)

func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := lines[pos.Line-1]
	lineRunes := []rune(lineText)

	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
	)
}

// diagnosticError is a binding failure rendered against the call text.
type diagnosticError struct {
	err   error
	frame string
}

func (e *diagnosticError) Error() string {
	if e.frame == "" {
		return e.err.Error()
	}
	return e.err.Error() + "\n" + e.frame
}

func (e *diagnosticError) Unwrap() error {
	return e.err
}

func newDiagnostic(call *callExpr, err error) error {
	var bindErr *kwargs.BindError
	if !errors.As(err, &bindErr) {
		return err
	}
	return &diagnosticError{err: err, frame: formatCodeFrame(call.Source, diagnosticPosition(call, bindErr))}
}

// diagnosticPosition picks the argument a binding failure is about: the
// repeated occurrence for duplicates, the offending value for mismatches, and
// the closing parenthesis when an argument is absent.
func diagnosticPosition(call *callExpr, bindErr *kwargs.BindError) Position {
	name := ""
	if len(bindErr.Names) > 0 {
		name = bindErr.Names[0]
	}
	switch bindErr.Kind {
	case kwargs.DuplicateName:
		seen := false
		for _, arg := range call.Args {
			if arg.Name != name {
				continue
			}
			if seen {
				return arg.Pos
			}
			seen = true
		}
	case kwargs.UnknownName, kwargs.PositionalConflict:
		for _, arg := range call.Args {
			if arg.Name == name {
				return arg.Pos
			}
		}
	case kwargs.TypeMismatch:
		for _, arg := range call.Args {
			if arg.Name != "" && arg.Name == name {
				return arg.ValuePos
			}
		}
		if len(bindErr.Positions) > 0 {
			idx := bindErr.Positions[0]
			if idx < len(call.Args) && call.Args[idx].Name == "" {
				return call.Args[idx].ValuePos
			}
		}
	case kwargs.TooManyPositional:
		positional := 0
		for _, arg := range call.Args {
			if arg.Name == "" {
				positional++
			}
		}
		if positional > 0 {
			return call.Args[positional-1].Pos
		}
	}
	return call.Close
}
