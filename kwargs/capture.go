package kwargs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// ErrInvalidCapture is wrapped by every Capture failure.
var ErrInvalidCapture = errors.New("invalid keyword arguments")

type capturedName struct {
	name  string
	byRef bool
}

// Capture builds a Set from a capture-style name list and matching values:
//
//	kwargs.Capture("x = 3, &total, label", 3, &total, label)
//
// Each entry contributes its name; any `= expr` text is ignored. A leading &
// marks a borrowed entry whose value must be a non-nil pointer. Packs
// (`...`), `this`, and bare default captures are rejected.
func Capture(names string, values ...any) (Set, error) {
	parsed, err := parseCaptureNames(names)
	if err != nil {
		return Set{}, err
	}
	if len(parsed) != len(values) {
		return Set{}, fmt.Errorf("%w `%s`: %d names, %d values", ErrInvalidCapture, names, len(parsed), len(values))
	}
	args := make([]Named, len(parsed))
	for i, c := range parsed {
		v := reflect.ValueOf(values[i])
		if !c.byRef {
			args[i] = Named{name: c.name, value: v, category: Owned}
			continue
		}
		if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
			return Set{}, fmt.Errorf("%w `%s`: &%s needs a non-nil pointer, got %s",
				ErrInvalidCapture, names, c.name, describeValueType(v))
		}
		args[i] = Named{name: c.name, value: v, category: Borrowed}
	}
	return Set{args: args}, nil
}

type captureParser struct {
	src    string
	cursor int
}

func parseCaptureNames(src string) ([]capturedName, error) {
	p := captureParser{src: src}
	var out []capturedName
	fail := func(reason string) ([]capturedName, error) {
		return nil, fmt.Errorf("%w `%s`: %s", ErrInvalidCapture, src, reason)
	}

	for p.skipWhitespace(); p.valid(); p.skipWhitespace() {
		byRef := false
		if p.current() == '&' {
			byRef = true
			p.cursor++
			p.skipWhitespace()
		}
		if p.valid() && p.current() == '.' {
			return fail("pack captures are not supported")
		}

		start := p.cursor
		p.skipTo('=', ',', ' ', '\t', '\n', '\r')
		name := p.src[start:p.cursor]
		switch {
		case name == "":
			return fail("default captures are not supported")
		case name == "this" || name == "*this":
			return fail("capturing this is not supported")
		case !isIdentifier(name):
			return fail(fmt.Sprintf("%q is not an identifier", name))
		}
		out = append(out, capturedName{name: name, byRef: byRef})

		p.skipTo(',')
		p.cursor++
	}
	return out, nil
}

func (p *captureParser) valid() bool {
	return p.cursor < len(p.src)
}

func (p *captureParser) current() byte {
	return p.src[p.cursor]
}

func (p *captureParser) skipWhitespace() {
	for p.valid() {
		switch p.current() {
		case ' ', '\t', '\n', '\r', '\\':
			p.cursor++
		default:
			return
		}
	}
}

// skipTo advances to the first needle outside brackets.
func (p *captureParser) skipTo(needles ...byte) {
	depth := 0
	for p.valid() {
		c := p.current()
		if depth == 0 && strings.IndexByte(string(needles), c) >= 0 {
			return
		}
		switch c {
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
		}
		p.cursor++
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
