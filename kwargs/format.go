//go:build !kwargs_nofmt

package kwargs

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// TransformFormat rewrites named placeholders into fmt verbs indexed by the
// position of the name in names:
//
//	{x}        -> %[1]v
//	{y:08.3f}  -> %08.3[2]f
//	{1}        -> %[2]v
//	{{ and }}  -> literal braces
//
// Flags, width, and precision in the spec precede the index; a spec without
// a trailing verb letter gets v. A literal % is doubled. Unknown names are
// reported as UnknownName.
func TransformFormat(format string, names []string) (string, error) {
	out, _, err := transformFormat(format, names)
	return out, err
}

func transformFormat(format string, names []string) (string, int, error) {
	var b strings.Builder
	placeholders := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '%':
			b.WriteString("%%")
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				return "", 0, fmt.Errorf("format %q: unterminated placeholder at offset %d", format, i)
			}
			field := format[i+1 : i+1+end]
			name, spec, _ := strings.Cut(field, ":")
			idx, err := placeholderIndex(format, name, names)
			if err != nil {
				return "", 0, err
			}
			if spec == "" || !isVerb(spec[len(spec)-1]) {
				spec += "v"
			}
			flags, verb := spec[:len(spec)-1], spec[len(spec)-1:]
			b.WriteString("%" + flags + "[" + strconv.Itoa(idx+1) + "]" + verb)
			placeholders++
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), placeholders, nil
}

func placeholderIndex(format, name string, names []string) (int, error) {
	for i, candidate := range names {
		if candidate == name {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < len(names) {
		return n, nil
	}
	return 0, &BindError{Kind: UnknownName, Callable: "format " + strconv.Quote(format), Names: []string{name}}
}

func isVerb(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Format renders format with args substituted by name.
func Format(format string, args ...Named) (string, error) {
	names := make([]string, len(args))
	values := make([]any, len(args))
	seen := make(map[string]struct{}, len(args))
	var duplicates []string
	for i, arg := range args {
		if _, dup := seen[arg.name]; dup {
			duplicates = append(duplicates, arg.name)
		}
		seen[arg.name] = struct{}{}
		names[i] = arg.name
		values[i] = arg.Value()
	}
	if len(duplicates) > 0 {
		return "", &BindError{Kind: DuplicateName, Callable: "format " + strconv.Quote(format), Names: uniqueSorted(duplicates)}
	}
	transformed, placeholders, err := transformFormat(format, names)
	if err != nil {
		return "", err
	}
	if placeholders == 0 {
		// fmt reports unused operands unless some verb carries an index.
		values = nil
	}
	return fmt.Sprintf(transformed, values...), nil
}

// Fprint writes the rendered format to w.
func Fprint(w io.Writer, format string, args ...Named) (int, error) {
	s, err := Format(format, args...)
	if err != nil {
		return 0, err
	}
	return io.WriteString(w, s)
}

// Print writes the rendered format to standard output.
func Print(format string, args ...Named) error {
	_, err := Fprint(os.Stdout, format, args...)
	return err
}

// Println writes the rendered format and a newline to standard output.
func Println(format string, args ...Named) error {
	_, err := Fprint(os.Stdout, format+"\n", args...)
	return err
}

func uniqueSorted(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}
