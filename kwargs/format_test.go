//go:build !kwargs_nofmt

package kwargs

import (
	"bytes"
	"errors"
	"testing"
)

func TestTransformFormat(t *testing.T) {
	cases := []struct {
		format string
		names  []string
		want   string
	}{
		{format: "", want: ""},
		{format: "no placeholders", want: "no placeholders"},
		{format: "{x} {y}", names: []string{"x", "y"}, want: "%[1]v %[2]v"},
		{format: "{y} {x}", names: []string{"x", "y"}, want: "%[2]v %[1]v"},
		{format: "{x} {x}", names: []string{"x"}, want: "%[1]v %[1]v"},
		{format: "foo{y}foo{x}foo", names: []string{"x", "y"}, want: "foo%[2]vfoo%[1]vfoo"},
		{format: "{{x}}", names: []string{"x"}, want: "{x}"},
		{format: "{{{x}}}", names: []string{"x"}, want: "{%[1]v}"},
		{format: "100%", want: "100%%"},
		{format: "{x:5d}", names: []string{"x"}, want: "%5[1]d"},
		{format: "{x:08.3f}", names: []string{"x"}, want: "%08.3[1]f"},
		{format: "{x:+}", names: []string{"x"}, want: "%+[1]v"},
		{format: "{1}", names: []string{"x", "y"}, want: "%[2]v"},
	}

	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			got, err := TransformFormat(tc.format, tc.names)
			if err != nil {
				t.Fatalf("transform failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTransformFormatErrors(t *testing.T) {
	if _, err := TransformFormat("{foo}", nil); !errors.Is(err, ErrUnknownName) {
		t.Fatalf("expected unknown name, got %v", err)
	}
	if _, err := TransformFormat("{x", []string{"x"}); err == nil {
		t.Fatalf("expected unterminated placeholder error")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		format string
		args   []Named
		want   string
	}{
		{format: "{foo} {bar}", args: []Named{Arg("foo", 1), Arg("bar", 2)}, want: "1 2"},
		{format: "{bar} {foo}", args: []Named{Arg("foo", 1), Arg("bar", 2)}, want: "2 1"},
		{format: "{w}x{h}", args: []Named{Arg("h", 4), Arg("w", 2)}, want: "2x4"},
		{format: "{pi:.2f}", args: []Named{Arg("pi", 3.14159)}, want: "3.14"},
		{format: "{n:03d}%", args: []Named{Arg("n", 7)}, want: "007%"},
		{format: "hello", args: []Named{Arg("unused", 1)}, want: "hello"},
	}

	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			got, err := Format(tc.format, tc.args...)
			if err != nil {
				t.Fatalf("format failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatBorrowedArgument(t *testing.T) {
	count := 1
	arg := Ref("count", &count)
	count = 3
	got, err := Format("count={count}", arg)
	if err != nil || got != "count=3" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestFormatDuplicate(t *testing.T) {
	_, err := Format("{x}", Arg("x", 1), Arg("x", 2))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Fprint(&buf, "{a}-{b}", Arg("b", "y"), Arg("a", "x")); err != nil {
		t.Fatalf("fprint: %v", err)
	}
	if buf.String() != "x-y" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
