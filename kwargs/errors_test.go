package kwargs

import (
	"errors"
	"fmt"
	"testing"
)

func TestBindErrorMessages(t *testing.T) {
	f := volumeFunc(t)

	cases := []struct {
		name string
		bind func() error
		want string
		kind ErrorKind
	}{
		{
			name: "unknown",
			bind: func() error { _, err := f.Bind(Arg("width", 2), Arg("height", 4), Arg("extra", 1)); return err },
			want: `in call to volume: no parameter named "extra"`,
			kind: UnknownName,
		},
		{
			name: "missing",
			bind: func() error { _, err := f.Bind(Arg("width", 2)); return err },
			want: `in call to volume: argument "height" (position 1) missing`,
			kind: MissingRequired,
		},
		{
			name: "missing several",
			bind: func() error { _, err := f.Bind(Arg("depth", 2)); return err },
			want: `in call to volume: arguments "width" (position 0), "height" (position 1) missing`,
			kind: MissingRequired,
		},
		{
			name: "duplicate",
			bind: func() error { _, err := f.Bind(Arg("width", 2), Arg("width", 3)); return err },
			want: `in call to volume: keyword argument "width" repeated`,
			kind: DuplicateName,
		},
		{
			name: "type mismatch",
			bind: func() error { _, err := f.Bind(Arg("width", "2"), Arg("height", 4)); return err },
			want: `in call to volume: argument "width" (position 0) expected int, got string`,
			kind: TypeMismatch,
		},
		{
			name: "positional conflict",
			bind: func() error { _, err := f.BindPositional([]any{2}, Arg("width", 2)); return err },
			want: `in call to volume: positional argument "width" repeated as keyword argument`,
			kind: PositionalConflict,
		},
		{
			name: "too many positional",
			bind: func() error { _, err := f.BindPositional([]any{1, 2, 3, 4}); return err },
			want: `in call to volume: too many positional arguments (got 4, want at most 3)`,
			kind: TooManyPositional,
		},
		{
			name: "extraction",
			bind: func() error { _, err := Describe("volume", volume, Required("width")); return err },
			want: `cannot bind volume: function has 3 parameters, 1 declared`,
			kind: ExtractionFailure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.bind()
			if err == nil {
				t.Fatalf("expected error")
			}
			if err.Error() != tc.want {
				t.Fatalf("unexpected message:\n got: %s\nwant: %s", err, tc.want)
			}
			kind, ok := KindOf(err)
			if !ok || kind != tc.kind {
				t.Fatalf("expected kind %s, got %s (%v)", tc.kind, kind, ok)
			}
		})
	}
}

func TestBindErrorMatchesOnlyItsSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &BindError{Kind: UnknownName, Names: []string{"x"}})
	if !errors.Is(err, ErrUnknownName) {
		t.Fatalf("expected wrapped error to match ErrUnknownName")
	}
	for _, other := range []error{ErrDuplicateName, ErrMissingRequired, ErrTypeMismatch, ErrExtractionFailure} {
		if errors.Is(err, other) {
			t.Fatalf("unknown name error should not match %v", other)
		}
	}
	if kind, ok := KindOf(err); !ok || kind != UnknownName {
		t.Fatalf("KindOf through wrap: %s %v", kind, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatalf("plain errors carry no kind")
	}
}

func TestBindErrorWithoutCallable(t *testing.T) {
	err := &BindError{Kind: MissingRequired, Names: []string{"x"}}
	if got := err.Error(); got != `argument "x" missing` {
		t.Fatalf("unexpected message %q", got)
	}
	err = &BindError{Kind: ExtractionFailure}
	if got := err.Error(); got != "cannot bind anonymous callable" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestErrorKindString(t *testing.T) {
	if DuplicateName.String() != "DuplicateName" || ExtractionFailure.String() != "ExtractionFailure" {
		t.Fatalf("unexpected kind names %s %s", DuplicateName, ExtractionFailure)
	}
	if got := ErrorKind(99).String(); got != "ErrorKind(99)" {
		t.Fatalf("unexpected out-of-range name %q", got)
	}
}
