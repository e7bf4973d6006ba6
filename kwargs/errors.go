package kwargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies a binding failure.
type ErrorKind int

const (
	// DuplicateName: two arguments at one call site share a name.
	DuplicateName ErrorKind = iota + 1
	// UnknownName: an argument name matches no parameter.
	UnknownName
	// MissingRequired: a parameter without a default received no argument.
	MissingRequired
	// TypeMismatch: an argument does not convert to its parameter type.
	TypeMismatch
	// ExtractionFailure: the target exposes no usable parameter list.
	ExtractionFailure
	// PositionalConflict: a name repeats a parameter already filled positionally.
	PositionalConflict
	// TooManyPositional: more positional arguments than parameters.
	TooManyPositional
)

var kindNames = [...]string{
	DuplicateName:      "DuplicateName",
	UnknownName:        "UnknownName",
	MissingRequired:    "MissingRequired",
	TypeMismatch:       "TypeMismatch",
	ExtractionFailure:  "ExtractionFailure",
	PositionalConflict: "PositionalConflict",
	TooManyPositional:  "TooManyPositional",
}

func (k ErrorKind) String() string {
	if k <= 0 || int(k) >= len(kindNames) {
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Sentinels for errors.Is. A *BindError matches the sentinel of its Kind.
var (
	ErrDuplicateName      = errors.New("duplicate argument name")
	ErrUnknownName        = errors.New("unknown argument name")
	ErrMissingRequired    = errors.New("missing required argument")
	ErrTypeMismatch       = errors.New("argument type mismatch")
	ErrExtractionFailure  = errors.New("parameter extraction failed")
	ErrPositionalConflict = errors.New("positional argument repeated as keyword")
	ErrTooManyPositional  = errors.New("too many positional arguments")
)

var kindSentinels = map[ErrorKind]error{
	DuplicateName:      ErrDuplicateName,
	UnknownName:        ErrUnknownName,
	MissingRequired:    ErrMissingRequired,
	TypeMismatch:       ErrTypeMismatch,
	ExtractionFailure:  ErrExtractionFailure,
	PositionalConflict: ErrPositionalConflict,
	TooManyPositional:  ErrTooManyPositional,
}

// BindError reports why a call site could not be bound. Names and Positions
// are ordered deterministically: duplicate and unknown names lexically,
// parameter-related names by declaration index.
type BindError struct {
	Kind      ErrorKind
	Callable  string
	Names     []string
	Positions []int
	Expected  string
	Actual    string
	Detail    string
}

func (e *BindError) Error() string {
	var b strings.Builder
	if e.Kind == ExtractionFailure {
		b.WriteString("cannot bind ")
		b.WriteString(callableLabel(e.Callable))
		if e.Detail != "" {
			b.WriteString(": ")
			b.WriteString(e.Detail)
		}
		return b.String()
	}
	if e.Callable != "" {
		fmt.Fprintf(&b, "in call to %s: ", e.Callable)
	}
	switch e.Kind {
	case DuplicateName:
		fmt.Fprintf(&b, "%s %s repeated", plural(len(e.Names), "keyword argument", "keyword arguments"), quoteNames(e.Names))
	case UnknownName:
		fmt.Fprintf(&b, "no %s named %s", plural(len(e.Names), "parameter", "parameters"), quoteNames(e.Names))
	case MissingRequired:
		fmt.Fprintf(&b, "%s %s missing", plural(len(e.argLabels()), "argument", "arguments"), strings.Join(e.argLabels(), ", "))
	case TypeMismatch:
		labels := e.argLabels()
		label := "value"
		if len(labels) > 0 {
			label = labels[0]
		}
		fmt.Fprintf(&b, "argument %s expected %s, got %s", label, e.Expected, e.Actual)
	case PositionalConflict:
		fmt.Fprintf(&b, "positional %s %s repeated as keyword %s",
			plural(len(e.Names), "argument", "arguments"), quoteNames(e.Names), plural(len(e.Names), "argument", "arguments"))
	case TooManyPositional:
		b.WriteString("too many positional arguments")
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

// Is reports whether target is the sentinel for e.Kind.
func (e *BindError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// argLabels pairs names with positions: `"height" (position 1)`.
func (e *BindError) argLabels() []string {
	n := max(len(e.Names), len(e.Positions))
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(e.Names) && e.Names[i] != "" && i < len(e.Positions):
			labels = append(labels, fmt.Sprintf("%q (position %d)", e.Names[i], e.Positions[i]))
		case i < len(e.Names) && e.Names[i] != "":
			labels = append(labels, strconv.Quote(e.Names[i]))
		case i < len(e.Positions):
			labels = append(labels, fmt.Sprintf("at position %d", e.Positions[i]))
		}
	}
	return labels
}

// KindOf extracts the ErrorKind of a binding failure anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return bindErr.Kind, true
	}
	return 0, false
}

func extractionError(callable, detail string) *BindError {
	return &BindError{Kind: ExtractionFailure, Callable: callable, Detail: detail}
}

func callableLabel(name string) string {
	if name == "" {
		return "anonymous callable"
	}
	return name
}

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}
	return strings.Join(quoted, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
