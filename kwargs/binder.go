package kwargs

import (
	"fmt"
	"reflect"
	"sort"
)

// Source tells where a bound slot's value came from.
type Source uint8

const (
	FromArgument Source = iota
	FromDefault
	FromPositional
)

func (s Source) String() string {
	switch s {
	case FromArgument:
		return "argument"
	case FromDefault:
		return "default"
	case FromPositional:
		return "positional"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Slot is one resolved parameter of a Binding.
type Slot struct {
	Param    Param
	Source   Source
	Category Category

	value reflect.Value
	ref   reflect.Value
	deref bool
}

// Value returns the slot value typed as the parameter. Borrowed slots read
// the referenced variable on every call.
func (s Slot) Value() reflect.Value {
	if s.ref.IsValid() {
		if !s.deref {
			return assignTo(s.ref, s.Param.Type)
		}
		return assignTo(s.ref.Elem(), s.Param.Type)
	}
	return s.value
}

// Interface returns Value as an any.
func (s Slot) Interface() any {
	return s.Value().Interface()
}

// Binding is the positional argument list produced for one call site. Slot i
// corresponds to Signature.Params[i].
type Binding struct {
	Signature *Signature
	Slots     []Slot
}

// Len returns the number of slots, always the parameter count.
func (b *Binding) Len() int {
	return len(b.Slots)
}

// Values returns the slot values in declaration order.
func (b *Binding) Values() []reflect.Value {
	out := make([]reflect.Value, len(b.Slots))
	for i, slot := range b.Slots {
		out[i] = slot.Value()
	}
	return out
}

// Interfaces returns the slot values as any, in declaration order.
func (b *Binding) Interfaces() []any {
	out := make([]any, len(b.Slots))
	for i, slot := range b.Slots {
		out[i] = slot.Interface()
	}
	return out
}

// Bind resolves named arguments against sig with the default Config.
func Bind(sig *Signature, args ...Named) (*Binding, error) {
	return Config{}.bind(sig, nil, args)
}

// BindPositional fills the first len(positional) parameters in order and
// resolves the remaining ones by name.
func BindPositional(sig *Signature, positional []any, args []Named) (*Binding, error) {
	return Config{}.bind(sig, positional, args)
}

// Bind resolves named arguments against sig under c.
func (c Config) Bind(sig *Signature, args ...Named) (*Binding, error) {
	return c.bind(sig, nil, args)
}

// BindPositional is BindPositional under c.
func (c Config) BindPositional(sig *Signature, positional []any, args []Named) (*Binding, error) {
	return c.bind(sig, positional, args)
}

// bind runs the resolution stages in a fixed order; the first failing stage
// ends the pass. Matching is by name only, so any permutation of args yields
// the same Binding.
func (c Config) bind(sig *Signature, positional []any, args []Named) (*Binding, error) {
	if sig == nil {
		return nil, extractionError("", "no signature")
	}

	seen := make(map[string]int, len(args))
	var duplicates []string
	for _, arg := range args {
		seen[arg.name]++
		if seen[arg.name] == 2 {
			duplicates = append(duplicates, arg.name)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return nil, &BindError{Kind: DuplicateName, Callable: sig.Name, Names: duplicates}
	}

	if len(positional) > len(sig.Params) {
		return nil, &BindError{
			Kind:     TooManyPositional,
			Callable: sig.Name,
			Detail:   fmt.Sprintf("got %d, want at most %d", len(positional), len(sig.Params)),
		}
	}
	var conflict *BindError
	for _, p := range sig.Params[:len(positional)] {
		if _, ok := seen[p.Name]; ok {
			if conflict == nil {
				conflict = &BindError{Kind: PositionalConflict, Callable: sig.Name}
			}
			conflict.Names = append(conflict.Names, p.Name)
			conflict.Positions = append(conflict.Positions, p.Index)
		}
	}
	if conflict != nil {
		return nil, conflict
	}

	matched := make([]int, len(sig.Params))
	for i := range matched {
		matched[i] = -1
	}
	var unknown []string
	for i, arg := range args {
		idx, ok := sig.index[arg.name]
		if !ok {
			unknown = append(unknown, arg.name)
			continue
		}
		matched[idx] = i
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &BindError{Kind: UnknownName, Callable: sig.Name, Names: unknown}
	}

	slots := make([]Slot, len(sig.Params))
	var missing *BindError
	for i, p := range sig.Params {
		slot := Slot{Param: p}
		switch {
		case i < len(positional):
			slot.Source = FromPositional
			slot.value = valueOf(positional[i])
		case matched[i] >= 0:
			arg := args[matched[i]]
			slot.Source = FromArgument
			slot.Category = arg.category
			slot.value = arg.value
		case p.HasDefault:
			val, ok := p.materialize()
			if !ok {
				return nil, &BindError{
					Kind:      TypeMismatch,
					Callable:  sig.Name,
					Names:     []string{p.Name},
					Positions: []int{p.Index},
					Expected:  p.Type.String(),
					Actual:    describeValueType(valueOf(p.Default())),
					Detail:    "default",
				}
			}
			slot.Source = FromDefault
			slot.value = val
		default:
			if missing == nil {
				missing = &BindError{Kind: MissingRequired, Callable: sig.Name}
			}
			missing.Names = append(missing.Names, p.Name)
			missing.Positions = append(missing.Positions, p.Index)
		}
		slots[i] = slot
	}
	if missing != nil {
		return nil, missing
	}

	for i := range slots {
		if slots[i].Source == FromDefault {
			continue
		}
		if err := c.checkSlot(sig, &slots[i]); err != nil {
			return nil, err
		}
	}

	return &Binding{Signature: sig, Slots: slots}, nil
}

// checkSlot converts a supplied value to the parameter type in place.
func (c Config) checkSlot(sig *Signature, slot *Slot) error {
	p := slot.Param
	mismatch := func(actual string) error {
		return &BindError{
			Kind:      TypeMismatch,
			Callable:  sig.Name,
			Names:     []string{p.Name},
			Positions: []int{p.Index},
			Expected:  p.Type.String(),
			Actual:    actual,
		}
	}

	if slot.Category == Borrowed {
		ptr := slot.value
		elem := ptr.Type().Elem()
		switch {
		case convertibleType(elem, p.Type):
			if ptr.IsNil() {
				return mismatch("nil " + ptr.Type().String())
			}
			slot.ref, slot.deref = ptr, true
		case convertibleType(ptr.Type(), p.Type):
			slot.ref = ptr
		default:
			return mismatch(elem.String())
		}
		slot.value = reflect.Value{}
		return nil
	}

	converted, ok := convertValue(slot.value, p.Type, c.StrictTypes)
	if !ok {
		return mismatch(describeValueType(slot.value))
	}
	slot.value = converted
	return nil
}
