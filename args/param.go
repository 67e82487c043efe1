package args

import (
	"strings"

	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// Arity describes how many argument slots a parameter occupies.
type Arity uint8

const (
	// Single occupies exactly one slot holding the TopLevel encoding.
	Single Arity = iota
	// Multi spreads a tuple over len(Type.Elems) consecutive slots.
	Multi
	// Variadic consumes every remaining slot, possibly none. Last only.
	Variadic
	// Optional consumes one slot if any remain, otherwise it is absent.
	Optional
	// Counted is a u32 count slot followed by that many element slots.
	Counted
)

func (a Arity) String() string {
	switch a {
	case Single:
		return "single"
	case Multi:
		return "multi"
	case Variadic:
		return "variadic"
	case Optional:
		return "optional"
	case Counted:
		return "counted"
	default:
		return "unknown"
	}
}

// Param is one declared input or output of an endpoint.
//
// For Variadic, Optional and Counted the Type describes a single element.
// When Grouped is set the element type is a tuple whose items are spread
// over consecutive slots, as in variadic<multi<A,B>>.
type Param struct {
	Type    *codec.Type
	Name    string
	Arity   Arity
	Grouped bool
}

// NewParam declares a single-slot parameter.
func NewParam(name string, t *codec.Type) Param {
	return Param{Name: name, Type: t, Arity: Single}
}

// slotsPerElem returns how many slots one element of p occupies.
func (p Param) slotsPerElem() int {
	switch {
	case p.Arity == Multi:
		return len(p.Type.Elems)
	case p.Grouped:
		return len(p.Type.Elems)
	default:
		return 1
	}
}

// minSlots is the smallest number of slots p can occupy.
func (p Param) minSlots() int {
	switch p.Arity {
	case Single:
		return 1
	case Multi:
		return len(p.Type.Elems)
	case Counted:
		return 1
	default:
		return 0
	}
}

// TypeString renders the parameter type in ABI type-expression syntax.
func (p Param) TypeString() string {
	elem := p.Type.String()
	if p.Grouped || p.Arity == Multi {
		elem = multiString(p.Type)
	}
	switch p.Arity {
	case Variadic:
		return "variadic<" + elem + ">"
	case Optional:
		return "optional<" + elem + ">"
	case Counted:
		return "counted-variadic<" + elem + ">"
	default:
		return elem
	}
}

func multiString(t *codec.Type) string {
	if t == nil || t.Kind != codec.KindTuple {
		return t.String()
	}
	return "multi" + strings.TrimPrefix(t.String(), "tuple")
}

// Validate checks a parameter list for layouts that cannot be decoded
// unambiguously.
func Validate(params []Param) error {
	sawOptional := false
	for i, p := range params {
		if p.Type == nil {
			return invalidParam(i, p, "missing type")
		}
		if err := p.Type.Validate(); err != nil {
			return errors.New(errors.PhaseArgs, errors.KindInvalidInput).
				Path(p.Name).
				Detail("parameter %d has an invalid type", i).
				Cause(err).
				Build()
		}
		if (p.Arity == Multi || p.Grouped) && p.Type.Kind != codec.KindTuple {
			return invalidParam(i, p, "multi-value parameter needs a tuple type")
		}
		if (p.Arity == Multi || p.Grouped) && len(p.Type.Elems) == 0 {
			return invalidParam(i, p, "multi-value parameter needs at least one element")
		}
		if p.Grouped && (p.Arity == Single || p.Arity == Multi) {
			return invalidParam(i, p, "grouped elements need a variadic, optional or counted parameter")
		}
		switch p.Arity {
		case Single, Multi, Counted:
			if sawOptional {
				return invalidParam(i, p, "required parameter after an optional one")
			}
		case Variadic:
			if i != len(params)-1 {
				return invalidParam(i, p, "variadic parameter must be last")
			}
		case Optional:
			sawOptional = true
		default:
			return invalidParam(i, p, "unknown arity")
		}
	}
	return nil
}

func invalidParam(i int, p Param, msg string) error {
	return errors.New(errors.PhaseArgs, errors.KindInvalidInput).
		Path(p.Name).
		Value(i).
		Detail("parameter %d (%s): %s", i, p.Arity, msg).
		Build()
}
