package abi

import (
	"strconv"
	"strings"

	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// expr is a parsed type expression such as List<Option<u32>>.
type expr struct {
	name string
	args []expr
}

func (e expr) String() string {
	if len(e.args) == 0 {
		return e.name
	}
	parts := make([]string, len(e.args))
	for i, a := range e.args {
		parts[i] = a.String()
	}
	return e.name + "<" + strings.Join(parts, ",") + ">"
}

type exprParser struct {
	src string
	pos int
}

func parseExpr(src string) (expr, error) {
	p := &exprParser{src: src}
	e, err := p.parse()
	if err != nil {
		return expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return expr{}, p.fail("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) parse() (expr, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>, ", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return expr{}, p.fail("expected a type name")
	}
	e := expr{name: p.src[start:p.pos]}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return e, nil
	}
	p.pos++
	for {
		arg, err := p.parse()
		if err != nil {
			return expr{}, err
		}
		e.args = append(e.args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return expr{}, p.fail("unclosed <")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return e, nil
		default:
			return expr{}, p.fail("unexpected %q", string(p.src[p.pos]))
		}
	}
}

func (p *exprParser) fail(format string, a ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Value(p.src).
		Detail("type %q at %d: "+format, append([]any{p.src, p.pos}, a...)...).
		Build()
}

var primitiveNames = map[string]*codec.Type{
	"u8":                        codec.U8Type,
	"u16":                       codec.U16Type,
	"u32":                       codec.U32Type,
	"u64":                       codec.U64Type,
	"usize":                     codec.USizeType,
	"i8":                        codec.I8Type,
	"i16":                       codec.I16Type,
	"i32":                       codec.I32Type,
	"i64":                       codec.I64Type,
	"isize":                     codec.ISizeType,
	"bool":                      codec.BoolType,
	"bytes":                     codec.BytesType,
	"ManagedBuffer":             codec.BytesType,
	"BoxedBytes":                codec.BytesType,
	"TokenIdentifier":           codec.BytesType,
	"EgldOrEsdtTokenIdentifier": codec.BytesType,
	"BigUint":                   codec.BigUintType,
	"BigInt":                    codec.BigIntType,
	"Address":                   codec.AddressType,
	"ManagedAddress":            codec.AddressType,
}

// resolver turns expressions into codec types, looking up custom names.
type resolver struct {
	custom map[string]*codec.Type
}

func (r *resolver) typeOf(e expr) (*codec.Type, error) {
	if len(e.args) == 0 {
		if t, ok := primitiveNames[e.name]; ok {
			return t, nil
		}
		if t, ok := r.custom[e.name]; ok {
			return t, nil
		}
		return nil, errors.NotFound(errors.PhaseParse, "type", e.name)
	}

	switch {
	case e.name == "Option":
		elem, err := r.single(e)
		if err != nil {
			return nil, err
		}
		return codec.OptionOf(elem), nil
	case e.name == "List" || e.name == "vec" || e.name == "ManagedVec":
		elem, err := r.single(e)
		if err != nil {
			return nil, err
		}
		return codec.ListOf(elem), nil
	case e.name == "tuple":
		elems, err := r.all(e)
		if err != nil {
			return nil, err
		}
		return codec.TupleOf(elems...), nil
	case strings.HasPrefix(e.name, "array"):
		n, err := strconv.Atoi(strings.TrimPrefix(e.name, "array"))
		if err != nil || n < 0 {
			return nil, errors.InvalidInput(errors.PhaseParse, "bad array length in "+e.String())
		}
		elem, err := r.single(e)
		if err != nil {
			return nil, err
		}
		return codec.ArrayOf(n, elem), nil
	case isMultiName(e.name):
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Type(e.String()).
			Detail("multi-value type %s is only allowed at argument level", e.name).
			Build()
	default:
		return nil, errors.Unsupported(errors.PhaseParse, "generic type "+e.String())
	}
}

func (r *resolver) single(e expr) (*codec.Type, error) {
	if len(e.args) != 1 {
		return nil, errors.InvalidInput(errors.PhaseParse, e.name+" takes exactly one type argument")
	}
	return r.typeOf(e.args[0])
}

func (r *resolver) all(e expr) ([]*codec.Type, error) {
	out := make([]*codec.Type, len(e.args))
	for i, a := range e.args {
		t, err := r.typeOf(a)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func isMultiName(name string) bool {
	switch name {
	case "variadic", "multi", "optional", "counted-variadic":
		return true
	}
	return false
}

// param builds an argument-level parameter, which may use the multi-value
// wrappers variadic, multi, optional and counted-variadic.
func (r *resolver) param(name string, e expr) (args.Param, error) {
	p := args.Param{Name: name}
	var arity args.Arity
	switch e.name {
	case "variadic":
		arity = args.Variadic
	case "optional":
		arity = args.Optional
	case "counted-variadic":
		arity = args.Counted
	case "multi":
		elems, err := r.all(e)
		if err != nil {
			return p, err
		}
		p.Arity = args.Multi
		p.Type = codec.TupleOf(elems...)
		return p, nil
	default:
		t, err := r.typeOf(e)
		if err != nil {
			return p, err
		}
		p.Type = t
		return p, nil
	}

	if len(e.args) != 1 {
		return p, errors.InvalidInput(errors.PhaseParse, e.name+" takes exactly one type argument")
	}
	p.Arity = arity
	inner := e.args[0]
	if inner.name == "multi" {
		elems, err := r.all(inner)
		if err != nil {
			return p, err
		}
		p.Grouped = true
		p.Type = codec.TupleOf(elems...)
		return p, nil
	}
	t, err := r.typeOf(inner)
	if err != nil {
		return p, err
	}
	p.Type = t
	return p, nil
}
