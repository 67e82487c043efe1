package abi

import (
	"strings"

	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// Endpoint is the signature of one callable contract function.
type Endpoint struct {
	Name       string
	Mutability string
	Docs       []string
	Inputs     []args.Param
	Outputs    []args.Param
}

// Validate checks both parameter lists.
func (e *Endpoint) Validate() error {
	if e.Name == "" {
		return errors.InvalidInput(errors.PhaseParse, "endpoint without a name")
	}
	if err := args.Validate(e.Inputs); err != nil {
		return errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "inputs of "+e.Name)
	}
	if err := args.Validate(e.Outputs); err != nil {
		return errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "outputs of "+e.Name)
	}
	return nil
}

// Signature renders the endpoint as "name(a: u8, b: u16) -> (u8, u16)".
func (e *Endpoint) Signature() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	sb.WriteByte('(')
	for i, p := range e.Inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Name != "" {
			sb.WriteString(p.Name)
			sb.WriteString(": ")
		}
		sb.WriteString(p.TypeString())
	}
	sb.WriteByte(')')
	switch len(e.Outputs) {
	case 0:
	case 1:
		sb.WriteString(" -> ")
		sb.WriteString(e.Outputs[0].TypeString())
	default:
		sb.WriteString(" -> (")
		for i, p := range e.Outputs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.TypeString())
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Definition is a loaded contract ABI: endpoints plus custom types.
type Definition struct {
	Types       map[string]*codec.Type
	Constructor *Endpoint
	Name        string
	Endpoints   []*Endpoint
}

// Endpoint looks up an endpoint by name.
func (d *Definition) Endpoint(name string) (*Endpoint, bool) {
	for _, e := range d.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Type looks up a custom struct or enum type by name.
func (d *Definition) Type(name string) (*codec.Type, bool) {
	t, ok := d.Types[name]
	return t, ok
}

// ParseType resolves a type expression against the definition's custom
// types.
func (d *Definition) ParseType(src string) (*codec.Type, error) {
	e, err := parseExpr(src)
	if err != nil {
		return nil, err
	}
	r := &resolver{custom: d.Types}
	return r.typeOf(e)
}

// ParseParam resolves an argument-level type expression, which may use
// the multi-value wrappers.
func (d *Definition) ParseParam(name, src string) (args.Param, error) {
	e, err := parseExpr(src)
	if err != nil {
		return args.Param{}, err
	}
	r := &resolver{custom: d.Types}
	return r.param(name, e)
}

// ParseType resolves a type expression that uses only built-in types.
func ParseType(src string) (*codec.Type, error) {
	return (&Definition{}).ParseType(src)
}
