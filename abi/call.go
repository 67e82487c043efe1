package abi

import (
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// EncodeInputs converts native input values into an argument list. Trailing
// optional and variadic inputs may be omitted.
func EncodeInputs(ep *Endpoint, natives []any) (args.ArgumentList, error) {
	values, err := valuesFromNative(ep.Inputs, natives)
	if err != nil {
		return nil, err
	}
	return args.Encode(ep.Inputs, values)
}

// DecodeInputs decodes an argument list into native input values.
func DecodeInputs(ep *Endpoint, list args.ArgumentList) ([]any, error) {
	values, err := args.Decode(ep.Inputs, list)
	if err != nil {
		return nil, err
	}
	return valuesToNative(ep.Inputs, values), nil
}

// EncodeOutputs converts native result values into result slots.
func EncodeOutputs(ep *Endpoint, natives []any) (args.ArgumentList, error) {
	values, err := valuesFromNative(ep.Outputs, natives)
	if err != nil {
		return nil, err
	}
	return args.Encode(ep.Outputs, values)
}

// DecodeOutputs decodes result slots into native values.
func DecodeOutputs(ep *Endpoint, list args.ArgumentList) ([]any, error) {
	values, err := args.Decode(ep.Outputs, list)
	if err != nil {
		return nil, err
	}
	return valuesToNative(ep.Outputs, values), nil
}

func valuesFromNative(params []args.Param, natives []any) ([]codec.Value, error) {
	if len(natives) > len(params) {
		return nil, errors.ArgumentCountMismatch(errors.PhaseEncode,
			"expected at most %d values, got %d", len(params), len(natives))
	}
	values := make([]codec.Value, len(params))
	for i, p := range params {
		var native any
		if i < len(natives) {
			native = natives[i]
		} else if p.Arity != args.Optional && p.Arity != args.Variadic {
			return nil, errors.ArgumentCountMismatch(errors.PhaseEncode,
				"missing value for %s (%d of %d)", p.Name, i, len(params))
		}
		v, err := ParamFromNative(p, native)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func valuesToNative(params []args.Param, values []codec.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = ParamToNative(params[i], v)
	}
	return out
}
