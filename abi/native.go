package abi

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// HexPrefix marks a native string that carries hex-encoded bytes.
const HexPrefix = "hex:"

// ToNative converts a codec value into plain Go data suitable for JSON or
// YAML output:
//
//	u8..u64, usize   uint64
//	i8..i64, isize   int64
//	BigUint, BigInt  *big.Int
//	bytes            string, or "hex:..." when not printable UTF-8
//	Address          64 hex digits (FromNative also takes bech32)
//	Option           nil or the inner value
//	List, array,     []any
//	tuple
//	struct           map[string]any
//	enum             variant name, or {"name": ..., "values": ...}
func ToNative(t *codec.Type, v codec.Value) any {
	switch t.Kind {
	case codec.KindU8, codec.KindU16, codec.KindU32, codec.KindU64, codec.KindUSize:
		if u, ok := v.(codec.Uint); ok {
			return u.V
		}
	case codec.KindI8, codec.KindI16, codec.KindI32, codec.KindI64, codec.KindISize:
		if i, ok := v.(codec.Int); ok {
			return i.V
		}
	case codec.KindBool:
		if b, ok := v.(codec.Bool); ok {
			return bool(b)
		}
	case codec.KindBytes:
		if b, ok := v.(codec.Bytes); ok {
			return bytesToNative(b)
		}
	case codec.KindAddress:
		if b, ok := v.(codec.Bytes); ok {
			return hex.EncodeToString(b)
		}
	case codec.KindBigUint:
		if b, ok := v.(codec.BigUint); ok {
			return bigCopy(b.V)
		}
	case codec.KindBigInt:
		if b, ok := v.(codec.BigInt); ok {
			return bigCopy(b.V)
		}
	case codec.KindOption:
		if o, ok := v.(codec.Option); ok {
			if !o.IsSome() {
				return nil
			}
			return ToNative(t.Elem, o.Value)
		}
	case codec.KindList, codec.KindArray:
		if seq, ok := v.(codec.Sequence); ok {
			out := make([]any, len(seq))
			for i, item := range seq {
				out[i] = ToNative(t.Elem, item)
			}
			return out
		}
	case codec.KindTuple:
		if seq, ok := v.(codec.Sequence); ok && len(seq) == len(t.Elems) {
			out := make([]any, len(seq))
			for i, item := range seq {
				out[i] = ToNative(t.Elems[i], item)
			}
			return out
		}
	case codec.KindStruct:
		if rec, ok := v.(codec.Record); ok {
			return fieldsToNative(t.Fields, recordValues(rec))
		}
	case codec.KindEnum:
		if u, ok := v.(codec.Union); ok && u.Index >= 0 && u.Index < len(t.Variants) {
			variant := t.Variants[u.Index]
			switch variant.Shape {
			case codec.ShapeUnit:
				return variant.Name
			case codec.ShapeTuple:
				values := make([]any, len(u.Payload))
				for i, p := range u.Payload {
					values[i] = ToNative(variant.Fields[i].Type, p)
				}
				return map[string]any{"name": variant.Name, "values": values}
			default:
				return map[string]any{"name": variant.Name, "values": fieldsToNative(variant.Fields, u.Payload)}
			}
		}
	}
	return nil
}

func recordValues(rec codec.Record) []codec.Value {
	out := make([]codec.Value, len(rec))
	for i, f := range rec {
		out[i] = f.Value
	}
	return out
}

func fieldsToNative(fields []codec.Field, values []codec.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for i, f := range fields {
		if i < len(values) {
			out[f.Name] = ToNative(f.Type, values[i])
		}
	}
	return out
}

func bytesToNative(b []byte) string {
	if utf8.Valid(b) && !strings.HasPrefix(string(b), HexPrefix) {
		printable := true
		for _, r := range string(b) {
			if !unicode.IsPrint(r) {
				printable = false
				break
			}
		}
		if printable {
			return string(b)
		}
	}
	return HexPrefix + hex.EncodeToString(b)
}

func bigCopy(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// FromNative converts plain Go data into a codec value of type t. It
// accepts the forms ToNative produces plus the usual decoder outputs:
// any Go integer, float64 holding an integer, json.Number, decimal strings,
// []byte, and for structs either a map or a positional slice. Enums accept a
// variant name, an index, or a map with "name" or "discriminant" and
// optional "values".
func FromNative(t *codec.Type, v any) (codec.Value, error) {
	return fromNative(t, v, nil)
}

func fromNative(t *codec.Type, v any, path []string) (codec.Value, error) {
	switch t.Kind {
	case codec.KindU8, codec.KindU16, codec.KindU32, codec.KindU64, codec.KindUSize:
		n, ok := toBig(v)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		if n.Sign() < 0 || !n.IsUint64() {
			return nil, errors.Overflow(errors.PhaseEncode, path, n.String(), t.String())
		}
		return codec.U(n.Uint64()), nil
	case codec.KindI8, codec.KindI16, codec.KindI32, codec.KindI64, codec.KindISize:
		n, ok := toBig(v)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		if !n.IsInt64() {
			return nil, errors.Overflow(errors.PhaseEncode, path, n.String(), t.String())
		}
		return codec.I(n.Int64()), nil
	case codec.KindBigUint:
		n, ok := toBig(v)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		return codec.BigUint{V: n}, nil
	case codec.KindBigInt:
		n, ok := toBig(v)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		return codec.BigInt{V: n}, nil
	case codec.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		return codec.Bool(b), nil
	case codec.KindBytes:
		return bytesFromNative(t, v, path)
	case codec.KindAddress:
		if s, ok := v.(string); ok {
			return addressFromString(t, s, path)
		}
		return bytesFromNative(t, v, path)
	case codec.KindOption:
		if v == nil {
			return codec.None(), nil
		}
		inner, err := fromNative(t.Elem, v, path)
		if err != nil {
			return nil, err
		}
		return codec.Some(inner), nil
	case codec.KindList, codec.KindArray:
		items, ok := v.([]any)
		if !ok {
			if s, isStr := v.(string); isStr && t.Elem.Kind == codec.KindU8 {
				return u8Sequence([]byte(s)), nil
			}
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		out := make(codec.Sequence, len(items))
		for i, item := range items {
			ev, err := fromNative(t.Elem, item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case codec.KindTuple:
		items, ok := v.([]any)
		if !ok || len(items) != len(t.Elems) {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		out := make(codec.Sequence, len(items))
		for i, item := range items {
			ev, err := fromNative(t.Elems[i], item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case codec.KindStruct:
		values, err := fieldsFromNative(t, t.Fields, v, path)
		if err != nil {
			return nil, err
		}
		rec := make(codec.Record, len(values))
		for i, f := range t.Fields {
			rec[i] = codec.FieldValue{Name: f.Name, Value: values[i]}
		}
		return rec, nil
	case codec.KindEnum:
		return enumFromNative(t, v, path)
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, "kind "+t.Kind.String())
	}
}

func u8Sequence(b []byte) codec.Sequence {
	out := make(codec.Sequence, len(b))
	for i, c := range b {
		out[i] = codec.U(uint64(c))
	}
	return out
}

func bytesFromNative(t *codec.Type, v any, path []string) (codec.Value, error) {
	switch b := v.(type) {
	case []byte:
		return codec.Bytes(append([]byte{}, b...)), nil
	case string:
		if strings.HasPrefix(b, HexPrefix) {
			raw, err := hex.DecodeString(b[len(HexPrefix):])
			if err != nil {
				return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
					Path(path...).
					Type(t.String()).
					Cause(err).
					Detail("invalid hex after %q", HexPrefix).
					Build()
			}
			return codec.Bytes(raw), nil
		}
		return codec.Bytes(b), nil
	case []any:
		out := make(codec.Bytes, len(b))
		for i, item := range b {
			n, ok := toBig(item)
			if !ok || n.Sign() < 0 || n.BitLen() > 8 {
				return nil, errors.TypeMismatch(errors.PhaseEncode, indexPath(path, i), "u8", item)
			}
			out[i] = byte(n.Uint64())
		}
		return out, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
}

// fieldsFromNative reads declared fields from a map or a positional slice.
func fieldsFromNative(t *codec.Type, fields []codec.Field, v any, path []string) ([]codec.Value, error) {
	out := make([]codec.Value, len(fields))
	switch src := v.(type) {
	case map[string]any:
		for i, f := range fields {
			raw, ok := src[f.Name]
			if !ok {
				return nil, errors.New(errors.PhaseEncode, errors.KindNotFound).
					Path(childPath(path, f.Name)...).
					Type(t.String()).
					Detail("missing field %q", f.Name).
					Build()
			}
			fv, err := fromNative(f.Type, raw, childPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			out[i] = fv
		}
	case []any:
		if len(src) != len(fields) {
			return nil, errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
				Path(path...).
				Type(t.String()).
				Detail("expected %d fields, got %d", len(fields), len(src)).
				Build()
		}
		for i, f := range fields {
			fv, err := fromNative(f.Type, src[i], childPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			out[i] = fv
		}
	default:
		if len(fields) == 0 && v == nil {
			return out, nil
		}
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	return out, nil
}

func enumFromNative(t *codec.Type, v any, path []string) (codec.Value, error) {
	var (
		index   = -1
		payload any
	)
	switch src := v.(type) {
	case string:
		index = t.VariantIndex(src)
		if index < 0 {
			return nil, errors.NotFound(errors.PhaseEncode, "variant of "+t.String(), src)
		}
	case map[string]any:
		if name, ok := src["name"].(string); ok {
			index = t.VariantIndex(name)
			if index < 0 {
				return nil, errors.NotFound(errors.PhaseEncode, "variant of "+t.String(), name)
			}
		} else if d, ok := toBig(src["discriminant"]); ok && d.IsInt64() {
			index = int(d.Int64())
		} else {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Path(path...).
				Type(t.String()).
				Detail("enum value needs a name or discriminant").
				Build()
		}
		payload = src["values"]
	default:
		n, ok := toBig(v)
		if !ok || !n.IsInt64() {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
		}
		index = int(n.Int64())
	}
	if index < 0 || index >= len(t.Variants) {
		return nil, errors.UnknownVariant(errors.PhaseEncode, path, t.String(), index, len(t.Variants))
	}

	variant := t.Variants[index]
	u := codec.Union{Index: index, Name: variant.Name}
	if len(variant.Fields) == 0 {
		return u, nil
	}
	values, err := fieldsFromNative(t, variant.Fields, payload, childPath(path, variant.Name))
	if err != nil {
		return nil, err
	}
	u.Payload = values
	return u, nil
}

// toBig accepts every numeric form produced by Go literals, encoding/json
// and yaml.v3.
func toBig(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, false
		}
		out, _ := big.NewFloat(n).Int(nil)
		return out, true
	case json.Number:
		return parseBig(string(n))
	case string:
		return parseBig(n)
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return new(big.Int).Set(n), true
	default:
		return nil, false
	}
}

func parseBig(s string) (*big.Int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 0)
}

func childPath(path []string, elem string) []string {
	return append(append([]string{}, path...), elem)
}

func indexPath(path []string, i int) []string {
	return childPath(path, "["+strconv.Itoa(i)+"]")
}

// ParamToNative converts one decoded parameter value. Multi-value
// parameters become slices; an absent optional becomes nil.
func ParamToNative(p args.Param, v codec.Value) any {
	switch p.Arity {
	case args.Multi:
		return ToNative(p.Type, v)
	case args.Variadic, args.Counted:
		seq, _ := v.(codec.Sequence)
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = ToNative(p.Type, item)
		}
		return out
	case args.Optional:
		o, _ := v.(codec.Option)
		if !o.IsSome() {
			return nil
		}
		return ToNative(p.Type, o.Value)
	default:
		return ToNative(p.Type, v)
	}
}

// ParamFromNative is the inverse of ParamToNative.
func ParamFromNative(p args.Param, v any) (codec.Value, error) {
	path := []string{p.Name}
	switch p.Arity {
	case args.Multi:
		return fromNative(p.Type, v, path)
	case args.Variadic, args.Counted:
		if v == nil {
			return codec.Sequence{}, nil
		}
		items, ok := v.([]any)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, p.TypeString(), v)
		}
		out := make(codec.Sequence, len(items))
		for i, item := range items {
			ev, err := fromNative(p.Type, item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case args.Optional:
		if v == nil {
			return codec.None(), nil
		}
		inner, err := fromNative(p.Type, v, path)
		if err != nil {
			return nil, err
		}
		return codec.Some(inner), nil
	default:
		return fromNative(p.Type, v, path)
	}
}
