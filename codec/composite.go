package codec

import (
	"github.com/wippyai/contract-abi/errors"
)

func appendOption(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	o, ok := v.(Option)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if mode == TopLevel {
		// Absent is the empty slot; present carries no discriminant.
		if !o.IsSome() {
			return buf, nil
		}
		return encodeValue(buf, t.Elem, o.Value, TopLevel, path)
	}
	if !o.IsSome() {
		return append(buf, 0), nil
	}
	return encodeValue(append(buf, 1), t.Elem, o.Value, Nested, path)
}

func decodeOptionTop(t *Type, data []byte, path []string) (Value, error) {
	if len(data) == 0 {
		return None(), nil
	}
	inner, err := decodeTop(t.Elem, data, path)
	if err != nil {
		return nil, err
	}
	return Some(inner), nil
}

func decodeOptionNested(t *Type, r *reader, path []string) (Value, error) {
	tag, err := r.readByte(t, path)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return None(), nil
	case 1:
		inner, err := decodeNested(t.Elem, r, path)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(path...).
			Type(t.String()).
			Value(tag).
			Detail("invalid option discriminant 0x%02x", tag).
			Build()
	}
}

func appendList(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	seq, ok := v.(Sequence)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if mode == Nested {
		buf = appendLength(buf, len(seq))
	}
	return appendElems(buf, seq, func(int) *Type { return t.Elem }, path)
}

func decodeListTop(t *Type, data []byte, path []string) (Value, error) {
	r := &reader{data: data}
	var out Sequence
	for i := 0; r.remaining() > 0; i++ {
		if i >= MaxListLength {
			return nil, errors.Overflow(errors.PhaseDecode, path, i, "max list length")
		}
		elem, err := decodeNested(t.Elem, r, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	if out == nil {
		out = Sequence{}
	}
	return out, nil
}

func decodeListNested(t *Type, r *reader, path []string) (Value, error) {
	n, err := r.readLength(t, path)
	if err != nil {
		return nil, err
	}
	if n > MaxListLength {
		return nil, errors.Overflow(errors.PhaseDecode, path, n, "max list length")
	}
	return decodeElems(r, n, func(int) *Type { return t.Elem }, path)
}

func appendArray(buf []byte, t *Type, v Value, path []string) ([]byte, error) {
	seq, ok := v.(Sequence)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if len(seq) != t.Len {
		return nil, errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Path(path...).
			Type(t.String()).
			Value(len(seq)).
			Detail("expected %d elements, got %d", t.Len, len(seq)).
			Build()
	}
	return appendElems(buf, seq, func(int) *Type { return t.Elem }, path)
}

func appendTuple(buf []byte, t *Type, v Value, path []string) ([]byte, error) {
	seq, ok := v.(Sequence)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if len(seq) != len(t.Elems) {
		return nil, errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Path(path...).
			Type(t.String()).
			Value(len(seq)).
			Detail("expected %d elements, got %d", len(t.Elems), len(seq)).
			Build()
	}
	return appendElems(buf, seq, func(i int) *Type { return t.Elems[i] }, path)
}

func appendElems(buf []byte, seq Sequence, elemType func(int) *Type, path []string) ([]byte, error) {
	var err error
	for i, elem := range seq {
		buf, err = encodeValue(buf, elemType(i), elem, Nested, indexPath(path, i))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeElems(r *reader, n int, elemType func(int) *Type, path []string) (Value, error) {
	out := make(Sequence, 0, min(n, r.remaining()+1))
	for i := 0; i < n; i++ {
		elem, err := decodeNested(elemType(i), r, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

func appendStruct(buf []byte, t *Type, v Value, path []string) ([]byte, error) {
	rec, ok := v.(Record)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	return appendFields(buf, t, t.Fields, rec, path)
}

// appendFields encodes named values positionally. A non-empty name must
// match the declared field at that position.
func appendFields(buf []byte, t *Type, fields []Field, rec Record, path []string) ([]byte, error) {
	if len(rec) != len(fields) {
		return nil, errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Path(path...).
			Type(t.String()).
			Value(len(rec)).
			Detail("expected %d fields, got %d", len(fields), len(rec)).
			Build()
	}
	var err error
	for i, f := range fields {
		fv := rec[i]
		if fv.Name != "" && fv.Name != f.Name {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path(path...).
				Type(t.String()).
				Detail("field %d is %q, got %q", i, f.Name, fv.Name).
				Build()
		}
		buf, err = encodeValue(buf, f.Type, fv.Value, Nested, childPath(path, f.Name))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeStruct(t *Type, r *reader, path []string) (Value, error) {
	out := make(Record, len(t.Fields))
	for i, f := range t.Fields {
		v, err := decodeNested(f.Type, r, childPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		out[i] = FieldValue{Name: f.Name, Value: v}
	}
	return out, nil
}

func appendEnum(buf []byte, t *Type, v Value, path []string) ([]byte, error) {
	u, ok := v.(Union)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if u.Index < 0 || u.Index >= len(t.Variants) {
		return nil, errors.UnknownVariant(errors.PhaseEncode, path, t.String(), u.Index, len(t.Variants))
	}
	variant := &t.Variants[u.Index]
	if len(u.Payload) != len(variant.Fields) {
		return nil, errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Path(childPath(path, variant.Name)...).
			Type(t.String()).
			Value(len(u.Payload)).
			Detail("variant %s expects %d values, got %d", variant.Name, len(variant.Fields), len(u.Payload)).
			Build()
	}
	buf = append(buf, byte(u.Index))
	vpath := childPath(path, variant.Name)
	var err error
	for i, f := range variant.Fields {
		buf, err = encodeValue(buf, f.Type, u.Payload[i], Nested, childPath(vpath, f.Name))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeEnum(t *Type, r *reader, path []string) (Value, error) {
	idx, err := r.readByte(t, path)
	if err != nil {
		return nil, err
	}
	if int(idx) >= len(t.Variants) {
		return nil, errors.UnknownVariant(errors.PhaseDecode, path, t.String(), int(idx), len(t.Variants))
	}
	variant := &t.Variants[idx]
	out := Union{Index: int(idx), Name: variant.Name}
	if len(variant.Fields) == 0 {
		return out, nil
	}
	vpath := childPath(path, variant.Name)
	out.Payload = make([]Value, len(variant.Fields))
	for i, f := range variant.Fields {
		out.Payload[i], err = decodeNested(f.Type, r, childPath(vpath, f.Name))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
