package codec

import (
	"strconv"

	"github.com/wippyai/contract-abi/errors"
)

// Encode serializes v as type t in the given mode.
func Encode(t *Type, v Value, mode Mode) ([]byte, error) {
	scratch := getBuf()
	defer putBuf(scratch)

	out, err := encodeValue((*scratch)[:0], t, v, mode, nil)
	if err != nil {
		return nil, err
	}
	*scratch = out
	res := make([]byte, len(out))
	copy(res, out)
	return res, nil
}

// AppendEncode appends the encoding of v to buf.
func AppendEncode(buf []byte, t *Type, v Value, mode Mode) ([]byte, error) {
	return encodeValue(buf, t, v, mode, nil)
}

// Decode parses data as type t in the given mode. The whole buffer must be
// consumed; leftover bytes fail with a length mismatch.
func Decode(t *Type, data []byte, mode Mode) (Value, error) {
	if mode == TopLevel {
		return decodeTop(t, data, nil)
	}
	r := &reader{data: data}
	v, err := decodeNested(t, r, nil)
	if err != nil {
		return nil, err
	}
	if err := r.done(t, nil); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeNested parses one nested value from the front of data and returns
// the unread remainder.
func DecodeNested(t *Type, data []byte) (Value, []byte, error) {
	r := &reader{data: data}
	v, err := decodeNested(t, r, nil)
	if err != nil {
		return nil, nil, err
	}
	return v, r.data[r.off:], nil
}

// reader walks a nested buffer front to back.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) read(n int, t *Type, path []string) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
			Path(path...).
			Type(t.String()).
			Value(r.remaining()).
			Detail("cannot read exactly %d bytes, %d left", n, r.remaining()).
			Build()
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) readByte(t *Type, path []string) (byte, error) {
	b, err := r.read(1, t, path)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readLength(t *Type, path []string) (int, error) {
	b, err := r.read(lengthPrefixSize, t, path)
	if err != nil {
		return 0, err
	}
	return int(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

func (r *reader) done(t *Type, path []string) error {
	if n := r.remaining(); n > 0 {
		return errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
			Path(path...).
			Type(t.String()).
			Value(n).
			Detail("%d trailing bytes after %s", n, t.String()).
			Build()
	}
	return nil
}

func childPath(path []string, elem string) []string {
	return append(append([]string{}, path...), elem)
}

func indexPath(path []string, i int) []string {
	return childPath(path, "["+strconv.Itoa(i)+"]")
}

func encodeValue(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	if t == nil {
		return nil, errors.InvalidData(errors.PhaseEncode, path, "nil type")
	}
	if v == nil {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64, KindUSize:
		return appendUint(buf, t, v, mode, path)
	case KindI8, KindI16, KindI32, KindI64, KindISize:
		return appendInt(buf, t, v, mode, path)
	case KindBool:
		return appendBool(buf, t, v, mode, path)
	case KindBytes:
		return appendBytes(buf, t, v, mode, path)
	case KindBigUint:
		return appendBigUint(buf, t, v, mode, path)
	case KindBigInt:
		return appendBigInt(buf, t, v, mode, path)
	case KindAddress:
		return appendAddress(buf, t, v, path)
	case KindOption:
		return appendOption(buf, t, v, mode, path)
	case KindList:
		return appendList(buf, t, v, mode, path)
	case KindArray:
		return appendArray(buf, t, v, path)
	case KindTuple:
		return appendTuple(buf, t, v, path)
	case KindStruct:
		return appendStruct(buf, t, v, path)
	case KindEnum:
		return appendEnum(buf, t, v, path)
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, "kind "+t.Kind.String())
	}
}

func decodeTop(t *Type, data []byte, path []string) (Value, error) {
	if t == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, path, "nil type")
	}
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64, KindUSize:
		return decodeUintTop(t, data, path)
	case KindI8, KindI16, KindI32, KindI64, KindISize:
		return decodeIntTop(t, data, path)
	case KindBool:
		return decodeBoolTop(data, path)
	case KindBytes:
		if len(data) > MaxBytesLength {
			return nil, errors.Overflow(errors.PhaseDecode, path, len(data), "max bytes length")
		}
		return Bytes(append([]byte{}, data...)), nil
	case KindBigUint:
		return BigUint{V: bigFromBytes(data)}, nil
	case KindBigInt:
		return BigInt{V: bigFromTwos(data)}, nil
	case KindAddress:
		if len(data) != AddressLength {
			return nil, errors.LengthMismatch(errors.PhaseDecode, path, t.String(), AddressLength, len(data))
		}
		return Bytes(append([]byte{}, data...)), nil
	case KindOption:
		return decodeOptionTop(t, data, path)
	case KindList:
		return decodeListTop(t, data, path)
	case KindEnum:
		if len(data) == 0 && len(t.Variants) > 0 && t.Variants[0].Shape == ShapeUnit {
			return Union{Index: 0, Name: t.Variants[0].Name}, nil
		}
	}
	// Array, tuple, struct and non-empty enum share their nested form.
	r := &reader{data: data}
	v, err := decodeNested(t, r, path)
	if err != nil {
		return nil, err
	}
	if err := r.done(t, path); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeNested(t *Type, r *reader, path []string) (Value, error) {
	if t == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, path, "nil type")
	}
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64, KindUSize:
		return decodeUintNested(t, r, path)
	case KindI8, KindI16, KindI32, KindI64, KindISize:
		return decodeIntNested(t, r, path)
	case KindBool:
		b, err := r.readByte(t, path)
		if err != nil {
			return nil, err
		}
		return boolFromByte(b, path)
	case KindBytes, KindBigUint, KindBigInt:
		return decodeSizedNested(t, r, path)
	case KindAddress:
		b, err := r.read(AddressLength, t, path)
		if err != nil {
			return nil, err
		}
		return Bytes(append([]byte{}, b...)), nil
	case KindOption:
		return decodeOptionNested(t, r, path)
	case KindList:
		return decodeListNested(t, r, path)
	case KindArray:
		return decodeElems(r, t.Len, func(int) *Type { return t.Elem }, path)
	case KindTuple:
		return decodeElems(r, len(t.Elems), func(i int) *Type { return t.Elems[i] }, path)
	case KindStruct:
		return decodeStruct(t, r, path)
	case KindEnum:
		return decodeEnum(t, r, path)
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "kind "+t.Kind.String())
	}
}

// decodeSizedNested reads a length-prefixed byte payload.
func decodeSizedNested(t *Type, r *reader, path []string) (Value, error) {
	n, err := r.readLength(t, path)
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLength {
		return nil, errors.Overflow(errors.PhaseDecode, path, n, "max bytes length")
	}
	raw, err := r.read(n, t, path)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindBigUint:
		return BigUint{V: bigFromBytes(raw)}, nil
	case KindBigInt:
		return BigInt{V: bigFromTwos(raw)}, nil
	default:
		return Bytes(append([]byte{}, raw...)), nil
	}
}
