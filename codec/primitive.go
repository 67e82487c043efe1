package codec

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/big"

	"github.com/wippyai/contract-abi/errors"
)

// Safety limits applied before allocating decoded sequences.
const (
	MaxBytesLength = 16 << 20 // 16 MiB
	MaxListLength  = 1 << 20  // 1M elements
)

// lengthPrefixSize is the width of the u32 length/count prefix in nested form.
const lengthPrefixSize = 4

func appendUint(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	u, ok := v.(Uint)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	width := t.Kind.Width()
	if width < 8 && u.V >= 1<<(8*width) {
		return nil, errors.Overflow(errors.PhaseEncode, path, u.V, t.String())
	}
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], u.V)
	if mode == Nested {
		return append(buf, full[8-width:]...), nil
	}
	return append(buf, trimUnsigned(full[8-width:])...), nil
}

func appendInt(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	i, ok := v.(Int)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	width := t.Kind.Width()
	if width < 8 {
		lim := int64(1) << (8*width - 1)
		if i.V < -lim || i.V >= lim {
			return nil, errors.Overflow(errors.PhaseEncode, path, i.V, t.String())
		}
	}
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], uint64(i.V))
	if mode == Nested {
		return append(buf, full[8-width:]...), nil
	}
	return append(buf, trimSigned(full[8-width:])...), nil
}

// trimUnsigned strips leading zero bytes; zero becomes empty.
func trimUnsigned(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}

// trimSigned strips redundant sign-extension bytes while keeping the sign
// bit of the first remaining byte equal to the value's sign.
func trimSigned(b []byte) []byte {
	for len(b) > 0 {
		switch {
		case b[0] == 0x00 && (len(b) == 1 || b[1]&0x80 == 0):
			b = b[1:]
		case b[0] == 0xff && len(b) > 1 && b[1]&0x80 != 0:
			b = b[1:]
		default:
			return b
		}
	}
	return b
}

func decodeUintTop(t *Type, data []byte, path []string) (Value, error) {
	width := t.Kind.Width()
	if len(data) > width {
		return nil, errors.Overflow(errors.PhaseDecode, path, hexPreview(data), t.String())
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return Uint{V: v}, nil
}

func decodeIntTop(t *Type, data []byte, path []string) (Value, error) {
	width := t.Kind.Width()
	if len(data) > width {
		return nil, errors.Overflow(errors.PhaseDecode, path, hexPreview(data), t.String())
	}
	return Int{V: signExtend(data)}, nil
}

func decodeUintNested(t *Type, r *reader, path []string) (Value, error) {
	data, err := r.read(t.Kind.Width(), t, path)
	if err != nil {
		return nil, err
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return Uint{V: v}, nil
}

func decodeIntNested(t *Type, r *reader, path []string) (Value, error) {
	data, err := r.read(t.Kind.Width(), t, path)
	if err != nil {
		return nil, err
	}
	return Int{V: signExtend(data)}, nil
}

func signExtend(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	var v uint64
	if data[0]&0x80 != 0 {
		v = math.MaxUint64
	}
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return int64(v)
}

func appendBool(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	b, ok := v.(Bool)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	switch {
	case bool(b):
		return append(buf, 1), nil
	case mode == Nested:
		return append(buf, 0), nil
	default:
		return buf, nil
	}
}

func boolFromByte(b byte, path []string) (Value, error) {
	switch b {
	case 0:
		return Bool(false), nil
	case 1:
		return Bool(true), nil
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(path...).
			Type("bool").
			Detail("invalid bool byte 0x%02x", b).
			Build()
	}
}

func decodeBoolTop(data []byte, path []string) (Value, error) {
	switch len(data) {
	case 0:
		return Bool(false), nil
	case 1:
		return boolFromByte(data[0], path)
	default:
		return nil, errors.Overflow(errors.PhaseDecode, path, hexPreview(data), "bool")
	}
}

func appendBytes(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if mode == Nested {
		buf = appendLength(buf, len(b))
	}
	return append(buf, b...), nil
}

func appendAddress(buf []byte, t *Type, v Value, path []string) ([]byte, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	if len(b) != AddressLength {
		return nil, errors.LengthMismatch(errors.PhaseEncode, path, t.String(), AddressLength, len(b))
	}
	return append(buf, b...), nil
}

func appendBigUint(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	b, ok := v.(BigUint)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	x := bigOrZero(b.V)
	if x.Sign() < 0 {
		return nil, errors.Overflow(errors.PhaseEncode, path, x.String(), t.String())
	}
	raw := x.Bytes()
	if mode == Nested {
		buf = appendLength(buf, len(raw))
	}
	return append(buf, raw...), nil
}

func appendBigInt(buf []byte, t *Type, v Value, mode Mode, path []string) ([]byte, error) {
	b, ok := v.(BigInt)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, t.String(), v)
	}
	raw := bigToTwos(bigOrZero(b.V))
	if mode == Nested {
		buf = appendLength(buf, len(raw))
	}
	return append(buf, raw...), nil
}

// bigToTwos returns the minimal two's complement big-endian form; zero is empty.
func bigToTwos(x *big.Int) []byte {
	switch x.Sign() {
	case 0:
		return nil
	case 1:
		raw := x.Bytes()
		if raw[0]&0x80 != 0 {
			raw = append([]byte{0}, raw...)
		}
		return raw
	}
	// -x-1 has the same magnitude bits as x's two's complement body.
	body := new(big.Int).Add(x, big.NewInt(1))
	body.Neg(body)
	n := body.BitLen()/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	mod.Add(mod, x)
	return mod.FillBytes(make([]byte, n))
}

func bigFromBytes(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}

func bigFromTwos(data []byte) *big.Int {
	v := new(big.Int).SetBytes(data)
	if len(data) > 0 && data[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(data)))
		v.Sub(v, mod)
	}
	return v
}

func appendLength(buf []byte, n int) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(n))
}

func hexPreview(data []byte) string {
	if len(data) > 16 {
		return "0x" + hex.EncodeToString(data[:16]) + "..."
	}
	return "0x" + hex.EncodeToString(data)
}
