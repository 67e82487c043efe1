package codec

import (
	"bytes"
	"math/big"
)

// Value is a decoded ABI value. The set of implementations is closed:
// Uint, Int, Bool, Bytes, BigUint, BigInt, Option, Sequence, Record and Union.
// The width of an integer comes from its Type, not from the Value.
type Value interface {
	isValue()
}

// Uint is an unsigned fixed-width integer.
type Uint struct{ V uint64 }

// Int is a signed fixed-width integer.
type Int struct{ V int64 }

type Bool bool

// Bytes is a byte sequence; it also carries Address blobs.
type Bytes []byte

// BigUint is an arbitrary-precision unsigned integer.
type BigUint struct{ V *big.Int }

// BigInt is an arbitrary-precision signed integer.
type BigInt struct{ V *big.Int }

// Option holds Value when present; a nil Value means absent.
type Option struct{ Value Value }

// Sequence is an ordered list of values: List, Array, Tuple and multi-value groups.
type Sequence []Value

// FieldValue is one named entry of a Record.
type FieldValue struct {
	Value Value
	Name  string
}

// Record is a struct value with fields in declared order.
type Record []FieldValue

// Union is an enum value. Payload holds the variant's values in declared
// order for both positional and named variants. Name is informational; the
// index is authoritative.
type Union struct {
	Name    string
	Payload []Value
	Index   int
}

func (Uint) isValue()     {}
func (Int) isValue()      {}
func (Bool) isValue()     {}
func (Bytes) isValue()    {}
func (BigUint) isValue()  {}
func (BigInt) isValue()   {}
func (Option) isValue()   {}
func (Sequence) isValue() {}
func (Record) isValue()   {}
func (Union) isValue()    {}

func U(v uint64) Uint { return Uint{V: v} }

func I(v int64) Int { return Int{V: v} }

func Some(v Value) Option { return Option{Value: v} }

func None() Option { return Option{} }

func Seq(vs ...Value) Sequence { return Sequence(vs) }

// NewUnion builds an enum value for the variant at index.
func NewUnion(index int, name string, payload ...Value) Union {
	return Union{Index: index, Name: name, Payload: payload}
}

func NewBigUint(v uint64) BigUint { return BigUint{V: new(big.Int).SetUint64(v)} }

func NewBigInt(v int64) BigInt { return BigInt{V: big.NewInt(v)} }

// IsSome reports whether the option holds a value.
func (o Option) IsSome() bool { return o.Value != nil }

// Field returns the value of the named record field.
func (r Record) Field(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Equal reports whether two values are structurally equal. Big integers
// compare by value and Union names are ignored in favour of indexes.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Uint:
		y, ok := b.(Uint)
		return ok && x.V == y.V
	case Int:
		y, ok := b.(Int)
		return ok && x.V == y.V
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Bytes:
		y, ok := b.(Bytes)
		return ok && bytes.Equal(x, y)
	case BigUint:
		y, ok := b.(BigUint)
		return ok && bigEqual(x.V, y.V)
	case BigInt:
		y, ok := b.(BigInt)
		return ok && bigEqual(x.V, y.V)
	case Option:
		y, ok := b.(Option)
		return ok && Equal(x.Value, y.Value)
	case Sequence:
		y, ok := b.(Sequence)
		return ok && equalSlices(x, y)
	case Record:
		y, ok := b.(Record)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i].Name != y[i].Name || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	case Union:
		y, ok := b.(Union)
		return ok && x.Index == y.Index && equalSlices(x.Payload, y.Payload)
	default:
		return false
	}
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return bigOrZero(a).Sign() == 0 && bigOrZero(b).Sign() == 0
	}
	return a.Cmp(b) == 0
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
