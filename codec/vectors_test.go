package codec

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	fooStruct = StructOf("Foo",
		NewField("a", U8Type),
		NewField("b", U16Type),
	)
	fooEnum = EnumOf("FooEnum",
		UnitVariant("Nothing"),
		TupleVariant("Pair", U8Type, U16Type),
		StructVariant("Named", NewField("x", U8Type)),
	)
	abiStruct2 = StructOf("MyAbiStruct2",
		NewField("field1", BigUintType),
		NewField("field2", ListOf(U32Type)),
		NewField("field3", TupleOf(BoolType, BytesType)),
	)
	abiStruct = StructOf("MyAbiStruct",
		NewField("field1", BigUintType),
		NewField("field2", ListOf(OptionOf(U32Type))),
		NewField("field3", TupleOf(BoolType, I32Type)),
	)
	abiEnum = EnumOf("MyAbiEnum",
		UnitVariant("Nothing"),
		TupleVariant("Something", U32Type),
		TupleVariant("SomethingMore", U8Type, abiStruct2),
	)
)

func abiStruct2Value() Record {
	return Record{
		{Name: "field1", Value: NewBigUint(7845)},
		{Name: "field2", Value: Seq(U(1), U(2), U(3))},
		{Name: "field3", Value: Seq(Bool(true), Bytes("TKN-abcdef"))},
	}
}

const abiStruct2Hex = "000000021ea5" +
	"00000003000000010000000200000003" +
	"01" +
	"0000000a" + "544b4e2d616263646566"

func TestEncodeNested(t *testing.T) {
	check := func(t *testing.T, typ *Type, value Value, expected string) {
		t.Helper()
		encoded, err := Encode(typ, value, Nested)
		require.NoError(t, err)
		require.Equal(t, expected, hex.EncodeToString(encoded))
	}

	t.Run("bool", func(t *testing.T) {
		check(t, BoolType, Bool(false), "00")
		check(t, BoolType, Bool(true), "01")
	})

	t.Run("u8, i8", func(t *testing.T) {
		check(t, U8Type, U(0x00), "00")
		check(t, U8Type, U(0x42), "42")
		check(t, U8Type, U(0xff), "ff")

		check(t, I8Type, I(0), "00")
		check(t, I8Type, I(-1), "ff")
		check(t, I8Type, I(-128), "80")
		check(t, I8Type, I(127), "7f")
	})

	t.Run("u16, i16", func(t *testing.T) {
		check(t, U16Type, U(0x0011), "0011")
		check(t, U16Type, U(0x1234), "1234")
		check(t, U16Type, U(0xffff), "ffff")

		check(t, I16Type, I(0x0011), "0011")
		check(t, I16Type, I(-1), "ffff")
		check(t, I16Type, I(-32768), "8000")
	})

	t.Run("u32, i32", func(t *testing.T) {
		check(t, U32Type, U(0x00000000), "00000000")
		check(t, U32Type, U(0x00112233), "00112233")
		check(t, U32Type, U(0xffffffff), "ffffffff")

		check(t, I32Type, I(-1), "ffffffff")
		check(t, I32Type, I(-2147483648), "80000000")
	})

	t.Run("u64, i64", func(t *testing.T) {
		check(t, U64Type, U(0x0000000000000011), "0000000000000011")
		check(t, U64Type, U(0x1122334455667788), "1122334455667788")
		check(t, U64Type, U(0xffffffffffffffff), "ffffffffffffffff")

		check(t, I64Type, I(0x11), "0000000000000011")
		check(t, I64Type, I(-1), "ffffffffffffffff")
	})

	t.Run("usize, isize", func(t *testing.T) {
		check(t, USizeType, U(1848), "00000738")
		check(t, ISizeType, I(-1848), "fffff8c8")
	})

	t.Run("bigInt", func(t *testing.T) {
		check(t, BigIntType, NewBigInt(0), "00000000")
		check(t, BigIntType, NewBigInt(1), "0000000101")
		check(t, BigIntType, NewBigInt(-1), "00000001ff")
		check(t, BigIntType, NewBigInt(128), "000000020080")
		check(t, BigIntType, NewBigInt(-129), "00000002ff7f")
	})

	t.Run("bigUint", func(t *testing.T) {
		check(t, BigUintType, NewBigUint(0), "00000000")
		check(t, BigUintType, NewBigUint(7845), "000000021ea5")
		check(t, BigUintType, BigUint{}, "00000000")
	})

	t.Run("address", func(t *testing.T) {
		data, _ := hex.DecodeString("0139472eff6886771a982f3083da5d421f24c29181e63888228dc81ca60d69e1")
		check(t, AddressType, Bytes(data), "0139472eff6886771a982f3083da5d421f24c29181e63888228dc81ca60d69e1")
	})

	t.Run("address (bad)", func(t *testing.T) {
		data, _ := hex.DecodeString("0139472eff6886771a982f3083da5d42")
		_, err := Encode(AddressType, Bytes(data), Nested)
		require.ErrorContains(t, err, "expected 32 bytes, got 16")
	})

	t.Run("bytes", func(t *testing.T) {
		check(t, BytesType, Bytes{}, "00000000")
		check(t, BytesType, Bytes("abc"), "00000003616263")
	})

	t.Run("struct", func(t *testing.T) {
		check(t, fooStruct, Record{
			{Name: "a", Value: U(0x01)},
			{Name: "b", Value: U(0x4142)},
		}, "014142")
	})

	t.Run("enum (unit)", func(t *testing.T) {
		check(t, fooEnum, NewUnion(0, "Nothing"), "00")
	})

	t.Run("enum with positional payload", func(t *testing.T) {
		check(t, fooEnum, NewUnion(1, "Pair", U(0x01), U(0x4142)), "01014142")
	})

	t.Run("enum with named payload", func(t *testing.T) {
		check(t, fooEnum, NewUnion(2, "Named", U(0x2a)), "022a")
	})

	t.Run("option with value", func(t *testing.T) {
		check(t, OptionOf(U16Type), Some(U(8)), "010008")
	})

	t.Run("option without value", func(t *testing.T) {
		check(t, OptionOf(U16Type), None(), "00")
	})

	t.Run("option of BigUint", func(t *testing.T) {
		check(t, OptionOf(BigUintType), Some(NewBigUint(16)), "010000000110")
	})

	t.Run("list", func(t *testing.T) {
		check(t, ListOf(U16Type), Seq(U(1), U(2), U(3)), "00000003000100020003")
		check(t, ListOf(U16Type), Seq(), "00000000")
	})

	t.Run("array", func(t *testing.T) {
		check(t, ArrayOf(5, U8Type), Seq(U(1), U(2), U(3), U(4), U(5)), "0102030405")
	})

	t.Run("tuple", func(t *testing.T) {
		check(t, TupleOf(U8Type, BytesType), Seq(U(5), Bytes("ab")), "05000000026162")
	})

	t.Run("nested struct with list and tuple", func(t *testing.T) {
		check(t, abiStruct2, abiStruct2Value(), abiStruct2Hex)
	})

	t.Run("struct with optional list items", func(t *testing.T) {
		check(t, abiStruct, Record{
			{Name: "field1", Value: NewBigUint(7845)},
			{Name: "field2", Value: Seq(None(), Some(U(1)), None())},
			{Name: "field3", Value: Seq(Bool(false), I(-1))},
		}, "000000021ea5"+"00000003"+"00"+"0100000001"+"00"+"00"+"ffffffff")
	})

	t.Run("enum carrying a struct", func(t *testing.T) {
		check(t, abiEnum, NewUnion(2, "SomethingMore", U(15), abiStruct2Value()), "020f"+abiStruct2Hex)
	})
}

func TestEncodeTopLevel(t *testing.T) {
	check := func(t *testing.T, typ *Type, value Value, expected string) {
		t.Helper()
		encoded, err := Encode(typ, value, TopLevel)
		require.NoError(t, err)
		require.Equal(t, expected, hex.EncodeToString(encoded))
	}

	t.Run("bool", func(t *testing.T) {
		check(t, BoolType, Bool(false), "")
		check(t, BoolType, Bool(true), "01")
	})

	t.Run("u8, i8", func(t *testing.T) {
		check(t, U8Type, U(0x00), "")
		check(t, U8Type, U(0x01), "01")

		check(t, I8Type, I(0x00), "")
		check(t, I8Type, I(0x01), "01")
		check(t, I8Type, I(-1), "ff")
		check(t, I8Type, I(-128), "80")
	})

	t.Run("u16, i16", func(t *testing.T) {
		check(t, U16Type, U(0x0042), "42")

		check(t, I16Type, I(0x0000), "")
		check(t, I16Type, I(0x0011), "11")
		check(t, I16Type, I(-1), "ff")
		check(t, I16Type, I(-75), "b5")
	})

	t.Run("u32, i32", func(t *testing.T) {
		check(t, U32Type, U(0x00004242), "4242")
		check(t, U32Type, U(874566), "0d5846")

		check(t, I32Type, I(0), "")
		check(t, I32Type, I(128), "0080")
		check(t, I32Type, I(-129), "ff7f")
		check(t, I32Type, I(-874566), "f2a7ba")
	})

	t.Run("u64, i64", func(t *testing.T) {
		check(t, U64Type, U(0x0042434445464748), "42434445464748")
		check(t, U64Type, U(8984584484), "021785e124")

		check(t, I64Type, I(0), "")
		check(t, I64Type, I(0x11), "11")
		check(t, I64Type, I(-1), "ff")
	})

	t.Run("usize, isize", func(t *testing.T) {
		check(t, USizeType, U(1848), "0738")
		check(t, ISizeType, I(-1848), "f8c8")
	})

	t.Run("bigInt", func(t *testing.T) {
		check(t, BigIntType, NewBigInt(0), "")
		check(t, BigIntType, NewBigInt(1), "01")
		check(t, BigIntType, NewBigInt(-1), "ff")
	})

	t.Run("bigUint", func(t *testing.T) {
		check(t, BigUintType, BigUint{V: new(big.Int).Lsh(big.NewInt(1), 64)}, "010000000000000000")
	})

	t.Run("bytes", func(t *testing.T) {
		check(t, BytesType, Bytes("WEGLD-abcdef"), "5745474c442d616263646566")
	})

	t.Run("option", func(t *testing.T) {
		check(t, OptionOf(BytesType), Some(Bytes("WEGLD-abcdef")), "5745474c442d616263646566")
		check(t, OptionOf(BytesType), None(), "")
		check(t, OptionOf(U64Type), Some(U(789)), "0315")
	})

	t.Run("list", func(t *testing.T) {
		check(t, ListOf(U16Type), Seq(U(1), U(2), U(3)), "000100020003")
	})

	t.Run("struct equals nested form", func(t *testing.T) {
		check(t, abiStruct2, abiStruct2Value(), abiStruct2Hex)
	})

	t.Run("enum keeps its index byte", func(t *testing.T) {
		check(t, fooEnum, NewUnion(0, "Nothing"), "00")
		check(t, abiEnum, NewUnion(1, "Something", U(10)), "010000000a")
	})
}

func TestDecodeVectors(t *testing.T) {
	decode := func(t *testing.T, typ *Type, data string, mode Mode) Value {
		t.Helper()
		raw, err := hex.DecodeString(data)
		require.NoError(t, err)
		v, err := Decode(typ, raw, mode)
		require.NoError(t, err)
		return v
	}

	t.Run("top-level integers", func(t *testing.T) {
		require.Equal(t, U(0), decode(t, U32Type, "", TopLevel))
		require.Equal(t, U(874566), decode(t, U32Type, "0d5846", TopLevel))
		require.Equal(t, I(-874566), decode(t, I32Type, "f2a7ba", TopLevel))
		require.Equal(t, I(128), decode(t, I32Type, "0080", TopLevel))
		require.Equal(t, I(-1848), decode(t, ISizeType, "f8c8", TopLevel))
	})

	t.Run("top-level integer with redundant leading bytes", func(t *testing.T) {
		require.Equal(t, U(1), decode(t, U32Type, "00000001", TopLevel))
		require.Equal(t, I(-1), decode(t, I16Type, "ffff", TopLevel))
	})

	t.Run("big integers", func(t *testing.T) {
		v := decode(t, BigIntType, "00000002ff7f", Nested)
		require.True(t, Equal(NewBigInt(-129), v))
		v = decode(t, BigUintType, "1ea5", TopLevel)
		require.True(t, Equal(NewBigUint(7845), v))
	})

	t.Run("top-level option", func(t *testing.T) {
		require.Equal(t, None(), decode(t, OptionOf(U64Type), "", TopLevel))
		require.Equal(t, Some(U(789)), decode(t, OptionOf(U64Type), "0315", TopLevel))
	})

	t.Run("empty top-level enum is variant 0", func(t *testing.T) {
		require.Equal(t, NewUnion(0, "Nothing"), decode(t, abiEnum, "", TopLevel))
	})

	t.Run("struct", func(t *testing.T) {
		v := decode(t, abiStruct2, abiStruct2Hex, Nested)
		require.True(t, Equal(abiStruct2Value(), v), "got %#v", v)
	})

	t.Run("enum carrying a struct", func(t *testing.T) {
		v := decode(t, abiEnum, "020f"+abiStruct2Hex, TopLevel)
		want := NewUnion(2, "SomethingMore", U(15), abiStruct2Value())
		require.True(t, Equal(want, v), "got %#v", v)
		require.Equal(t, "SomethingMore", v.(Union).Name)
	})

	t.Run("top-level list", func(t *testing.T) {
		require.Equal(t, Seq(U(1), U(2), U(3)), decode(t, ListOf(U16Type), "000100020003", TopLevel))
		require.Equal(t, Sequence{}, decode(t, ListOf(U16Type), "", TopLevel))
	})
}
