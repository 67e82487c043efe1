// Package codec implements the two-mode binary encoding used for contract
// call arguments and results.
//
// Every value has two encodings. The TopLevel form fills one whole argument
// or result slot, so its length is implied by the slot. The Nested form is
// used inside other values and is self-delimiting.
//
// # Encoding Rules
//
//	Type            Nested                          TopLevel
//	─────────────────────────────────────────────────────────────────────
//	u8..u64, usize  full big-endian width           minimal big-endian, 0 = empty
//	i8..i64, isize  full two's complement width     minimal two's complement
//	bool            00 / 01                         empty / 01
//	bytes           u32 length + bytes              raw bytes
//	BigUint/BigInt  u32 length + minimal bytes      minimal bytes
//	Address         32 raw bytes                    32 raw bytes
//	Option<T>       00 | 01 + nested T              empty | top-level T
//	List<T>         u32 count + nested elements     nested elements
//	arrayN, tuple   nested elements                 nested elements
//	struct          nested fields in order          same as nested
//	enum            u8 index + nested payload       same as nested
//
// usize and isize are 4 bytes wide, matching the wasm32 contract target.
//
// A top-level Option holding a value whose own top-level form is empty
// cannot be told apart from an absent Option. Both decode as absent.
//
// An empty top-level buffer decodes as variant 0 of an enum whose first
// variant carries no payload. Encoding always writes the index byte.
//
// # Types and Values
//
// A Type is a descriptor built once (directly or from an ABI document) and
// shared freely. A Value is one of Uint, Int, Bool, Bytes, BigUint, BigInt,
// Option, Sequence, Record or Union. Integer values carry no width; the
// Type supplies it.
//
//	t := codec.StructOf("Payment",
//		codec.NewField("token", codec.BytesType),
//		codec.NewField("nonce", codec.U64Type),
//		codec.NewField("amount", codec.BigUintType),
//	)
//	data, err := codec.Encode(t, codec.Record{
//		{Name: "token", Value: codec.Bytes("WEGLD-abcdef")},
//		{Name: "nonce", Value: codec.U(0)},
//		{Name: "amount", Value: codec.NewBigUint(89784651)},
//	}, codec.Nested)
//
// # Errors
//
// Failures are *errors.Error values with PhaseEncode or PhaseDecode:
//
//	length_mismatch  - a buffer too short, too long, or with trailing bytes
//	overflow         - a value wider than its type, or a size over the limits
//	unknown_variant  - an enum index outside the declared variants
//	invalid_data     - a malformed bool or option discriminant
//	type_mismatch    - a Value of the wrong shape for the Type
//
// Nested length prefixes are checked against MaxBytesLength and
// MaxListLength before anything is allocated.
package codec
