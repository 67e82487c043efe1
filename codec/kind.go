package codec

// Kind identifies the shape of an ABI type.
type Kind uint8

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindUSize
	KindI8
	KindI16
	KindI32
	KindI64
	KindISize
	KindBool
	KindBytes
	KindBigUint
	KindBigInt
	KindAddress
	KindOption
	KindList
	KindArray
	KindTuple
	KindStruct
	KindEnum
)

var kindNames = [...]string{
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindUSize:   "usize",
	KindI8:      "i8",
	KindI16:     "i16",
	KindI32:     "i32",
	KindI64:     "i64",
	KindISize:   "isize",
	KindBool:    "bool",
	KindBytes:   "bytes",
	KindBigUint: "BigUint",
	KindBigInt:  "BigInt",
	KindAddress: "Address",
	KindOption:  "Option",
	KindList:    "List",
	KindArray:   "array",
	KindTuple:   "tuple",
	KindStruct:  "struct",
	KindEnum:    "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// AddressLength is the size of the opaque address blob.
const AddressLength = 32

// SizeWidth is the byte width of usize/isize on the wasm32 contract target.
const SizeWidth = 4

func (k Kind) IsUnsigned() bool {
	return k <= KindUSize
}

func (k Kind) IsSigned() bool {
	return k >= KindI8 && k <= KindISize
}

func (k Kind) IsInteger() bool {
	return k <= KindISize
}

func (k Kind) IsPrimitive() bool {
	return k <= KindAddress
}

// Width returns the fixed byte width of an integer kind, or 0 for other kinds.
func (k Kind) Width() int {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32:
		return 4
	case KindUSize, KindISize:
		return SizeWidth
	case KindU64, KindI64:
		return 8
	default:
		return 0
	}
}
