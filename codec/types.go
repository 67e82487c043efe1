package codec

import (
	"strconv"
	"strings"

	"github.com/wippyai/contract-abi/errors"
)

// MaxVariants is the number of variants addressable by the 1-byte index.
const MaxVariants = 256

// Type describes an ABI type. Types are built once at definition time and
// are safe for concurrent use afterwards.
type Type struct {
	Elem     *Type     // Option, List, Array
	Name     string    // Struct, Enum
	Elems    []*Type   // Tuple
	Fields   []Field   // Struct
	Variants []Variant // Enum
	Len      int       // Array
	Kind     Kind
}

// Field is a named struct field or named variant payload entry.
type Field struct {
	Type *Type
	Name string
}

// Shape is the payload shape of an enum variant.
type Shape uint8

const (
	ShapeUnit Shape = iota
	ShapeTuple
	ShapeStruct
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapeTuple:
		return "tuple"
	case ShapeStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Variant describes one enum alternative. Its index is its position in
// Type.Variants. Tuple variants name their fields "0", "1", ...
type Variant struct {
	Name   string
	Fields []Field
	Shape  Shape
}

var (
	U8Type      = &Type{Kind: KindU8}
	U16Type     = &Type{Kind: KindU16}
	U32Type     = &Type{Kind: KindU32}
	U64Type     = &Type{Kind: KindU64}
	USizeType   = &Type{Kind: KindUSize}
	I8Type      = &Type{Kind: KindI8}
	I16Type     = &Type{Kind: KindI16}
	I32Type     = &Type{Kind: KindI32}
	I64Type     = &Type{Kind: KindI64}
	ISizeType   = &Type{Kind: KindISize}
	BoolType    = &Type{Kind: KindBool}
	BytesType   = &Type{Kind: KindBytes}
	BigUintType = &Type{Kind: KindBigUint}
	BigIntType  = &Type{Kind: KindBigInt}
	AddressType = &Type{Kind: KindAddress}
)

// Primitive returns the shared descriptor for a primitive kind.
func Primitive(k Kind) *Type {
	switch k {
	case KindU8:
		return U8Type
	case KindU16:
		return U16Type
	case KindU32:
		return U32Type
	case KindU64:
		return U64Type
	case KindUSize:
		return USizeType
	case KindI8:
		return I8Type
	case KindI16:
		return I16Type
	case KindI32:
		return I32Type
	case KindI64:
		return I64Type
	case KindISize:
		return ISizeType
	case KindBool:
		return BoolType
	case KindBytes:
		return BytesType
	case KindBigUint:
		return BigUintType
	case KindBigInt:
		return BigIntType
	case KindAddress:
		return AddressType
	default:
		return nil
	}
}

func OptionOf(elem *Type) *Type {
	return &Type{Kind: KindOption, Elem: elem}
}

func ListOf(elem *Type) *Type {
	return &Type{Kind: KindList, Elem: elem}
}

func ArrayOf(n int, elem *Type) *Type {
	return &Type{Kind: KindArray, Len: n, Elem: elem}
}

func TupleOf(elems ...*Type) *Type {
	return &Type{Kind: KindTuple, Elems: elems}
}

func StructOf(name string, fields ...Field) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

func EnumOf(name string, variants ...Variant) *Type {
	return &Type{Kind: KindEnum, Name: name, Variants: variants}
}

func NewField(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

func UnitVariant(name string) Variant {
	return Variant{Name: name, Shape: ShapeUnit}
}

func TupleVariant(name string, types ...*Type) Variant {
	fields := make([]Field, len(types))
	for i, t := range types {
		fields[i] = Field{Name: strconv.Itoa(i), Type: t}
	}
	return Variant{Name: name, Shape: ShapeTuple, Fields: fields}
}

func StructVariant(name string, fields ...Field) Variant {
	return Variant{Name: name, Shape: ShapeStruct, Fields: fields}
}

// VariantIndex returns the index of the named variant, or -1.
func (t *Type) VariantIndex(name string) int {
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return i
		}
	}
	return -1
}

// String renders the type in ABI type-expression syntax.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindOption:
		return "Option<" + t.Elem.String() + ">"
	case KindList:
		return "List<" + t.Elem.String() + ">"
	case KindArray:
		return "array" + strconv.Itoa(t.Len) + "<" + t.Elem.String() + ">"
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "tuple<" + strings.Join(parts, ",") + ">"
	case KindStruct, KindEnum:
		if t.Name != "" {
			return t.Name
		}
		return t.Kind.String()
	default:
		return t.Kind.String()
	}
}

// Validate checks the descriptor tree for structural problems.
func (t *Type) Validate() error {
	return t.validate(nil, make(map[*Type]bool))
}

func (t *Type) validate(path []string, visiting map[*Type]bool) error {
	if t == nil {
		return errors.InvalidData(errors.PhaseParse, path, "nil type")
	}
	if visiting[t] {
		return errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(path...).
			Type(t.String()).
			Detail("recursive type").
			Build()
	}
	visiting[t] = true
	defer delete(visiting, t)

	switch t.Kind {
	case KindOption, KindList:
		return t.Elem.validate(append(path, t.Kind.String()), visiting)
	case KindArray:
		if t.Len < 0 {
			return errors.InvalidData(errors.PhaseParse, path, "negative array length")
		}
		return t.Elem.validate(append(path, "array"), visiting)
	case KindTuple:
		for i, e := range t.Elems {
			if err := e.validate(append(path, strconv.Itoa(i)), visiting); err != nil {
				return err
			}
		}
	case KindStruct:
		for _, f := range t.Fields {
			if err := f.Type.validate(append(path, f.Name), visiting); err != nil {
				return err
			}
		}
	case KindEnum:
		if len(t.Variants) == 0 {
			return errors.InvalidData(errors.PhaseParse, path, "enum "+t.Name+" has no variants")
		}
		if len(t.Variants) > MaxVariants {
			return errors.Overflow(errors.PhaseParse, path, len(t.Variants), "u8 variant index")
		}
		for _, v := range t.Variants {
			if v.Shape == ShapeUnit && len(v.Fields) > 0 {
				return errors.InvalidData(errors.PhaseParse, append(path, v.Name), "unit variant with fields")
			}
			for _, f := range v.Fields {
				if err := f.Type.validate(append(path, v.Name, f.Name), visiting); err != nil {
					return err
				}
			}
		}
	default:
		if !t.Kind.IsPrimitive() {
			return errors.Unsupported(errors.PhaseParse, "kind "+t.Kind.String())
		}
	}
	return nil
}
