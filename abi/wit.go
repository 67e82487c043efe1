package abi

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// TypeFromWIT converts a WIT type into a codec type. Strings and list<u8>
// become bytes; records become structs; enums and variants become enums.
// Floats, chars, flags, results and resource handles are not supported.
func TypeFromWIT(t wit.Type) (*codec.Type, error) {
	return typeFromWIT(t, nil)
}

func typeFromWIT(t wit.Type, path []string) (*codec.Type, error) {
	switch tt := t.(type) {
	case wit.Bool:
		return codec.BoolType, nil
	case wit.U8:
		return codec.U8Type, nil
	case wit.S8:
		return codec.I8Type, nil
	case wit.U16:
		return codec.U16Type, nil
	case wit.S16:
		return codec.I16Type, nil
	case wit.U32:
		return codec.U32Type, nil
	case wit.S32:
		return codec.I32Type, nil
	case wit.U64:
		return codec.U64Type, nil
	case wit.S64:
		return codec.I64Type, nil
	case wit.String:
		return codec.BytesType, nil
	case *wit.TypeDef:
		return typeDefFromWIT(tt, path)
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

func typeDefFromWIT(td *wit.TypeDef, path []string) (*codec.Type, error) {
	name := ""
	if td.Name != nil {
		name = *td.Name
	}
	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]codec.Field, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := typeFromWIT(f.Type, append(append([]string{}, path...), f.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, codec.NewField(f.Name, ft))
		}
		return codec.StructOf(name, fields...), nil
	case *wit.List:
		if _, ok := kind.Type.(wit.U8); ok {
			return codec.BytesType, nil
		}
		elem, err := typeFromWIT(kind.Type, path)
		if err != nil {
			return nil, err
		}
		return codec.ListOf(elem), nil
	case *wit.Option:
		elem, err := typeFromWIT(kind.Type, path)
		if err != nil {
			return nil, err
		}
		return codec.OptionOf(elem), nil
	case *wit.Tuple:
		elems := make([]*codec.Type, len(kind.Types))
		for i, et := range kind.Types {
			var err error
			if elems[i], err = typeFromWIT(et, path); err != nil {
				return nil, err
			}
		}
		return codec.TupleOf(elems...), nil
	case *wit.Enum:
		variants := make([]codec.Variant, len(kind.Cases))
		for i, c := range kind.Cases {
			variants[i] = codec.UnitVariant(c.Name)
		}
		return codec.EnumOf(name, variants...), nil
	case *wit.Variant:
		variants := make([]codec.Variant, len(kind.Cases))
		for i, c := range kind.Cases {
			if c.Type == nil {
				variants[i] = codec.UnitVariant(c.Name)
				continue
			}
			ct, err := typeFromWIT(c.Type, append(append([]string{}, path...), c.Name))
			if err != nil {
				return nil, err
			}
			variants[i] = codec.TupleVariant(c.Name, ct)
		}
		return codec.EnumOf(name, variants...), nil
	case wit.Type:
		return typeFromWIT(kind, path)
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type definition: %T", td.Kind).
			Build()
	}
}
