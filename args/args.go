package args

import (
	"strconv"

	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// Encode maps one value per parameter onto argument slots.
//
// Single takes any value; Multi, Variadic and Counted take a
// codec.Sequence; Optional takes a codec.Option. Grouped elements are
// themselves sequences.
func Encode(params []Param, values []codec.Value) (ArgumentList, error) {
	if len(values) != len(params) {
		return nil, errors.ArgumentCountMismatch(errors.PhaseArgs,
			"expected %d values, got %d", len(params), len(values))
	}
	out := make(ArgumentList, 0, len(params))
	sawAbsent := false
	for i, p := range params {
		var err error
		switch p.Arity {
		case Single:
			out, err = appendSlot(out, p.Type, values[i])
		case Multi:
			out, err = appendGroup(out, p.Type, values[i])
		case Variadic:
			if seq, ok := values[i].(codec.Sequence); ok && len(seq) > 0 && sawAbsent {
				err = errors.InvalidInput(errors.PhaseEncode, "variadic values present after an absent optional")
				break
			}
			out, err = appendElems(out, p, values[i])
		case Counted:
			seq, ok := values[i].(codec.Sequence)
			if !ok {
				err = errors.TypeMismatch(errors.PhaseEncode, nil, p.TypeString(), values[i])
				break
			}
			out, err = appendSlot(out, codec.U32Type, codec.U(uint64(len(seq))))
			if err == nil {
				out, err = appendElems(out, p, seq)
			}
		case Optional:
			opt, ok := values[i].(codec.Option)
			if !ok {
				err = errors.TypeMismatch(errors.PhaseEncode, nil, p.TypeString(), values[i])
				break
			}
			if !opt.IsSome() {
				sawAbsent = true
				break
			}
			if sawAbsent {
				err = errors.InvalidInput(errors.PhaseEncode, "optional value present after an absent one")
				break
			}
			out, err = appendElem(out, p, opt.Value)
		default:
			err = errors.Unsupported(errors.PhaseEncode, "arity "+p.Arity.String())
		}
		if err != nil {
			return nil, encodeError(i, p.Name, err)
		}
	}
	return out, nil
}

func appendSlot(out ArgumentList, t *codec.Type, v codec.Value) (ArgumentList, error) {
	b, err := codec.Encode(t, v, codec.TopLevel)
	if err != nil {
		return nil, err
	}
	return append(out, b), nil
}

// appendGroup spreads a tuple value over one slot per item.
func appendGroup(out ArgumentList, t *codec.Type, v codec.Value) (ArgumentList, error) {
	seq, ok := v.(codec.Sequence)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, nil, t.String(), v)
	}
	if len(seq) != len(t.Elems) {
		return nil, errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Type(t.String()).
			Value(len(seq)).
			Detail("expected %d values, got %d", len(t.Elems), len(seq)).
			Build()
	}
	var err error
	for j, item := range seq {
		if out, err = appendSlot(out, t.Elems[j], item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendElem(out ArgumentList, p Param, v codec.Value) (ArgumentList, error) {
	if p.Grouped {
		return appendGroup(out, p.Type, v)
	}
	return appendSlot(out, p.Type, v)
}

func appendElems(out ArgumentList, p Param, v codec.Value) (ArgumentList, error) {
	seq, ok := v.(codec.Sequence)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, nil, p.TypeString(), v)
	}
	var err error
	for _, item := range seq {
		if out, err = appendElem(out, p, item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeError(i int, name string, cause error) error {
	kind := errors.KindOf(cause)
	if kind == "" {
		kind = errors.KindInvalidData
	}
	path := []string{argPath(i)}
	if name != "" {
		path = append(path, name)
	}
	return errors.New(errors.PhaseArgs, kind).
		Path(path...).
		Value(i).
		Cause(cause).
		Detail("cannot encode argument %d", i).
		Build()
}

func argPath(i int) string {
	return "args[" + strconv.Itoa(i) + "]"
}

// Decode maps argument slots back onto one value per parameter. Slot count
// problems fail with argument_count_mismatch; a slot that does not decode
// fails with argument_decode naming the slot index.
func Decode(params []Param, list ArgumentList) ([]codec.Value, error) {
	minimum := 0
	for _, p := range params {
		minimum += p.minSlots()
	}
	if len(list) < minimum {
		return nil, errors.ArgumentCountMismatch(errors.PhaseArgs,
			"expected at least %d arguments, got %d", minimum, len(list))
	}

	d := &slotDecoder{list: list}
	out := make([]codec.Value, len(params))
	for i, p := range params {
		v, err := d.param(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	if d.pos != len(list) {
		return nil, errors.ArgumentCountMismatch(errors.PhaseArgs,
			"expected %d arguments, got %d", d.pos, len(list))
	}
	return out, nil
}

type slotDecoder struct {
	list ArgumentList
	pos  int
}

func (d *slotDecoder) remaining() int { return len(d.list) - d.pos }

func (d *slotDecoder) slot(t *codec.Type, name string) (codec.Value, error) {
	if d.pos >= len(d.list) {
		return nil, errors.ArgumentCountMismatch(errors.PhaseArgs,
			"missing argument %d (%s)", d.pos, name)
	}
	v, err := codec.Decode(t, d.list[d.pos], codec.TopLevel)
	if err != nil {
		return nil, errors.ArgumentDecode(d.pos, name, err)
	}
	d.pos++
	return v, nil
}

func (d *slotDecoder) group(t *codec.Type, name string) (codec.Value, error) {
	seq := make(codec.Sequence, len(t.Elems))
	for j, et := range t.Elems {
		v, err := d.slot(et, name)
		if err != nil {
			return nil, err
		}
		seq[j] = v
	}
	return seq, nil
}

func (d *slotDecoder) elem(p Param) (codec.Value, error) {
	if p.Grouped {
		return d.group(p.Type, p.Name)
	}
	return d.slot(p.Type, p.Name)
}

func (d *slotDecoder) elems(p Param, n int) (codec.Value, error) {
	seq := make(codec.Sequence, 0, n)
	for k := 0; k < n; k++ {
		v, err := d.elem(p)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

func (d *slotDecoder) param(p Param) (codec.Value, error) {
	switch p.Arity {
	case Single:
		return d.slot(p.Type, p.Name)
	case Multi:
		return d.group(p.Type, p.Name)
	case Variadic:
		per := p.slotsPerElem()
		if per == 0 || d.remaining()%per != 0 {
			return nil, errors.ArgumentCountMismatch(errors.PhaseArgs,
				"%d trailing arguments do not fill groups of %d", d.remaining(), per)
		}
		return d.elems(p, d.remaining()/per)
	case Optional:
		if d.remaining() == 0 {
			return codec.None(), nil
		}
		v, err := d.elem(p)
		if err != nil {
			return nil, err
		}
		return codec.Some(v), nil
	case Counted:
		countAt := d.pos
		cv, err := d.slot(codec.U32Type, p.Name)
		if err != nil {
			return nil, err
		}
		n := int(cv.(codec.Uint).V)
		if n*p.slotsPerElem() > d.remaining() {
			return nil, errors.ArgumentCountMismatch(errors.PhaseArgs,
				"count at argument %d is %d but only %d arguments follow", countAt, n, d.remaining())
		}
		return d.elems(p, n)
	default:
		return nil, errors.Unsupported(errors.PhaseArgs, "arity "+p.Arity.String())
	}
}
