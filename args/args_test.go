package args

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

func hexList(t *testing.T, slots ...string) ArgumentList {
	t.Helper()
	l, err := ParseHex(slots)
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	return l
}

func TestEncodeSingle(t *testing.T) {
	params := []Param{
		NewParam("a", codec.U8Type),
		NewParam("b", codec.U16Type),
		NewParam("c", codec.U32Type),
		NewParam("d", codec.U64Type),
		NewParam("e", codec.USizeType),
	}
	values := []codec.Value{codec.U(4), codec.U(75), codec.U(874566), codec.U(8984584484), codec.U(1848)}

	got, err := Encode(params, values)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []string{"04", "4b", "0d5846", "021785e124", "0738"}
	if diff := cmp.Diff(want, got.Hex()); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}

	back, err := Decode(params, got)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i := range values {
		if !codec.Equal(values[i], back[i]) {
			t.Errorf("value %d: got %#v, want %#v", i, back[i], values[i])
		}
	}
}

func TestVariadic(t *testing.T) {
	params := []Param{
		NewParam("a", codec.U32Type),
		{Name: "b", Type: codec.U32Type, Arity: Variadic},
	}

	tests := []struct {
		name  string
		slots []string
		want  codec.Sequence
	}{
		{"none", []string{"1ea6"}, codec.Seq()},
		{"one", []string{"1ea6", "01"}, codec.Seq(codec.U(1))},
		{"three", []string{"1ea6", "01", "02", "03"}, codec.Seq(codec.U(1), codec.U(2), codec.U(3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals, err := Decode(params, hexList(t, tt.slots...))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if vals[0].(codec.Uint).V != 7846 {
				t.Errorf("a = %v", vals[0])
			}
			if !codec.Equal(tt.want, vals[1]) {
				t.Errorf("b = %#v, want %#v", vals[1], tt.want)
			}

			again, err := Encode(params, vals)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if diff := cmp.Diff(tt.slots, again.Hex()); diff != "" {
				t.Errorf("re-encode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVariadicGrouped(t *testing.T) {
	payment := codec.TupleOf(codec.BytesType, codec.U64Type, codec.BigUintType)
	params := []Param{{Name: "payments", Type: payment, Arity: Variadic, Grouped: true}}

	list := hexList(t, "5745474c", "", "055a014b", "4d4558", "", "0b03b1bc")
	vals, err := Decode(params, list)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	seq := vals[0].(codec.Sequence)
	if len(seq) != 2 {
		t.Fatalf("got %d groups, want 2", len(seq))
	}
	first := seq[0].(codec.Sequence)
	if string(first[0].(codec.Bytes)) != "WEGL" {
		t.Errorf("token = %q", first[0])
	}
	if !codec.Equal(codec.NewBigUint(89784651), first[2]) {
		t.Errorf("amount = %v", first[2])
	}

	_, err = Decode(params, list[:4])
	if errors.KindOf(err) != errors.KindArgumentCountMismatch {
		t.Errorf("partial group: got %v", err)
	}
}

func TestOptional(t *testing.T) {
	params := []Param{
		NewParam("a", codec.OptionOf(codec.BytesType)),
		{Name: "b", Type: codec.U64Type, Arity: Optional},
	}

	absent, err := Encode(params, []codec.Value{codec.Some(codec.Bytes("WEGLD-abcdef")), codec.None()})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(absent) != 1 {
		t.Fatalf("absent optional should produce no slot, got %d slots", len(absent))
	}
	vals, err := Decode(params, absent)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if vals[1].(codec.Option).IsSome() {
		t.Error("b should be absent")
	}

	present, err := Encode(params, []codec.Value{codec.Some(codec.Bytes("WEGLD-abcdef")), codec.Some(codec.U(789))})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if diff := cmp.Diff([]string{"5745474c442d616263646566", "0315"}, present.Hex()); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
	vals, err = Decode(params, present)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !codec.Equal(codec.Some(codec.U(789)), vals[1]) {
		t.Errorf("b = %#v", vals[1])
	}
}

func TestOptionalOrdering(t *testing.T) {
	params := []Param{
		{Name: "a", Type: codec.U8Type, Arity: Optional},
		{Name: "b", Type: codec.U8Type, Arity: Optional},
	}
	_, err := Encode(params, []codec.Value{codec.None(), codec.Some(codec.U(1))})
	if err == nil {
		t.Fatal("expected error for present optional after absent one")
	}
}

func TestMulti(t *testing.T) {
	params := []Param{{Name: "pair", Type: codec.TupleOf(codec.U8Type, codec.I16Type), Arity: Multi}}
	list, err := Encode(params, []codec.Value{codec.Seq(codec.U(4), codec.I(-75))})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if diff := cmp.Diff([]string{"04", "b5"}, list.Hex()); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
	vals, err := Decode(params, list)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !codec.Equal(codec.Seq(codec.U(4), codec.I(-75)), vals[0]) {
		t.Errorf("got %#v", vals[0])
	}
}

func TestCounted(t *testing.T) {
	params := []Param{
		{Name: "items", Type: codec.U8Type, Arity: Counted},
		NewParam("tail", codec.U8Type),
	}
	list, err := Encode(params, []codec.Value{codec.Seq(codec.U(7), codec.U(8)), codec.U(9)})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if diff := cmp.Diff([]string{"02", "07", "08", "09"}, list.Hex()); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
	vals, err := Decode(params, list)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !codec.Equal(codec.Seq(codec.U(7), codec.U(8)), vals[0]) || !codec.Equal(codec.U(9), vals[1]) {
		t.Errorf("got %#v", vals)
	}

	_, err = Decode(params, hexList(t, "05", "01", "02"))
	if errors.KindOf(err) != errors.KindArgumentCountMismatch {
		t.Errorf("short count: got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	params := []Param{
		NewParam("a", codec.U8Type),
		NewParam("b", codec.U16Type),
	}

	tests := []struct {
		name  string
		slots []string
		kind  errors.Kind
		path  string
	}{
		{"too few", []string{"04"}, errors.KindArgumentCountMismatch, ""},
		{"too many", []string{"04", "4b", "00"}, errors.KindArgumentCountMismatch, ""},
		{"slot overflow", []string{"04", "010203"}, errors.KindArgumentDecode, "args[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(params, hexList(t, tt.slots...))
			if got := errors.KindOf(err); got != tt.kind {
				t.Fatalf("kind = %q, want %q (%v)", got, tt.kind, err)
			}
			if tt.path == "" {
				return
			}
			e := err.(*errors.Error)
			if e.Path[0] != tt.path {
				t.Errorf("path = %v, want %s", e.Path, tt.path)
			}
			if errors.KindOf(e.Cause) != errors.KindOverflow {
				t.Errorf("cause = %v, want overflow", e.Cause)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	params := []Param{NewParam("a", codec.U8Type)}
	if _, err := Encode(params, nil); errors.KindOf(err) != errors.KindArgumentCountMismatch {
		t.Errorf("missing value: got %v", err)
	}
	_, err := Encode(params, []codec.Value{codec.U(300)})
	if errors.KindOf(err) != errors.KindOverflow {
		t.Errorf("overflow: got %v", err)
	}
	if e, ok := err.(*errors.Error); !ok || e.Path[0] != "args[0]" {
		t.Errorf("path: got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		ok     bool
	}{
		{"single", []Param{NewParam("a", codec.U8Type)}, true},
		{"variadic last", []Param{NewParam("a", codec.U8Type), {Name: "b", Type: codec.U8Type, Arity: Variadic}}, true},
		{"variadic not last", []Param{{Name: "b", Type: codec.U8Type, Arity: Variadic}, NewParam("a", codec.U8Type)}, false},
		{"optional then variadic", []Param{{Name: "a", Type: codec.U8Type, Arity: Optional}, {Name: "b", Type: codec.U8Type, Arity: Variadic}}, true},
		{"optional then single", []Param{{Name: "a", Type: codec.U8Type, Arity: Optional}, NewParam("b", codec.U8Type)}, false},
		{"multi needs tuple", []Param{{Name: "a", Type: codec.U8Type, Arity: Multi}}, false},
		{"grouped single", []Param{{Name: "a", Type: codec.TupleOf(codec.U8Type), Arity: Single, Grouped: true}}, false},
		{"empty multi", []Param{{Name: "a", Type: codec.TupleOf(), Arity: Multi}}, false},
		{"empty counted group", []Param{{Name: "a", Type: codec.TupleOf(), Arity: Counted, Grouped: true}}, false},
		{"missing type", []Param{{Name: "a"}}, false},
		{"bad type", []Param{NewParam("a", codec.EnumOf("Empty"))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.params)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCallData(t *testing.T) {
	name, list, err := ParseCallData("endpoint_2@04@4b@@0738")
	if err != nil {
		t.Fatalf("ParseCallData failed: %v", err)
	}
	if name != "endpoint_2" {
		t.Errorf("name = %q", name)
	}
	if diff := cmp.Diff([]string{"04", "4b", "", "0738"}, list.Hex()); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
	if got := FormatCallData(name, list); got != "endpoint_2@04@4b@@0738" {
		t.Errorf("FormatCallData = %q", got)
	}

	if _, _, err := ParseCallData("@04"); err == nil {
		t.Error("expected error for missing name")
	}
	if _, _, err := ParseCallData("f@zz"); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("bad hex: got %v", err)
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		p    Param
		want string
	}{
		{NewParam("a", codec.U8Type), "u8"},
		{Param{Type: codec.U32Type, Arity: Variadic}, "variadic<u32>"},
		{Param{Type: codec.U64Type, Arity: Optional}, "optional<u64>"},
		{Param{Type: codec.TupleOf(codec.U8Type, codec.BytesType), Arity: Multi}, "multi<u8,bytes>"},
		{Param{Type: codec.TupleOf(codec.U8Type, codec.U16Type), Arity: Variadic, Grouped: true}, "variadic<multi<u8,u16>>"},
		{Param{Type: codec.U8Type, Arity: Counted}, "counted-variadic<u8>"},
	}
	for _, tt := range tests {
		if got := tt.p.TypeString(); got != tt.want {
			t.Errorf("TypeString = %q, want %q", got, tt.want)
		}
	}
}

func TestClone(t *testing.T) {
	l := ArgumentList{{1, 2}}
	c := l.Clone()
	c[0][0] = 9
	if l[0][0] != 1 {
		t.Error("Clone should not share buffers")
	}
}
