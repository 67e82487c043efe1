// Package testcontract is the fixture contract used to pin the codec's
// behavior. Each endpoint accepts exactly one set of inputs, checks them
// with dispatch.Require and echoes them back.
package testcontract

import (
	"context"
	_ "embed"
	"encoding/hex"
	"sync"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/dispatch"
)

//go:embed test-contract.abi.json
var abiJSON []byte

const (
	TokenIdentifier  = "WEGLD-abcdef"
	TokenIdentifier2 = "MEX-abcdef"
	HexAddress       = "000000000000000005004d4e468a6785c67dcf63611a05266562ba913638aa59"
	Bech32Address    = "erd1qqqqqqqqqqqqqpgqf48ydzn8shr8mnmrvydq2fn9v2afzd3c4fvsk4wglm"
)

var (
	defOnce sync.Once
	def     *abi.Definition
	defErr  error
)

// ABI returns the raw ABI document of the contract.
func ABI() []byte {
	return abiJSON
}

// Definition returns the parsed ABI. It is parsed once and shared.
func Definition() (*abi.Definition, error) {
	defOnce.Do(func() {
		def, defErr = abi.Parse(abiJSON)
	})
	return def, defErr
}

// Register binds every endpoint of the contract into reg.
func Register(reg *dispatch.Registry) error {
	d, err := Definition()
	if err != nil {
		return err
	}
	return reg.RegisterABI(d, Handlers())
}

// NewDispatcher builds a dispatcher serving the contract.
func NewDispatcher(opts ...dispatch.Option) (*dispatch.Dispatcher, error) {
	reg := dispatch.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return dispatch.NewDispatcher(reg, opts...)
}

// Handlers returns the endpoint implementations keyed by name.
func Handlers() map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		"endpoint_0":     endpoint0,
		"endpoint_1":     endpoint1,
		"endpoint_2":     endpoint2,
		"endpoint_3":     endpoint3,
		"endpoint_4":     endpoint4,
		"endpoint_5":     endpoint5,
		"endpoint_5_bis": endpoint5Bis,
		"endpoint_6":     endpoint6,
		"endpoint_7":     endpoint7,
		"endpoint_8":     endpoint8,
	}
}

// requireAll checks each input against its expected value in order and
// rejects with "<name> failed" at the first mismatch.
func requireAll(names string, in, want []codec.Value) error {
	for i := range want {
		if err := dispatch.Require(codec.Equal(in[i], want[i]), names[i:i+1]+" failed"); err != nil {
			return err
		}
	}
	return nil
}

func endpoint0(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	if _, ok := in[0].(codec.Record).Field("uint_32"); !ok {
		return nil, dispatch.Reject("a failed")
	}
	return nil, nil
}

func endpoint1(context.Context, []codec.Value) ([]codec.Value, error) {
	return nil, nil
}

func endpoint2(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{codec.U(4), codec.U(75), codec.U(874566), codec.U(8984584484), codec.U(1848)}
	if err := requireAll("abcde", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint3(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{codec.I(-4), codec.I(-75), codec.I(-874566), codec.I(8984584484), codec.I(-1848)}
	if err := requireAll("abcde", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint4(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{codec.Bytes(TokenIdentifier), Address()}
	if err := requireAll("ab", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint5(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{codec.Some(codec.Bytes(TokenIdentifier)), codec.None()}
	if err := requireAll("ab", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint5Bis(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{codec.Some(codec.Bytes(TokenIdentifier)), codec.Some(codec.U(789))}
	if err := requireAll("ab", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint6(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{codec.U(7846), codec.Seq(codec.U(1), codec.U(2), codec.U(3))}
	if err := requireAll("ab", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint7(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	want := []codec.Value{
		Monday(),
		Sunday(),
		codec.NewUnion(0, "Default"),
		codec.NewUnion(1, "Today", codec.NewUnion(1, "Tuesday")),
		codec.NewUnion(2, "Write", u8Seq(1, 2, 4, 8), codec.U(14)),
		StructVariant(8, u8Seq(9, 45), 0, 789484, 485),
	}
	if err := requireAll("abcdef", in, want); err != nil {
		return nil, err
	}
	return in, nil
}

func endpoint8(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	payments, _ := in[0].(codec.Sequence)
	if err := dispatch.Require(len(payments) == 2, "Wrong payments number"); err != nil {
		return nil, err
	}
	if err := dispatch.Require(codec.Equal(payments[0], Payment(TokenIdentifier, 0, 89784651)), "Wrong first payment"); err != nil {
		return nil, err
	}
	if err := dispatch.Require(codec.Equal(payments[1], Payment(TokenIdentifier2, 0, 184791484)), "Wrong second payment"); err != nil {
		return nil, err
	}
	return in, nil
}

// Address returns the fixture address as a 32-byte value.
func Address() codec.Bytes {
	b, _ := hex.DecodeString(HexAddress)
	return codec.Bytes(b)
}

func Monday() codec.Union { return codec.NewUnion(0, "Monday") }

func Sunday() codec.Union { return codec.NewUnion(6, "Sunday") }

// StructVariant builds EnumWithEverything::Struct.
func StructVariant(i uint64, seq codec.Sequence, anotherByte, u32, u64 uint64) codec.Union {
	return codec.NewUnion(3, "Struct", codec.U(i), seq, codec.U(anotherByte), codec.U(u32), codec.U(u64))
}

// Payment builds an EsdtTokenPayment record.
func Payment(token string, nonce, amount uint64) codec.Record {
	return codec.Record{
		{Name: "token_identifier", Value: codec.Bytes(token)},
		{Name: "token_nonce", Value: codec.U(nonce)},
		{Name: "amount", Value: codec.NewBigUint(amount)},
	}
}

func u8Seq(bs ...uint64) codec.Sequence {
	out := make(codec.Sequence, len(bs))
	for i, b := range bs {
		out[i] = codec.U(b)
	}
	return out
}
