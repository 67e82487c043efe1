package abi

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// AddressHRP is the human-readable part of bech32 account addresses.
const AddressHRP = "erd"

// EncodeAddress renders a 32-byte address in bech32 form.
func EncodeAddress(raw []byte) (string, error) {
	if len(raw) != codec.AddressLength {
		return "", errors.LengthMismatch(errors.PhaseEncode, nil, "Address", codec.AddressLength, len(raw))
	}
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "convert address bits")
	}
	s, err := bech32.Encode(AddressHRP, conv)
	if err != nil {
		return "", errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "bech32 encode")
	}
	return s, nil
}

// DecodeAddress parses a bech32 address with the AddressHRP prefix.
func DecodeAddress(s string) ([]byte, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "bech32 address "+s)
	}
	if hrp != AddressHRP {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(s).
			Detail("address prefix %q, want %q", hrp, AddressHRP).
			Build()
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "bech32 address "+s)
	}
	if len(raw) != codec.AddressLength {
		return nil, errors.LengthMismatch(errors.PhaseParse, nil, "Address", codec.AddressLength, len(raw))
	}
	return raw, nil
}

func isBech32Address(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), AddressHRP+"1")
}

// addressFromString accepts bech32 or hex, with or without HexPrefix.
func addressFromString(t *codec.Type, s string, path []string) (codec.Value, error) {
	if isBech32Address(s) {
		raw, err := DecodeAddress(s)
		if err != nil {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Path(path...).
				Type(t.String()).
				Cause(err).
				Detail("invalid bech32 address").
				Build()
		}
		return codec.Bytes(raw), nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, HexPrefix))
	if err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			Type(t.String()).
			Cause(err).
			Detail("address must be bech32 or hex").
			Build()
	}
	return codec.Bytes(raw), nil
}
