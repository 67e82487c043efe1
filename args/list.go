package args

import (
	"encoding/hex"
	"strings"

	"github.com/wippyai/contract-abi/errors"
)

// ArgumentList is the ordered set of argument or result slots of one call.
// Each slot holds one TopLevel-encoded buffer.
type ArgumentList [][]byte

// Hex returns the slots as lowercase hex strings.
func (l ArgumentList) Hex() []string {
	out := make([]string, len(l))
	for i, b := range l {
		out[i] = hex.EncodeToString(b)
	}
	return out
}

// Clone returns a deep copy of the list.
func (l ArgumentList) Clone() ArgumentList {
	out := make(ArgumentList, len(l))
	for i, b := range l {
		out[i] = append([]byte{}, b...)
	}
	return out
}

// ParseHex builds a list from hex-encoded slots. An empty string is an
// empty slot.
func ParseHex(slots []string) (ArgumentList, error) {
	out := make(ArgumentList, len(slots))
	for i, s := range slots {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(argPath(i)).
				Cause(err).
				Detail("slot %d is not valid hex", i).
				Build()
		}
		out[i] = b
	}
	return out, nil
}

// FormatCallData renders a call as "name@hex@hex...".
func FormatCallData(name string, list ArgumentList) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, h := range list.Hex() {
		sb.WriteByte('@')
		sb.WriteString(h)
	}
	return sb.String()
}

// ParseCallData splits "name@hex@hex..." into the endpoint name and slots.
func ParseCallData(data string) (string, ArgumentList, error) {
	parts := strings.Split(data, "@")
	if parts[0] == "" {
		return "", nil, errors.InvalidInput(errors.PhaseParse, "call data has no endpoint name")
	}
	list, err := ParseHex(parts[1:])
	if err != nil {
		return "", nil, err
	}
	return parts[0], list, nil
}
