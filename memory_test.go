package contractabi_test

import (
	"github.com/tetratelabs/wazero/api"

	contractabi "github.com/wippyai/contract-abi"
)

// wazero's guest memory is what vmhost hands to its hooks.
var _ contractabi.Memory = api.Memory(nil)
