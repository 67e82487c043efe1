package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/contract-abi/errors"
	"github.com/wippyai/contract-abi/internal/guest"
)

const demoABI = `{
	"name": "Demo",
	"endpoints": [
		{
			"name": "echo",
			"docs": ["Returns its arguments."],
			"inputs": [
				{"name": "a", "type": "u16"},
				{"name": "rest", "type": "variadic<u32>", "multi_arg": true}
			],
			"outputs": [
				{"type": "u16"},
				{"type": "variadic<u32>", "multi_result": true}
			]
		},
		{
			"name": "check",
			"docs": ["Accepts only a == 4."],
			"inputs": [
				{"name": "a", "type": "u8"},
				{"name": "b", "type": "u16"}
			],
			"outputs": [{"type": "u8"}, {"type": "u16"}]
		},
		{
			"name": "refuse",
			"inputs": [],
			"outputs": []
		},
		{
			"name": "crash",
			"inputs": [],
			"outputs": []
		}
	]
}`

// demoExports implements demoABI.
var demoExports = []guest.Export{
	{Name: "echo", Behavior: guest.Echo},
	{Name: "check", Behavior: guest.Require, Want: 4, Message: "a failed"},
	{Name: "refuse", Behavior: guest.Reject, Message: "not today"},
	{Name: "crash", Behavior: guest.Trap},
}

func newDemoCmd(*app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo <dir>",
		Short: "Write a demo guest contract and its ABI",
		Long: `Writes demo.wasm and demo.abi.json into dir. Serve them with

  abicall --abi dir/demo.abi.json --wasm dir/demo.wasm list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			dir := argv[0]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Load("create "+dir, err)
			}
			abiPath := filepath.Join(dir, "demo.abi.json")
			wasmPath := filepath.Join(dir, "demo.wasm")
			if err := os.WriteFile(abiPath, []byte(demoABI), 0o644); err != nil {
				return errors.Load("write "+abiPath, err)
			}
			if err := os.WriteFile(wasmPath, guest.Build(demoExports...), 0o644); err != nil {
				return errors.Load("write "+wasmPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nwrote %s\n", abiPath, wasmPath)
			return nil
		},
	}
}
