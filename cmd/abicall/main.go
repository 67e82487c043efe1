// Command abicall encodes, decodes and dispatches contract calls.
//
// Without --abi it serves the built-in test contract. With --abi and
// --wasm it loads a guest contract and routes calls through the VM host.
//
//	abicall list
//	abicall call endpoint_1 4 75
//	abicall call --data endpoint_2@04@4b
//	abicall encode 'List<u16>' '[1, 2]' --nested
//	abicall decode DayOfWeek 06
//	abicall scenario testdata/test-contract.yaml --watch
//	abicall interactive
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/config"
	"github.com/wippyai/contract-abi/dispatch"
	"github.com/wippyai/contract-abi/vmhost"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	var ce *callError
	if stderrors.As(err, &ce) {
		stop()
		os.Exit(int(ce.code))
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	stop()
	os.Exit(1)
}

// app carries the state shared by all subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	configPath string
	abiPath    string
	wasmPath   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "abicall",
		Short:         "Encode, decode and dispatch contract ABI calls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to config file")
	flags.StringVar(&a.abiPath, "abi", "", "Contract ABI file (default: built-in test contract)")
	flags.StringVar(&a.wasmPath, "wasm", "", "Guest contract implementing the ABI")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newListCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newCallCmd(a),
		newScenarioCmd(a),
		newInteractiveCmd(a),
		newDemoCmd(a),
	)
	return root
}

// setup loads the config, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("abi") {
		cfg.ABI = a.abiPath
	}
	if flags.Changed("wasm") {
		cfg.Wasm = a.wasmPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	abi.SetLogger(logger.Named("abi"))
	dispatch.SetLogger(logger.Named("dispatch"))
	vmhost.SetLogger(logger.Named("vmhost"))

	a.cfg = cfg
	a.logger = logger
	return nil
}

// callError makes the process exit with the call's return code.
type callError struct {
	msg  string
	code dispatch.ReturnCode
}

func (e *callError) Error() string {
	return fmt.Sprintf("%s (%s)", e.msg, e.code)
}
