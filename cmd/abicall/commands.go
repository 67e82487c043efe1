package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.bytecodealliance.org/wit"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/dispatch"
	"github.com/wippyai/contract-abi/errors"
	"github.com/wippyai/contract-abi/scenario"
)

func newListCmd(a *app) *cobra.Command {
	var showTypes bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the contract's endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Contract: %s\n", s.source)
			if s.def.Name != "" {
				fmt.Fprintf(w, "Name: %s\n", s.def.Name)
			}
			fmt.Fprintf(w, "\nEndpoints:\n")
			for _, ep := range s.def.Endpoints {
				fmt.Fprintf(w, "  %s\n", ep.Signature())
			}
			if showTypes && len(s.def.Types) > 0 {
				names := make([]string, 0, len(s.def.Types))
				for name := range s.def.Types {
					names = append(names, name)
				}
				slices.Sort(names)
				fmt.Fprintf(w, "\nTypes:\n")
				for _, name := range names {
					fmt.Fprintf(w, "  %s %s\n", s.def.Types[name].Kind, name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTypes, "types", false, "Also list custom types")
	return cmd
}

func newEncodeCmd(a *app) *cobra.Command {
	var nested, witType bool
	cmd := &cobra.Command{
		Use:   "encode <type> <value>",
		Short: "Encode a YAML value as hex",
		Long: `Encodes one value of the given ABI type. The value is YAML: numbers,
strings, lists and maps. Byte values accept "hex:" prefixed strings.
With --wit the type is a WIT primitive such as u32, s64 or string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			t, err := s.resolveType(argv[0], witType)
			if err != nil {
				return err
			}
			native, err := parseNative(argv[1])
			if err != nil {
				return err
			}
			v, err := abi.FromNative(t, native)
			if err != nil {
				return err
			}
			data, err := codec.Encode(t, v, modeOf(nested))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%x\n", data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&nested, "nested", false, "Use the nested encoding")
	cmd.Flags().BoolVar(&witType, "wit", false, "Read the type as a WIT type")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var nested, witType bool
	cmd := &cobra.Command{
		Use:   "decode <type> <hex>",
		Short: "Decode hex into a YAML value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			t, err := s.resolveType(argv[0], witType)
			if err != nil {
				return err
			}
			list, err := args.ParseHex([]string{argv[1]})
			if err != nil {
				return err
			}
			v, err := codec.Decode(t, list[0], modeOf(nested))
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), abi.ToNative(t, v))
		},
	}
	cmd.Flags().BoolVar(&nested, "nested", false, "Use the nested encoding")
	cmd.Flags().BoolVar(&witType, "wit", false, "Read the type as a WIT type")
	return cmd
}

// callReport is the printed form of one dispatched call.
type callReport struct {
	Endpoint   string   `yaml:"endpoint"`
	CallID     string   `yaml:"call_id"`
	Status     string   `yaml:"status"`
	ReturnCode int      `yaml:"return_code"`
	Message    string   `yaml:"message,omitempty"`
	Results    []any    `yaml:"results,omitempty"`
	Raw        []string `yaml:"raw,omitempty"`
}

func newCallCmd(a *app) *cobra.Command {
	var (
		raw      bool
		callData string
	)
	cmd := &cobra.Command{
		Use:   "call <endpoint> [value...]",
		Short: "Dispatch one call and print the outcome",
		Long: `Encodes the values against the endpoint's inputs, dispatches the call
and decodes the results. With --raw the values are hex argument slots.
With --data the whole call is given as "name@hex@hex".

The process exits with the call's return code.`,
		Args: func(cmd *cobra.Command, argv []string) error {
			if callData != "" {
				return cobra.NoArgs(cmd, argv)
			}
			return cobra.MinimumNArgs(1)(cmd, argv)
		},
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			name, list, err := s.callInput(argv, raw, callData)
			if err != nil {
				return err
			}
			d, err := s.requireDispatcher()
			if err != nil {
				return err
			}
			return reportCall(cmd.OutOrStdout(), s, d.Call(ctx, name, list), name)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Treat values as hex argument slots")
	cmd.Flags().StringVar(&callData, "data", "", `Call data as "name@hex@hex"`)
	return cmd
}

// callInput resolves the endpoint name and argument slots from the
// command line.
func (s *session) callInput(argv []string, raw bool, callData string) (string, args.ArgumentList, error) {
	if callData != "" {
		return args.ParseCallData(callData)
	}
	name, values := argv[0], argv[1:]
	if raw {
		list, err := args.ParseHex(values)
		return name, list, err
	}
	ep, err := s.endpoint(name)
	if err != nil {
		// Unknown names still go through the dispatcher so the caller
		// sees the function-not-found outcome.
		if errors.KindOf(err) == errors.KindUnknownEndpoint {
			return name, nil, nil
		}
		return "", nil, err
	}
	natives := make([]any, len(values))
	for i, v := range values {
		if natives[i], err = parseNative(v); err != nil {
			return "", nil, err
		}
	}
	list, err := abi.EncodeInputs(ep, natives)
	return name, list, err
}

func reportCall(w io.Writer, s *session, out dispatch.Outcome, name string) error {
	rep := callReport{
		Endpoint:   name,
		CallID:     out.CallID,
		Status:     out.Status.String(),
		ReturnCode: int(out.ReturnCode()),
	}
	switch out.Status {
	case dispatch.StatusSuccess:
		rep.Raw = out.Results.Hex()
		if ep, ok := s.def.Endpoint(name); ok {
			results, err := abi.DecodeOutputs(ep, out.Results)
			if err != nil {
				return err
			}
			rep.Results = results
		}
	case dispatch.StatusRejected:
		rep.Message = out.Reason
	case dispatch.StatusFault:
		rep.Message = out.Err.Error()
	}
	if err := printYAML(w, rep); err != nil {
		return err
	}
	if !out.OK() {
		return &callError{msg: name + " " + rep.Status, code: out.ReturnCode()}
	}
	return nil
}

func newScenarioCmd(a *app) *cobra.Command {
	var (
		watch       bool
		showMetrics bool
		parallelism int
	)
	cmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "Run a YAML scenario of calls and check the outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			d, err := s.requireDispatcher()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("parallelism") {
				parallelism = a.cfg.Scenario.Parallelism
			}
			runner := &scenario.Runner{
				Dispatcher:  d,
				Definition:  s.def,
				Logger:      a.logger.Named("scenario"),
				Parallelism: parallelism,
			}
			w := cmd.OutOrStdout()

			if !watch {
				sc, err := scenario.LoadFile(argv[0])
				if err != nil {
					return err
				}
				err = runScenario(ctx, w, runner, sc)
				if showMetrics {
					if merr := printMetrics(w, s.metrics); merr != nil {
						return merr
					}
				}
				return err
			}

			watcher := &scenario.Watcher{Path: argv[0], Logger: a.logger.Named("watch")}
			fmt.Fprintf(w, "Watching %s (ctrl+c to stop)\n", argv[0])
			err = watcher.Watch(ctx, func(sc *scenario.Scenario, err error) {
				if err != nil {
					fmt.Fprintf(w, "load: %v\n", err)
					return
				}
				if err := runScenario(ctx, w, runner, sc); err != nil {
					a.logger.Debug("scenario run failed", zap.Error(err))
				}
			})
			if stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run whenever the file changes")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print call metrics after the run")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Concurrent steps (default from config)")
	return cmd
}

func runScenario(ctx context.Context, w io.Writer, r *scenario.Runner, sc *scenario.Scenario) error {
	rep, err := r.Run(ctx, sc)
	if err != nil {
		return err
	}
	if rep.Name != "" {
		fmt.Fprintf(w, "Scenario: %s\n", rep.Name)
	}
	for _, res := range rep.Results {
		if res.Passed {
			fmt.Fprintf(w, "  PASS %s\n", res.Name)
		} else {
			fmt.Fprintf(w, "  FAIL %s: %s\n", res.Name, res.Failure)
		}
	}
	failed := len(rep.Failures())
	fmt.Fprintf(w, "%d passed, %d failed\n", len(rep.Results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(rep.Results))
	}
	return nil
}

// printMetrics writes the call counters and latency summaries.
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nMetrics:\n")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			id := mf.GetName() + "{" + strings.Join(labels, ",") + "}"
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "  %s %g\n", id, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "  %s count=%d sum=%gs\n", id, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

// parseNative reads one command-line value as YAML.
func parseNative(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, errors.ParseFailed("value "+s, err)
	}
	return v, nil
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// resolveType reads a type name from the contract's ABI, or as a WIT type
// when witType is set.
func (s *session) resolveType(name string, witType bool) (*codec.Type, error) {
	if !witType {
		return s.def.ParseType(name)
	}
	wt, err := wit.ParseType(strings.TrimSpace(name))
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Cause(err).
			Detail("unknown WIT type %q", name).
			Build()
	}
	return abi.TypeFromWIT(wt)
}

func modeOf(nested bool) codec.Mode {
	if nested {
		return codec.Nested
	}
	return codec.TopLevel
}
