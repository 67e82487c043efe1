package scenario

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/dispatch"
)

// Runner executes scenarios against a dispatcher. Steps are independent
// calls and run concurrently up to Parallelism.
type Runner struct {
	Dispatcher  *dispatch.Dispatcher
	Definition  *abi.Definition
	Logger      *zap.Logger
	Parallelism int
}

// StepResult is the verdict for one step.
type StepResult struct {
	Name    string
	Failure string
	Outcome dispatch.Outcome
	Passed  bool
}

// Report collects step verdicts in declaration order.
type Report struct {
	Name    string
	Results []StepResult
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	return !slices.ContainsFunc(r.Results, func(s StepResult) bool { return !s.Passed })
}

// Failures returns the failed steps.
func (r *Report) Failures() []StepResult {
	var out []StepResult
	for _, s := range r.Results {
		if !s.Passed {
			out = append(out, s)
		}
	}
	return out
}

// Run executes every step. It returns an error only when ctx ends first;
// step failures are reported in the Report.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &Report{Name: sc.Name, Results: make([]StepResult, len(sc.Steps))}

	g, gctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}
	for i := range sc.Steps {
		step := &sc.Steps[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.runStep(gctx, step)
			res.Name = step.label(i)
			report.Results[i] = res
			if res.Passed {
				logger.Debug("step passed", zap.String("step", res.Name))
			} else {
				logger.Info("step failed", zap.String("step", res.Name), zap.String("reason", res.Failure))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, step *Step) StepResult {
	var res StepResult
	fail := func(format string, a ...any) StepResult {
		res.Failure = fmt.Sprintf(format, a...)
		return res
	}

	ep, known := r.Definition.Endpoint(step.Endpoint)

	var list args.ArgumentList
	var err error
	switch {
	case len(step.Raw) > 0:
		list, err = args.ParseHex(step.Raw)
	case known:
		list, err = abi.EncodeInputs(ep, step.Args)
	case len(step.Args) > 0:
		return fail("cannot encode args for unknown endpoint %s", step.Endpoint)
	}
	if err != nil {
		return fail("encode inputs: %v", err)
	}

	res.Outcome = r.Dispatcher.Call(ctx, step.Endpoint, list)
	out := res.Outcome
	want := step.Expect

	if got := out.Status.String(); got != want.Status {
		detail := out.Reason
		if out.Err != nil {
			detail = out.Err.Error()
		}
		return fail("status %s, want %s (%s)", got, want.Status, detail)
	}
	if want.ReturnCode != nil && int(out.ReturnCode()) != *want.ReturnCode {
		return fail("return code %d, want %d", out.ReturnCode(), *want.ReturnCode)
	}
	switch {
	case want.Message == "":
	case out.Status == dispatch.StatusFault:
		if out.Err == nil || !strings.Contains(out.Err.Error(), want.Message) {
			return fail("fault %v does not mention %q", out.Err, want.Message)
		}
	case out.Reason != want.Message:
		return fail("message %q, want %q", out.Reason, want.Message)
	}

	expected := want.RawResults
	if want.Results != nil {
		if !known {
			return fail("cannot encode results for unknown endpoint %s", step.Endpoint)
		}
		encoded, err := abi.EncodeOutputs(ep, want.Results)
		if err != nil {
			return fail("encode expected results: %v", err)
		}
		expected = encoded.Hex()
	}
	if expected != nil {
		if got := out.Results.Hex(); !slices.Equal(got, expected) {
			return fail("results %v, want %v", got, expected)
		}
	}

	res.Passed = true
	return res
}
