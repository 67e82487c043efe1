package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func endpoint(name string, in, out []args.Param) *abi.Endpoint {
	return &abi.Endpoint{Name: name, Inputs: in, Outputs: out}
}

func echo(_ context.Context, in []codec.Value) ([]codec.Value, error) {
	return in, nil
}

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	reg := NewRegistry()

	u8u16 := []args.Param{
		args.NewParam("a", codec.U8Type),
		args.NewParam("b", codec.U16Type),
	}
	mustRegister(t, reg, endpoint("echo", u8u16, u8u16), echo)
	mustRegister(t, reg, endpoint("check", u8u16, u8u16),
		func(_ context.Context, in []codec.Value) ([]codec.Value, error) {
			if err := Require(codec.Equal(in[0], codec.U(4)), "a failed"); err != nil {
				return nil, err
			}
			if err := Require(codec.Equal(in[1], codec.U(75)), "b failed"); err != nil {
				return nil, err
			}
			return in, nil
		})
	mustRegister(t, reg, endpoint("fail", nil, nil),
		func(context.Context, []codec.Value) ([]codec.Value, error) {
			return nil, fmt.Errorf("storage unavailable")
		})
	mustRegister(t, reg, endpoint("panic", nil, nil),
		func(context.Context, []codec.Value) ([]codec.Value, error) {
			panic("boom")
		})
	mustRegister(t, reg, endpoint("badResult", nil, []args.Param{args.NewParam("", codec.U8Type)}),
		func(context.Context, []codec.Value) ([]codec.Value, error) {
			return []codec.Value{codec.U(300)}, nil
		})
	mustRegister(t, reg, endpoint("short", nil, []args.Param{
		args.NewParam("a", codec.U8Type),
		args.NewParam("b", codec.U8Type),
	}),
		func(context.Context, []codec.Value) ([]codec.Value, error) {
			return []codec.Value{codec.U(1)}, nil
		})
	mustRegister(t, reg, endpoint("callID", nil, []args.Param{args.NewParam("", codec.BytesType)}),
		func(ctx context.Context, _ []codec.Value) ([]codec.Value, error) {
			return []codec.Value{codec.Bytes(CallID(ctx))}, nil
		})

	d, err := NewDispatcher(reg, opts...)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func mustRegister(t *testing.T, reg *Registry, ep *abi.Endpoint, h Handler) {
	t.Helper()
	if err := reg.Register(ep, h); err != nil {
		t.Fatalf("Register(%s): %v", ep.Name, err)
	}
}

func slots(t *testing.T, hex ...string) args.ArgumentList {
	t.Helper()
	l, err := args.ParseHex(hex)
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	return l
}

func TestCall(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		endpoint string
		args     []string
		status   Status
		code     ReturnCode
		kind     errors.Kind
		results  []string
		reason   string
	}{
		{
			name:     "echo",
			endpoint: "echo",
			args:     []string{"04", "4b"},
			status:   StatusSuccess,
			code:     ReturnOk,
			results:  []string{"04", "4b"},
		},
		{
			name:     "requirements met",
			endpoint: "check",
			args:     []string{"04", "4b"},
			status:   StatusSuccess,
			code:     ReturnOk,
			results:  []string{"04", "4b"},
		},
		{
			name:     "second requirement fails",
			endpoint: "check",
			args:     []string{"04", "4c"},
			status:   StatusRejected,
			code:     ReturnUserError,
			reason:   "b failed",
		},
		{
			name:     "first requirement checked first",
			endpoint: "check",
			args:     []string{"05", "4c"},
			status:   StatusRejected,
			code:     ReturnUserError,
			reason:   "a failed",
		},
		{
			name:     "unknown endpoint",
			endpoint: "missing",
			args:     []string{"ffffffff"},
			status:   StatusFault,
			code:     ReturnFunctionNotFound,
			kind:     errors.KindUnknownEndpoint,
		},
		{
			name:     "too few arguments",
			endpoint: "echo",
			args:     []string{"04"},
			status:   StatusFault,
			code:     ReturnFunctionWrongSignature,
			kind:     errors.KindArgumentCountMismatch,
		},
		{
			name:     "too many arguments",
			endpoint: "echo",
			args:     []string{"04", "4b", "00"},
			status:   StatusFault,
			code:     ReturnFunctionWrongSignature,
			kind:     errors.KindArgumentCountMismatch,
		},
		{
			name:     "argument overflows",
			endpoint: "echo",
			args:     []string{"0400", "4b"},
			status:   StatusFault,
			code:     ReturnFunctionWrongSignature,
			kind:     errors.KindArgumentDecode,
		},
		{
			name:     "handler error",
			endpoint: "fail",
			status:   StatusFault,
			code:     ReturnExecutionFailed,
			kind:     errors.KindHandlerFailed,
		},
		{
			name:     "handler panic",
			endpoint: "panic",
			status:   StatusFault,
			code:     ReturnExecutionFailed,
			kind:     errors.KindHandlerFailed,
		},
		{
			name:     "result does not fit",
			endpoint: "badResult",
			status:   StatusFault,
			code:     ReturnExecutionFailed,
			kind:     errors.KindHandlerFailed,
		},
		{
			name:     "handler returns fewer results than declared",
			endpoint: "short",
			status:   StatusFault,
			code:     ReturnExecutionFailed,
			kind:     errors.KindHandlerFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := d.Call(ctx, tt.endpoint, slots(t, tt.args...))

			if out.Status != tt.status {
				t.Fatalf("Status = %v, want %v (err: %v)", out.Status, tt.status, out.Err)
			}
			if got := out.ReturnCode(); got != tt.code {
				t.Errorf("ReturnCode = %v, want %v", got, tt.code)
			}
			if out.CallID == "" {
				t.Error("CallID is empty")
			}
			switch tt.status {
			case StatusSuccess:
				if got := strings.Join(out.Results.Hex(), ","); got != strings.Join(tt.results, ",") {
					t.Errorf("Results = %s, want %s", got, strings.Join(tt.results, ","))
				}
			case StatusRejected:
				if out.Reason != tt.reason {
					t.Errorf("Reason = %q, want %q", out.Reason, tt.reason)
				}
				if len(out.Results) != 0 {
					t.Errorf("rejected call produced results: %v", out.Results.Hex())
				}
			case StatusFault:
				if out.Err == nil {
					t.Fatal("fault without error")
				}
				if tt.kind != "" && errors.KindOf(out.Err) != tt.kind {
					t.Errorf("KindOf(Err) = %q, want %q (%v)", errors.KindOf(out.Err), tt.kind, out.Err)
				}
			}
		})
	}
}

func TestCallIDReachesHandler(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Call(context.Background(), "callID", nil)
	if !out.OK() {
		t.Fatalf("call failed: %v", out.Err)
	}
	v, err := codec.Decode(codec.BytesType, out.Results[0], codec.TopLevel)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(v.(codec.Bytes)) != out.CallID {
		t.Errorf("handler saw call id %q, outcome has %q", v, out.CallID)
	}

	again := d.Call(context.Background(), "callID", nil)
	if again.CallID == out.CallID {
		t.Error("call ids should be unique per call")
	}
}

func TestReturnData(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	rej := d.Call(ctx, "check", slots(t, "04", "4c"))
	data := rej.ReturnData()
	if len(data) != 1 || string(data[0]) != "b failed" {
		t.Errorf("ReturnData = %q, want [b failed]", data)
	}

	ok := d.Call(ctx, "echo", slots(t, "04", "4b"))
	if got := ok.ReturnData(); len(got) != 2 {
		t.Errorf("ReturnData has %d slots, want 2", len(got))
	}
}

func TestRegistry(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		reg := NewRegistry()
		ep := endpoint("one", nil, nil)
		mustRegister(t, reg, ep, echo)
		err := reg.Register(ep, echo)
		if errors.KindOf(err) != errors.KindRegistration {
			t.Fatalf("expected registration error, got %v", err)
		}
		if reg.Len() != 1 {
			t.Errorf("Len = %d, want 1", reg.Len())
		}
	})

	t.Run("nil handler", func(t *testing.T) {
		if err := NewRegistry().Register(endpoint("one", nil, nil), nil); err == nil {
			t.Fatal("expected error for nil handler")
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		in := []args.Param{
			{Name: "rest", Type: codec.U32Type, Arity: args.Variadic},
			args.NewParam("after", codec.U8Type),
		}
		if err := NewRegistry().Register(endpoint("bad", in, nil), echo); err == nil {
			t.Fatal("expected error for variadic before a single parameter")
		}
	})

	t.Run("snapshot", func(t *testing.T) {
		reg := NewRegistry()
		mustRegister(t, reg, endpoint("one", nil, nil), echo)
		d, err := NewDispatcher(reg)
		if err != nil {
			t.Fatal(err)
		}
		mustRegister(t, reg, endpoint("two", nil, nil), echo)

		if _, ok := d.Endpoint("two"); ok {
			t.Error("dispatcher should not see endpoints registered after construction")
		}
		if got := len(d.Endpoints()); got != 1 {
			t.Errorf("Endpoints = %d, want 1", got)
		}
	})
}

func TestRegisterABI(t *testing.T) {
	def, err := abi.LoadFile("../abi/testdata/mycontract.abi.json")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	handlers := map[string]Handler{}
	for _, ep := range def.Endpoints {
		handlers[ep.Name] = echo
	}

	reg := NewRegistry()
	if err := reg.RegisterABI(def, handlers); err != nil {
		t.Fatalf("RegisterABI: %v", err)
	}
	if reg.Len() != len(def.Endpoints) {
		t.Errorf("Len = %d, want %d", reg.Len(), len(def.Endpoints))
	}

	t.Run("missing handler", func(t *testing.T) {
		partial := map[string]Handler{def.Endpoints[0].Name: echo}
		if err := NewRegistry().RegisterABI(def, partial); err == nil {
			t.Fatal("expected error for endpoint without handler")
		}
	})

	t.Run("stray handler", func(t *testing.T) {
		extra := map[string]Handler{"nope": echo}
		for k, v := range handlers {
			extra[k] = v
		}
		if err := NewRegistry().RegisterABI(def, extra); err == nil {
			t.Fatal("expected error for handler without endpoint")
		}
	})
}

func TestRejectionHelpers(t *testing.T) {
	if err := Require(true, "never"); err != nil {
		t.Errorf("Require(true) = %v, want nil", err)
	}

	wrapped := fmt.Errorf("context: %w", Rejectf("amount %d too low", 3))
	rej, ok := AsRejection(wrapped)
	if !ok {
		t.Fatal("AsRejection should see through wrapping")
	}
	if rej.Reason != "amount 3 too low" {
		t.Errorf("Reason = %q", rej.Reason)
	}

	if _, ok := AsRejection(fmt.Errorf("plain")); ok {
		t.Error("plain error is not a rejection")
	}
}

func TestConcurrentCalls(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b := uint64(w*perWorker + i)
				list, err := args.Encode(
					[]args.Param{args.NewParam("a", codec.U8Type), args.NewParam("b", codec.U16Type)},
					[]codec.Value{codec.U(uint64(w)), codec.U(b)},
				)
				if err != nil {
					errs <- err.Error()
					continue
				}
				out := d.Call(ctx, "echo", list)
				if !out.OK() {
					errs <- out.Err.Error()
					continue
				}
				if out.Results.Hex()[1] != list.Hex()[1] {
					errs <- fmt.Sprintf("worker %d call %d: got %v, want %v", w, i, out.Results.Hex(), list.Hex())
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := newTestDispatcher(t, WithMetrics(reg))
	ctx := context.Background()

	d.Call(ctx, "echo", slots(t, "04", "4b"))
	d.Call(ctx, "echo", slots(t, "04", "4b"))
	d.Call(ctx, "check", slots(t, "04", "4c"))
	d.Call(ctx, "fail", nil)

	m := d.metrics
	if got := testutil.ToFloat64(m.calls.WithLabelValues("echo", "ok")); got != 2 {
		t.Errorf("echo/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("check", "user_error")); got != 1 {
		t.Errorf("check/user_error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("fail", "fault")); got != 1 {
		t.Errorf("fail/fault = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 3 {
		t.Errorf("duration series = %d, want 3", got)
	}

	// A second dispatcher on the same registerer shares the collectors.
	other := newTestDispatcher(t, WithMetrics(reg))
	other.Call(ctx, "echo", slots(t, "04", "4b"))
	if got := testutil.ToFloat64(m.calls.WithLabelValues("echo", "ok")); got != 3 {
		t.Errorf("shared echo/ok = %v, want 3", got)
	}
}

func TestCallLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := newTestDispatcher(t, WithLogger(zap.New(core)))
	ctx := context.Background()

	d.Call(ctx, "echo", slots(t, "04", "4b"))
	d.Call(ctx, "missing", nil)

	if n := logs.FilterMessage("call succeeded").Len(); n != 1 {
		t.Errorf("success log entries = %d, want 1", n)
	}
	faults := logs.FilterMessage("call faulted").All()
	if len(faults) != 1 {
		t.Fatalf("fault log entries = %d, want 1", len(faults))
	}
	if faults[0].Level != zap.WarnLevel {
		t.Errorf("fault logged at %v, want warn", faults[0].Level)
	}
	if ep := faults[0].ContextMap()["endpoint"]; ep != "missing" {
		t.Errorf("endpoint field = %v, want missing", ep)
	}
}

func TestMetricsUnknownEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := newTestDispatcher(t, WithMetrics(reg))
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		d.Call(ctx, fmt.Sprintf("missing%d", i), nil)
	}
	d.Call(ctx, "echo", slots(t, "04", "4b"))

	m := d.metrics
	if got := testutil.CollectAndCount(m.calls); got != 2 {
		t.Errorf("call series = %d, want 2", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues(unknownEndpointLabel, "fault")); got != 50 {
		t.Errorf("unknown/fault = %v, want 50", got)
	}
}

func TestNilLogger(t *testing.T) {
	d := newTestDispatcher(t, WithLogger(nil))

	out := d.Call(context.Background(), "echo", slots(t, "04", "4b"))
	if out.Status != StatusSuccess {
		t.Fatalf("Status = %v, want %v (err: %v)", out.Status, StatusSuccess, out.Err)
	}
	out = d.Call(context.Background(), "missing", nil)
	if out.Status != StatusFault {
		t.Fatalf("Status = %v, want %v", out.Status, StatusFault)
	}
}
