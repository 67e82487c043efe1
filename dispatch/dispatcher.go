package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// Dispatcher routes calls to registered handlers. Its endpoint table is a
// snapshot taken at construction and is never mutated, so Call is safe for
// concurrent use without locking.
type Dispatcher struct {
	entries map[string]*entry
	logger  *zap.Logger
	metrics *metrics
	order   []string
}

// Option configures a Dispatcher.
type Option func(*dispatcherConfig)

type dispatcherConfig struct {
	logger   *zap.Logger
	registry prometheus.Registerer
}

// WithLogger sets the logger used for per-call logging. A nil logger
// disables call logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *dispatcherConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

// WithMetrics records call counts and durations on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *dispatcherConfig) {
		c.registry = reg
	}
}

// NewDispatcher snapshots the registry. Later registrations do not affect
// the returned dispatcher.
func NewDispatcher(r *Registry, opts ...Option) (*Dispatcher, error) {
	cfg := dispatcherConfig{logger: Logger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatcher{logger: cfg.logger}
	if cfg.registry != nil {
		m, err := newMetrics(cfg.registry)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRegister, errors.KindRegistration, err, "register call metrics")
		}
		d.metrics = m
	}

	r.mu.Lock()
	d.entries = make(map[string]*entry, len(r.entries))
	for name, e := range r.entries {
		d.entries[name] = e
	}
	d.order = append([]string(nil), r.order...)
	r.mu.Unlock()

	return d, nil
}

// Endpoint returns the signature registered under name.
func (d *Dispatcher) Endpoint(name string) (*abi.Endpoint, bool) {
	e, ok := d.entries[name]
	if !ok {
		return nil, false
	}
	return e.endpoint, true
}

// Endpoints returns all signatures in registration order.
func (d *Dispatcher) Endpoints() []*abi.Endpoint {
	out := make([]*abi.Endpoint, len(d.order))
	for i, name := range d.order {
		out[i] = d.entries[name].endpoint
	}
	return out
}

type callIDKey struct{}

// CallID returns the identifier of the call a handler is serving, or "".
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// Call decodes the argument list for the named endpoint, invokes its
// handler and encodes the results.
//
// An unknown name faults without decoding. Decode failures fault without
// invoking the handler. A handler rejection produces a Rejected outcome
// with no results. Any other handler error or panic faults.
func (d *Dispatcher) Call(ctx context.Context, name string, list args.ArgumentList) Outcome {
	start := time.Now()
	id := uuid.NewString()

	out := d.call(context.WithValue(ctx, callIDKey{}, id), name, list)
	out.CallID = id

	elapsed := time.Since(start)
	label := name
	if _, known := d.entries[name]; !known {
		label = unknownEndpointLabel
	}
	d.metrics.observe(label, out.Status, elapsed)
	d.log(id, name, len(list), out, elapsed)
	return out
}

func (d *Dispatcher) call(ctx context.Context, name string, list args.ArgumentList) Outcome {
	e, ok := d.entries[name]
	if !ok {
		return fault(errors.UnknownEndpoint(name))
	}

	inputs, err := args.Decode(e.endpoint.Inputs, list)
	if err != nil {
		return fault(err)
	}

	results, err := invoke(ctx, e.handler, inputs)
	if err != nil {
		if rej, ok := AsRejection(err); ok {
			return rejected(rej.Reason)
		}
		return fault(err)
	}

	encoded, err := args.Encode(e.endpoint.Outputs, results)
	if err != nil {
		// The handler broke its own signature; the caller's input was fine.
		return fault(errors.New(errors.PhaseDispatch, errors.KindHandlerFailed).
			Path(name).
			Cause(err).
			Detail("cannot encode results of %s", name).
			Build())
	}
	return success(encoded)
}

// invoke runs the handler, turning plain errors and panics into
// handler_failed faults. Rejections pass through untouched.
func invoke(ctx context.Context, h Handler, inputs []codec.Value) (results []codec.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseHandler, errors.KindHandlerFailed).
				Value(r).
				Cause(fmt.Errorf("panic: %v", r)).
				Detail("handler panicked: %v\n%s", r, debug.Stack()).
				Build()
		}
	}()

	results, err = h(ctx, inputs)
	if err != nil {
		if _, ok := AsRejection(err); ok {
			return nil, err
		}
		return nil, errors.New(errors.PhaseHandler, errors.KindHandlerFailed).
			Cause(err).
			Detail("handler failed").
			Build()
	}
	return results, nil
}

func (d *Dispatcher) log(id, name string, slots int, out Outcome, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("call_id", id),
		zap.String("endpoint", name),
		zap.Int("args", slots),
		zap.Stringer("status", out.Status),
		zap.Duration("elapsed", elapsed),
	}
	switch out.Status {
	case StatusSuccess:
		d.logger.Debug("call succeeded", append(fields, zap.Int("results", len(out.Results)))...)
	case StatusRejected:
		d.logger.Debug("call rejected", append(fields, zap.String("reason", out.Reason))...)
	default:
		d.logger.Warn("call faulted", append(fields,
			zap.Int("return_code", int(out.ReturnCode())),
			zap.Error(out.Err))...)
	}
}
