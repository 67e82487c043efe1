package vmhost

import (
	"context"
	stderrors "errors"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/dispatch"
	"github.com/wippyai/contract-abi/errors"
)

// Config holds configuration for runtime creation.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the wazero
	// default.
	MemoryLimitPages uint32
}

// Runtime hosts guest contracts on a wazero runtime with the env hooks
// installed.
type Runtime struct {
	rt     wazero.Runtime
	logger *zap.Logger
}

// New creates a runtime and instantiates the env host module.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	builder := rt.NewHostModuleBuilder(HostModule)
	for _, f := range hostFunctions() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			WithName(f.name).
			Export(f.name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	return &Runtime{rt: rt, logger: Logger()}, nil
}

// Close releases the runtime and every contract loaded into it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

// Load compiles a guest contract.
func (r *Runtime) Load(ctx context.Context, wasm []byte) (*Contract, error) {
	compiled, err := r.rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile guest contract", err)
	}
	for _, imp := range compiled.ImportedFunctions() {
		mod, name, _ := imp.Import()
		if mod != HostModule {
			_ = compiled.Close(ctx)
			return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
				Detail("guest imports %s.%s; only %s is provided", mod, name, HostModule).
				Build()
		}
	}
	c := &Contract{runtime: r, compiled: compiled}
	r.logger.Debug("guest contract loaded", zap.Strings("exports", c.Exports()))
	return c, nil
}

// Contract is a compiled guest. Each call runs in a fresh instance, so a
// Contract is safe for concurrent use.
type Contract struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
}

// Exports lists callable endpoints: exported functions without params or
// results, sorted by name.
func (c *Contract) Exports() []string {
	var names []string
	for name, def := range c.compiled.ExportedFunctions() {
		if len(def.ParamTypes()) == 0 && len(def.ResultTypes()) == 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (c *Contract) hasExport(name string) bool {
	return slices.Contains(c.Exports(), name)
}

// Call runs an export with raw argument slots and returns the finished
// result slots. A guest signalError is returned as a *dispatch.Rejection.
func (c *Contract) Call(ctx context.Context, export string, list args.ArgumentList) (args.ArgumentList, error) {
	st := &callState{args: list}
	ctx = withState(ctx, st)

	mod, err := c.runtime.rt.InstantiateModule(ctx, c.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(export)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseVM, "export", export)
	}

	_, err = fn.Call(ctx)
	switch {
	case st.rejected:
		return nil, dispatch.Reject(st.message)
	case st.fault != nil:
		return nil, st.fault
	case err != nil:
		return nil, trapError(export, err)
	}
	return st.results, nil
}

func trapError(export string, err error) error {
	b := errors.New(errors.PhaseVM, errors.KindHandlerFailed).Cause(err)
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return b.Value(exitErr.ExitCode()).Detail("guest %s exited with code %d", export, exitErr.ExitCode()).Build()
	}
	return b.Detail("guest %s trapped", export).Build()
}

// Handler adapts an export to a dispatch handler for ep. Inputs are
// re-encoded into slots and the finished slots are decoded against
// ep.Outputs.
func (c *Contract) Handler(ep *abi.Endpoint, export string) (dispatch.Handler, error) {
	if !c.hasExport(export) {
		return nil, errors.NotFound(errors.PhaseRegister, "guest export", export)
	}
	return func(ctx context.Context, in []codec.Value) ([]codec.Value, error) {
		list, err := args.Encode(ep.Inputs, in)
		if err != nil {
			return nil, err
		}
		results, err := c.Call(ctx, export, list)
		if err != nil {
			return nil, err
		}
		return args.Decode(ep.Outputs, results)
	}, nil
}

// Bind registers every endpoint of def against the export of the same name.
func (c *Contract) Bind(reg *dispatch.Registry, def *abi.Definition) error {
	handlers := make(map[string]dispatch.Handler, len(def.Endpoints))
	for _, ep := range def.Endpoints {
		h, err := c.Handler(ep, ep.Name)
		if err != nil {
			return errors.Registration(ep.Name, err)
		}
		handlers[ep.Name] = h
	}
	return reg.RegisterABI(def, handlers)
}

// Close releases the compiled module.
func (c *Contract) Close(ctx context.Context) error {
	return c.compiled.Close(ctx)
}

