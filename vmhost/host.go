package vmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/contract-abi"
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/errors"
)

// HostModule is the import module name guests use for the VM hooks.
const HostModule = "env"

// Exit codes used to unwind a guest from inside a hook.
const (
	exitUserError = 4
	exitFault     = 10
)

// callState is the per-call view a guest sees through the hooks.
type callState struct {
	fault    error
	args     args.ArgumentList
	results  args.ArgumentList
	message  string
	rejected bool
}

type stateKey struct{}

func withState(ctx context.Context, st *callState) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

func stateFrom(ctx context.Context) *callState {
	st, _ := ctx.Value(stateKey{}).(*callState)
	return st
}

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

var i32 = api.ValueTypeI32

func hostFunctions() []hostFunc {
	return []hostFunc{
		{name: "getNumArguments", fn: getNumArguments, results: []api.ValueType{i32}},
		{name: "getArgumentLength", fn: getArgumentLength, params: []api.ValueType{i32}, results: []api.ValueType{i32}},
		{name: "getArgument", fn: getArgument, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "finish", fn: finish, params: []api.ValueType{i32, i32}},
		{name: "signalError", fn: signalError, params: []api.ValueType{i32, i32}},
	}
}

func getNumArguments(ctx context.Context, m api.Module, stack []uint64) {
	st := mustState(ctx, m)
	stack[0] = api.EncodeI32(int32(len(st.args)))
}

func getArgumentLength(ctx context.Context, m api.Module, stack []uint64) {
	st := mustState(ctx, m)
	arg := st.argument(ctx, m, api.DecodeI32(stack[0]))
	stack[0] = api.EncodeI32(int32(len(arg)))
}

func getArgument(ctx context.Context, m api.Module, stack []uint64) {
	st := mustState(ctx, m)
	arg := st.argument(ctx, m, api.DecodeI32(stack[0]))
	ptr := api.DecodeU32(stack[1])
	if !st.memory(ctx, m).Write(ptr, arg) {
		st.abort(ctx, m, outOfBounds("getArgument", ptr, len(arg)))
	}
	stack[0] = api.EncodeI32(int32(len(arg)))
}

func finish(ctx context.Context, m api.Module, stack []uint64) {
	st := mustState(ctx, m)
	ptr, n := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	data, ok := st.memory(ctx, m).Read(ptr, n)
	if !ok {
		st.abort(ctx, m, outOfBounds("finish", ptr, int(n)))
	}
	st.results = append(st.results, append([]byte(nil), data...))
}

func signalError(ctx context.Context, m api.Module, stack []uint64) {
	st := mustState(ctx, m)
	ptr, n := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	data, ok := st.memory(ctx, m).Read(ptr, n)
	if !ok {
		st.abort(ctx, m, outOfBounds("signalError", ptr, int(n)))
	}
	st.rejected = true
	st.message = string(data)
	exit(ctx, m, exitUserError)
}

func mustState(ctx context.Context, m api.Module) *callState {
	st := stateFrom(ctx)
	if st == nil {
		exit(ctx, m, exitFault)
	}
	return st
}

func (st *callState) argument(ctx context.Context, m api.Module, id int32) []byte {
	if id < 0 || int(id) >= len(st.args) {
		st.abort(ctx, m, errors.New(errors.PhaseVM, errors.KindInvalidInput).
			Value(id).
			Detail("argument %d out of range, call has %d", id, len(st.args)).
			Build())
	}
	return st.args[id]
}

func (st *callState) memory(ctx context.Context, m api.Module) contractabi.Memory {
	mem := m.Memory()
	if mem == nil {
		st.abort(ctx, m, errors.New(errors.PhaseVM, errors.KindUnsupported).
			Detail("guest has no linear memory").
			Build())
	}
	return mem
}

func (st *callState) abort(ctx context.Context, m api.Module, err error) {
	st.fault = err
	exit(ctx, m, exitFault)
}

// exit closes the guest and unwinds the current call the same way
// proc_exit does.
func exit(ctx context.Context, m api.Module, code uint32) {
	_ = m.CloseWithExitCode(ctx, code)
	panic(sys.NewExitError(code))
}

func outOfBounds(hook string, ptr uint32, n int) error {
	return errors.New(errors.PhaseVM, errors.KindInvalidInput).
		Detail("%s: memory range [%d, %d) out of bounds", hook, ptr, uint64(ptr)+uint64(n)).
		Build()
}
