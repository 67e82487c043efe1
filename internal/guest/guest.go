// Package guest builds small WebAssembly contracts that speak the vmhost
// argument convention. They back the VM host tests and the CLI demo.
package guest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/contract-abi/internal/wasmbuild"
)

// Behavior selects the body of an exported endpoint.
type Behavior uint8

const (
	// Echo finishes every argument unchanged, in order.
	Echo Behavior = iota
	// Reject signals Message as a user error.
	Reject
	// Require echoes when argument 0 is the single byte Want and signals
	// Message otherwise.
	Require
	// Trap executes unreachable.
	Trap
	// Silent returns without results.
	Silent
)

// Export is one endpoint of a generated contract.
type Export struct {
	Name     string
	Message  string
	Behavior Behavior
	Want     byte
}

// Scratch is the memory offset arguments are copied to. Messages live below it.
const Scratch = 1024

var i32 = api.ValueTypeI32

type imports struct {
	numArgs   uint32
	argLen    uint32
	getArg    uint32
	finish    uint32
	signalErr uint32
}

// Build assembles a contract exposing the given endpoints.
func Build(exports ...Export) []byte {
	b := wasmbuild.NewModule()
	imp := imports{
		numArgs:   b.Import("env", "getNumArguments", nil, []api.ValueType{i32}),
		argLen:    b.Import("env", "getArgumentLength", []api.ValueType{i32}, []api.ValueType{i32}),
		getArg:    b.Import("env", "getArgument", []api.ValueType{i32, i32}, []api.ValueType{i32}),
		finish:    b.Import("env", "finish", []api.ValueType{i32, i32}, nil),
		signalErr: b.Import("env", "signalError", []api.ValueType{i32, i32}, nil),
	}

	var offset uint32
	for _, e := range exports {
		msg := offset
		if e.Message != "" {
			b.Data(offset, []byte(e.Message))
			offset += uint32(len(e.Message))
		}
		b.Func(e.Name, nil, nil, []api.ValueType{i32, i32, i32}, body(imp, e, msg))
	}
	return b.Build()
}

// Locals: 0 = index, 1 = count, 2 = length.
func body(imp imports, e Export, msg uint32) *wasmbuild.Code {
	c := wasmbuild.NewCode()
	switch e.Behavior {
	case Echo:
		echo(c, imp)
	case Reject:
		signal(c, imp, e, msg)
	case Require:
		c.I32Const(0).I32Const(Scratch).Call(imp.getArg).I32Const(1).I32Ne().If()
		signal(c, imp, e, msg)
		c.Return().End()
		c.I32Const(Scratch).I32Load8U(0).I32Const(int32(e.Want)).I32Ne().If()
		signal(c, imp, e, msg)
		c.Return().End()
		echo(c, imp)
	case Trap:
		c.Unreachable()
	case Silent:
	}
	return c
}

func signal(c *wasmbuild.Code, imp imports, e Export, msg uint32) {
	c.I32Const(int32(msg)).I32Const(int32(len(e.Message))).Call(imp.signalErr)
}

func echo(c *wasmbuild.Code, imp imports) {
	c.Call(imp.numArgs).LocalSet(1).
		Block().
		Loop().
		LocalGet(0).LocalGet(1).I32GeS().BrIf(1).
		LocalGet(0).Call(imp.argLen).LocalSet(2).
		LocalGet(0).I32Const(Scratch).Call(imp.getArg).Drop().
		I32Const(Scratch).LocalGet(2).Call(imp.finish).
		LocalGet(0).I32Const(1).I32Add().LocalSet(0).
		Br(0).
		End().
		End()
}
