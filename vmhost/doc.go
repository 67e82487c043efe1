// Package vmhost runs contract endpoints implemented as WebAssembly guests.
//
// Guests import five hooks from the "env" module:
//
//	getNumArguments() -> i32
//	getArgumentLength(id i32) -> i32
//	getArgument(id i32, ptr i32) -> i32
//	finish(ptr i32, len i32)
//	signalError(ptr i32, len i32)
//
// Arguments are the TopLevel-encoded slots of the call. Every finish call
// appends one result slot. signalError ends the call with a user rejection
// carrying the message. An endpoint is an exported function with no params
// and no results.
//
// Each call instantiates the compiled guest afresh and carries its state in
// the context, so calls never share memory:
//
//	rt, _ := vmhost.New(ctx, nil)
//	defer rt.Close(ctx)
//	c, _ := rt.Load(ctx, wasm)
//	reg := dispatch.NewRegistry()
//	_ = c.Bind(reg, def)
package vmhost
