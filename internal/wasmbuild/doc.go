// Package wasmbuild assembles small core WebAssembly modules from Go.
//
// It exists to produce guest contracts for tests and examples without an
// external toolchain: a module imports host functions, defines functions
// with raw bodies written through Code, exports a single linear memory and
// may carry active data segments.
//
//	b := wasmbuild.NewModule()
//	finish := b.Import("env", "finish", []api.ValueType{i32, i32}, nil)
//	b.Func("hello", nil, nil, nil, wasmbuild.NewCode().
//		I32Const(0).I32Const(5).Call(finish))
//	b.Data(0, []byte("hello"))
//	wasm := b.Build()
package wasmbuild
