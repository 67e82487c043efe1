// Package contractabi implements a binary contract ABI: the codec that
// turns typed values into the byte buffers exchanged with a smart
// contract, the multi-value argument layer and a call dispatcher.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	contractabi/         Root package with the guest Memory interface
//	├── codec/           Type descriptors, values, TopLevel and Nested encodings
//	├── args/            Argument lists and multi-value parameters
//	├── abi/             ABI documents, type expressions, native Go values
//	├── dispatch/        Endpoint registry, dispatcher, rejections, outcomes
//	├── vmhost/          wazero host that serves calls from guest contracts
//	├── scenario/        YAML call scenarios, runner and file watcher
//	├── config/          CLI configuration and logging
//	├── testcontract/    Fixture contract exercising every encoding rule
//	├── errors/          Structured error types for debugging
//	└── cmd/abicall/     Command line and terminal UI
//
// # Quick Start
//
// Encode a value:
//
//	t := codec.ListOf(codec.U16Type)
//	data, err := codec.Encode(t, codec.Seq(codec.U(1), codec.U(2)), codec.Nested)
//	// data = 00000002 0001 0002
//
// Serve an ABI with Go handlers:
//
//	def, err := abi.LoadFile("mycontract.abi.json")
//	reg := dispatch.NewRegistry()
//	err = reg.RegisterABI(def, handlers)
//	d, err := dispatch.NewDispatcher(reg)
//	out := d.Call(ctx, "endpoint_1", list)
//
// Serve it from a guest contract instead:
//
//	rt, err := vmhost.New(ctx, nil)
//	defer rt.Close(ctx)
//	contract, err := rt.Load(ctx, wasmBytes)
//	err = contract.Bind(reg, def)
//
// # Encodings
//
// Every value has two forms. The TopLevel form fills one whole argument
// slot, so lengths are implied and integers are minimal. The Nested form
// is embedded inside another value: integers are full width and
// variable-length values carry a big-endian u32 prefix.
//
// # Call Outcomes
//
// A call ends in one of three states:
//
//	ok          handler ran, results encoded        return code 0
//	user_error  handler rejected with a reason      return code 4
//	fault       decode, dispatch or handler failure return code 1, 2 or 10
//
// # Error Handling
//
// All errors are *errors.Error with Phase and Kind for programmatic handling:
//
//	if errors.KindOf(err) == errors.KindUnknownVariant {
//	    // bad enum index in the input
//	}
package contractabi
