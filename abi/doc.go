// Package abi loads contract ABI documents and bridges codec values to
// plain Go data.
//
// A Definition holds the endpoints and custom struct and enum types of one
// contract. It is read from the MultiversX-style JSON document:
//
//	{
//	  "name": "TestContract",
//	  "endpoints": [{
//	    "name": "endpoint_6",
//	    "inputs": [
//	      {"name": "a", "type": "u32"},
//	      {"name": "b", "type": "variadic<u32>", "multi_arg": true}
//	    ],
//	    "outputs": [{"type": "multi<u32,variadic<u32>>"}]
//	  }],
//	  "types": {
//	    "DayOfWeek": {"type": "enum", "variants": [
//	      {"name": "Monday", "discriminant": 0}
//	    ]}
//	  }
//	}
//
// or the same structure in YAML. Type expressions use the ABI syntax:
// u8..u64, usize, i8..i64, isize, bool, bytes (also TokenIdentifier and
// ManagedBuffer), BigUint, BigInt, Address, Option<T>, List<T>, arrayN<T>,
// tuple<A,B> and custom type names. Argument-level types may add the
// multi-value wrappers variadic<T>, optional<T>, counted-variadic<T> and
// multi<A,B>.
//
// An enum variant's discriminant must equal its declared position, so the
// wire index of a variant never changes once published.
//
// ToNative and FromNative convert between codec values and the data shapes
// produced by encoding/json and yaml.v3, which is how the scenario runner
// and the command line tool accept and print values.
package abi
