// Package args maps endpoint parameter lists onto argument slots.
//
// A call carries an ArgumentList: one TopLevel-encoded buffer per slot.
// Parameters declare an Arity that says how many slots they take:
//
//	Single    one slot
//	Multi     one slot per tuple item
//	Variadic  all remaining slots, zero or more (last parameter only)
//	Optional  one slot if any remain, else absent
//	Counted   a u32 count slot, then that many elements
//
// Decode fails with argument_count_mismatch when the slot count cannot
// satisfy the parameters and with argument_decode, carrying the slot index,
// when a slot does not decode as its declared type.
package args
