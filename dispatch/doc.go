// Package dispatch routes contract calls by endpoint name.
//
// A Registry collects endpoint signatures and their handlers. NewDispatcher
// snapshots it into an immutable table that serves concurrent calls:
//
//	reg := dispatch.NewRegistry()
//	reg.Register(ep, func(ctx context.Context, in []codec.Value) ([]codec.Value, error) {
//		if err := dispatch.Require(codec.Equal(in[0], codec.U(4)), "a failed"); err != nil {
//			return nil, err
//		}
//		return in, nil
//	})
//	d, _ := dispatch.NewDispatcher(reg, dispatch.WithLogger(log))
//	out := d.Call(ctx, "endpoint_1", slots)
//
// Each call ends in one of three states:
//
//   - ok: the handler ran and its results were encoded into result slots
//   - user_error: the handler returned a Rejection; no results are produced
//   - fault: unknown endpoint, argument decode failure, handler error or
//     panic, or result encode failure
//
// Outcome.ReturnCode maps these onto the numeric codes a contract caller sees.
package dispatch
