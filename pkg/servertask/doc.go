// Package servertask implements the Server Task / Reducer protocol from
// : a reactive handle (Task[T]) over a server-side asynchronous
// operation, its streaming variant, a paginated layering on top
// (Paginated[T]), and Reducer[S, A] for dispatch/dispatchAsync actions.
//
// Grounded on vango-go-vango's pkg/features/resource.Resource[T]: the retry
// loop, fetchID-based cancellation-of-stale-fetch pattern, and mutex-guarded
// state machine are the same shape, generalized from a locally-invoked
// fetcher function to a server-pushed state-delta stream arriving over the
// wire (Task[T] has no local fetcher; it resolves only when the server
// calls back through ApplyDelta).
package servertask
