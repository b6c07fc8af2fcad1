package servertask

import (
	"context"
	"sync"

	"github.com/minimact/client-go/pkg/protocol"
)

// Reducer is a client handle to server-authoritative reducer state:
// Dispatch is fire-and-forget, DispatchAsync resolves once the server's
// terminal reply for that dispatch arrives. Replies are assumed to arrive
// in the order their actions were dispatched, so DispatchAsync callers are
// resolved FIFO.
type Reducer[S any, A any] struct {
	ComponentID string
	ReducerID   string
	Send        Sender

	mu      sync.Mutex
	state   S
	waiters []chan reducerResult[S]
}

type reducerResult[S any] struct {
	state S
	err   error
}

// NewReducer constructs a Reducer seeded with initial state.
func NewReducer[S any, A any](componentID, reducerID string, initial S, send Sender) *Reducer[S, A] {
	return &Reducer[S, A]{ComponentID: componentID, ReducerID: reducerID, state: initial, Send: send}
}

// State returns the reducer's current, last-resolved state.
func (r *Reducer[S, A]) State() S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Dispatch sends the action without waiting for a reply.
func (r *Reducer[S, A]) Dispatch(ctx context.Context, action A) error {
	return r.Send(ctx, protocol.NewInvocation("", "DispatchServerReducer", r.ComponentID, r.ReducerID, action))
}

// DispatchAsync sends the action and blocks until the server's terminal
// reply for it arrives (via ApplyReply), or ctx is cancelled first.
func (r *Reducer[S, A]) DispatchAsync(ctx context.Context, action A) (S, error) {
	if err := r.Send(ctx, protocol.NewInvocation("", "DispatchServerReducer", r.ComponentID, r.ReducerID, action)); err != nil {
		var zero S
		return zero, err
	}

	ch := make(chan reducerResult[S], 1)
	r.mu.Lock()
	r.waiters = append(r.waiters, ch)
	r.mu.Unlock()

	select {
	case res := <-ch:
		return res.state, res.err
	case <-ctx.Done():
		var zero S
		return zero, ctx.Err()
	}
}

// ApplyReply applies the server's terminal reply for the oldest
// outstanding dispatch, updating State and resolving one pending
// DispatchAsync call (if any are outstanding).
func (r *Reducer[S, A]) ApplyReply(newState S, err error) {
	r.mu.Lock()
	r.state = newState
	var ch chan reducerResult[S]
	if len(r.waiters) > 0 {
		ch = r.waiters[0]
		r.waiters = r.waiters[1:]
	}
	r.mu.Unlock()

	if ch != nil {
		ch <- reducerResult[S]{state: newState, err: err}
	}
}
