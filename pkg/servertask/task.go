package servertask

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/minimact/client-go/pkg/protocol"
)

// State is a Task's position in the idle -> running -> terminal state
// machine.
type State int

const (
	Idle State = iota
	Running
	Complete
	Error
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Error:
		return "error"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	ErrNotIdle      = errors.New("servertask: task already started")
	ErrNotRetryable = errors.New("servertask: retry only valid from error or cancelled")
	ErrNotRunning   = errors.New("servertask: cancel only valid while running")
)

// Sender delivers a wire message; installed by the Orchestrator.
type Sender func(ctx context.Context, msg *protocol.Message) error

// Delta is the decoded shape of a server-pushed task state update. Result
// is typed T directly: the caller (Orchestrator) json.Unmarshals the raw
// invocation argument into Delta[T] using the concrete type the component
// registered the task with.
type Delta[T any] struct {
	State           string `json:"state"`
	Result          T      `json:"result,omitempty"`
	Err             string `json:"error,omitempty"`
	Chunk           any    `json:"chunk,omitempty"`
	ChunkIndex      int    `json:"chunkIndex,omitempty"`
	ChunkCount      int    `json:"chunkCount,omitempty"`
	EstimatedChunks int    `json:"estimatedChunks,omitempty"`
}

// Task is a reactive handle to a long-running server-side operation. Use
// New to construct, Start/Retry/Cancel to drive it, and Wait as the
// promise accessor. ApplyDelta is called by the Orchestrator whenever the
// server pushes a state delta.
type Task[T any] struct {
	ComponentID       string
	TaskID            string
	Send              Sender
	OnChunk           func(chunk any, idx int)
	MaxChunksInMemory int

	mu              sync.Mutex
	state           State
	result          T
	err             error
	chunks          []any
	chunkCount      int
	partial         bool
	estimatedChunks int
	done            chan struct{}
}

// New constructs an idle Task bound to componentID. taskID may be empty;
// Start assigns one via uuid.NewString if so.
func New[T any](componentID, taskID string, send Sender) *Task[T] {
	return &Task[T]{
		ComponentID: componentID,
		TaskID:      taskID,
		Send:        send,
		done:        make(chan struct{}),
	}
}

func (t *Task[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Task[T]) Chunks() []any {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]any, len(t.chunks))
	copy(out, t.chunks)
	return out
}

func (t *Task[T]) ChunkCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chunkCount
}

func (t *Task[T]) Partial() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.partial
}

func (t *Task[T]) EstimatedChunks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.estimatedChunks
}

// Start sends StartServerTask, transitioning idle -> running.
func (t *Task[T]) Start(ctx context.Context, args ...any) error {
	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return ErrNotIdle
	}
	if t.TaskID == "" {
		t.TaskID = uuid.NewString()
	}
	t.state = Running
	t.mu.Unlock()

	return t.Send(ctx, protocol.NewInvocation("", "StartServerTask", t.ComponentID, t.TaskID, args))
}

// Retry sends RetryServerTask carrying args; the arguments given to Start
// are not kept or re-sent. It only applies from the Error or Cancelled
// states.
func (t *Task[T]) Retry(ctx context.Context, args ...any) error {
	t.mu.Lock()
	if t.state != Error && t.state != Cancelled {
		t.mu.Unlock()
		return ErrNotRetryable
	}
	t.state = Running
	t.done = make(chan struct{})
	t.chunks = nil
	t.chunkCount = 0
	t.partial = false
	t.err = nil
	t.mu.Unlock()

	return t.Send(ctx, protocol.NewInvocation("", "RetryServerTask", t.ComponentID, t.TaskID, args))
}

// Cancel requests cancellation while running. The Task does not transition
// to Cancelled locally until the server confirms via ApplyDelta.
func (t *Task[T]) Cancel(ctx context.Context) error {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return ErrNotRunning
	}
	t.mu.Unlock()

	return t.Send(ctx, protocol.NewInvocation("", "CancelServerTask", t.ComponentID, t.TaskID))
}

// ApplyDelta applies a server-pushed state delta: appends a streaming
// chunk if present, then applies the named state transition, resolving
// Wait's promise on a terminal transition (complete|error|cancelled).
func (t *Task[T]) ApplyDelta(delta Delta[T]) {
	t.mu.Lock()

	if delta.Chunk != nil {
		t.partial = true
		t.chunks = append(t.chunks, delta.Chunk)
		if delta.ChunkCount > 0 {
			t.chunkCount = delta.ChunkCount
		} else {
			t.chunkCount = len(t.chunks)
		}
		if delta.EstimatedChunks > 0 {
			t.estimatedChunks = delta.EstimatedChunks
		}
		if t.MaxChunksInMemory > 0 && len(t.chunks) > t.MaxChunksInMemory {
			t.chunks = t.chunks[len(t.chunks)-t.MaxChunksInMemory:]
		}
	}

	terminal := false
	switch delta.State {
	case "running":
		t.state = Running
	case "complete":
		t.result = delta.Result
		t.partial = false
		t.state = Complete
		terminal = true
	case "error":
		t.err = errors.New(delta.Err)
		t.state = Error
		terminal = true
	case "cancelled":
		t.state = Cancelled
		terminal = true
	}

	done := t.done
	onChunk := t.OnChunk
	chunk, idx := delta.Chunk, delta.ChunkIndex
	t.mu.Unlock()

	if onChunk != nil && chunk != nil {
		onChunk(chunk, idx)
	}
	if terminal {
		close(done)
	}
}

// Wait blocks until the task reaches a terminal state, returning the
// result or error. It returns early with ctx.Err() if ctx is cancelled
// first.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	select {
	case <-done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
