package buffer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/minimact/client-go/pkg/protocol"
)

// DefaultMaxBufferBytes is the default outbound resend budget.
const DefaultMaxBufferBytes = 100_000

// DefaultAckDelay is how long an unacked inbound message waits before the
// buffer fires a standalone, single-shot Ack.
const DefaultAckDelay = time.Second

// Config tunes a Buffer's capacity and ack cadence.
type Config struct {
	MaxBufferBytes int
	AckDelay       time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxBufferBytes <= 0 {
		c.MaxBufferBytes = DefaultMaxBufferBytes
	}
	if c.AckDelay <= 0 {
		c.AckDelay = DefaultAckDelay
	}
	return c
}

type pendingMessage struct {
	seq  uint64
	msg  *protocol.Message
	size int
}

// Buffer tracks outbound invocation-class messages awaiting ack (for
// resend on reconnect) and inbound sequence state (for dedup and the ack
// timer).
//
// A Buffer is safe for concurrent use.
type Buffer struct {
	cfg Config

	mu           sync.Mutex
	capacityCond *sync.Cond
	nextOutSeq   uint64
	pending      []pendingMessage
	pendingBytes int

	lastInSeq          uint64
	waitingForSequence bool
	ackPending         bool
	ackTimer           *time.Timer

	sendAck func(*protocol.Message)
}

// New constructs a Buffer. sendAck is invoked (off the caller's
// goroutine, from the internal ack timer) whenever a standalone Ack
// message needs to be written to the transport.
func New(cfg Config, sendAck func(*protocol.Message)) *Buffer {
	b := &Buffer{cfg: cfg.withDefaults(), sendAck: sendAck}
	b.capacityCond = sync.NewCond(&b.mu)
	return b
}

// TryPrepareOutbound assigns the next sequence id to invocation-class
// messages and enqueues them on the resend list. Control messages
// (Ping/Close/Ack/Sequence) pass through unsequenced. It fails fast with
// ErrBufferFull instead of waiting for capacity; most callers want the
// blocking PrepareOutbound below, which is what implements the actual
// backpressure signal to the hook runtime.
func (b *Buffer) TryPrepareOutbound(msg *protocol.Message) (*protocol.Message, error) {
	if !msg.Type.IsInvocationClass() {
		return msg, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.assignAndEnqueueLocked(msg)
}

// PrepareOutbound assigns a sequence id and enqueues msg, blocking while
// the resend list holds MaxBufferBytes or more. This is the backpressure
// signal: the send's returned future does not complete until acks free
// capacity. Control messages never block.
func (b *Buffer) PrepareOutbound(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	if !msg.Type.IsInvocationClass() {
		return msg, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := approxSize(msg); err != nil {
		return nil, err
	}

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.capacityCond.Broadcast()
		})
		defer stop()
	}

	for b.pendingBytes >= b.cfg.MaxBufferBytes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.capacityCond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return b.assignAndEnqueueLocked(msg)
}

// assignAndEnqueueLocked must be called with mu held.
func (b *Buffer) assignAndEnqueueLocked(msg *protocol.Message) (*protocol.Message, error) {
	size, err := approxSize(msg)
	if err != nil {
		return nil, err
	}
	if b.pendingBytes >= b.cfg.MaxBufferBytes {
		return nil, ErrBufferFull
	}

	b.nextOutSeq++
	msg.SequenceID = b.nextOutSeq
	msg.LocalSeq = b.nextOutSeq

	b.pending = append(b.pending, pendingMessage{seq: msg.SequenceID, msg: msg, size: size})
	b.pendingBytes += size
	return msg, nil
}

// Ack removes all outbound messages with sequence id <= uptoSeq from the
// resend list (an Ack confirms delivery up to and including this id).
func (b *Buffer) Ack(uptoSeq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := 0
	for ; i < len(b.pending); i++ {
		if b.pending[i].seq > uptoSeq {
			break
		}
		b.pendingBytes -= b.pending[i].size
	}
	b.pending = b.pending[i:]
	if i > 0 {
		b.capacityCond.Broadcast()
	}
}

// PendingBytes reports the current outbound resend budget in use.
func (b *Buffer) PendingBytes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingBytes
}

// PendingCount reports the number of unacked outbound messages.
func (b *Buffer) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// BeginReconnect marks the buffer as awaiting a fresh Sequence control
// message from the remote before accepting further invocation-class
// input, and returns the last contiguous inbound sequence id processed
// (for the caller to advertise in its own Sequence message).
func (b *Buffer) BeginReconnect() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waitingForSequence = true
	return b.lastInSeq
}

// ResendAll returns every still-unacked outbound message, in original
// send order, for retransmission after a reconnect.
func (b *Buffer) ResendAll() []*protocol.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*protocol.Message, len(b.pending))
	for i, p := range b.pending {
		out[i] = p.msg
	}
	return out
}

// HandleInbound applies the dedup and reconnect-gating rules to an
// arriving invocation-class message, mirroring vango-go-vango's
// _shouldProcessMessage check. It returns accept=false (with no error)
// for messages that should be silently dropped as already-processed
// duplicates, and schedules the ack timer for newly accepted messages
// (including duplicates, to cover a retransmit loop). A Sequence control
// message advertising an id beyond the next expected receiving id is a
// protocol violation the caller must treat as fatal. An invocation-class
// message without a sequenceId is numbered locally as the next expected
// id; the id used is stored in msg.LocalSeq.
func (b *Buffer) HandleInbound(msg *protocol.Message) (accept bool, err error) {
	if msg.Type == protocol.TypeSequence {
		b.mu.Lock()
		defer b.mu.Unlock()

		if msg.SequenceID > b.lastInSeq+1 {
			return false, ErrFatalSequenceViolation
		}

		b.lastInSeq = msg.SequenceID
		b.waitingForSequence = false
		return false, nil
	}
	if !msg.Type.IsInvocationClass() {
		return true, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.waitingForSequence {
		return false, nil
	}

	seq := msg.SequenceID
	if seq == 0 {
		seq = b.lastInSeq + 1
	}

	switch {
	case seq <= b.lastInSeq:
		b.scheduleAckLocked() // duplicate; still covers a retransmit loop
		return false, nil
	case seq > b.lastInSeq+1:
		return false, ErrSequenceGap
	}

	b.lastInSeq = seq
	msg.LocalSeq = seq
	b.scheduleAckLocked()
	return true, nil
}

// scheduleAckLocked arms the single-shot ack timer if one isn't already
// pending. Must be called with mu held. The timer reads lastInSeq at fire
// time rather than capturing it at arm time, since messages accepted
// during the coalescing window advance it further.
func (b *Buffer) scheduleAckLocked() {
	if b.ackPending {
		return
	}
	b.ackPending = true
	b.ackTimer = time.AfterFunc(b.cfg.AckDelay, func() {
		b.mu.Lock()
		b.ackPending = false
		toSend := protocol.NewAck(b.lastInSeq)
		b.mu.Unlock()
		if b.sendAck != nil {
			b.sendAck(toSend)
		}
	})
}

// Stop cancels any pending ack timer. Call when the transport closes.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ackTimer != nil {
		b.ackTimer.Stop()
	}
	b.ackPending = false
}

func approxSize(msg *protocol.Message) (int, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
