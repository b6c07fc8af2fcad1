package buffer

import "errors"

var (
	// ErrBufferFull is returned by TryPrepareOutbound when the unacked
	// resend list already holds MaxBufferBytes or more (byte-bounded
	// backpressure).
	ErrBufferFull = errors.New("buffer: outbound resend list exceeds byte budget")

	// ErrSequenceGap is returned by HandleInbound when a message arrives
	// with a sequence id that skips ahead of the expected next id, which
	// the wire-level guarantees say should never happen outside a
	// reconnect race.
	ErrSequenceGap = errors.New("buffer: received sequence id ahead of expected")

	// ErrFatalSequenceViolation is returned by HandleInbound when the
	// remote's Sequence control message advertises an id beyond the next
	// id this side expects to receive. Unlike ErrSequenceGap this can't be
	// a benign reconnect race — the caller must stop the connection.
	ErrFatalSequenceViolation = errors.New("buffer: sequence message ahead of expected receiving id")
)
