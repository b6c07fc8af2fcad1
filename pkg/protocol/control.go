package protocol

// NewAck builds an Ack control message. Ack messages are
// not sequenced.
func NewAck(sequenceID uint64) *Message {
	return &Message{Type: TypeAck, SequenceID: sequenceID}
}

// NewSequence builds a Sequence control message, sent by either side to
// (re)establish the receiver's expected next id after a resume.
func NewSequence(sequenceID uint64) *Message {
	return &Message{Type: TypeSequence, SequenceID: sequenceID}
}

// NewPing builds a heartbeat Ping message.
func NewPing() *Message {
	return &Message{Type: TypePing}
}

// NewClose builds a Close message. allowReconnect controls whether the
// transport's onclose handler may trigger the retry policy (true), or
// whether the connection is terminal (false, also used on a
// framing-level failure).
func NewClose(errMsg string, allowReconnect bool) *Message {
	return &Message{Type: TypeClose, Error: errMsg, AllowReconnect: allowReconnect}
}

// NewInvocation builds an invocation-class RPC call. invocationID may be
// empty for non-blocking invocations.
func NewInvocation(invocationID, target string, args ...any) *Message {
	return &Message{Type: TypeInvocation, InvocationID: invocationID, Target: target, Arguments: args}
}

// NewStreamInvocation builds a streaming invocation-class RPC call.
func NewStreamInvocation(invocationID, target string, args ...any) *Message {
	return &Message{Type: TypeStreamInvocation, InvocationID: invocationID, Target: target, Arguments: args}
}

// NewCancelInvocation builds a cancellation for an in-flight streaming
// invocation.
func NewCancelInvocation(invocationID string) *Message {
	return &Message{Type: TypeCancelInvocation, InvocationID: invocationID}
}
