package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/minimact/client-go/pkg/vdom"
)

// RecordSeparator terminates every frame on the wire.
const RecordSeparator = 0x1E

// Type is the hub message type-code.
type Type int

const (
	TypeInvocation         Type = 1
	TypeStreamItem         Type = 2
	TypeCompletion         Type = 3
	TypeStreamInvocation   Type = 4
	TypeCancelInvocation   Type = 5
	TypePing               Type = 6
	TypeClose              Type = 7
	TypeAck                Type = 8
	TypeSequence           Type = 9
)

// IsInvocationClass reports whether a message of this type counts toward
// the resend buffer and sequence space.
func (t Type) IsInvocationClass() bool {
	switch t {
	case TypeInvocation, TypeStreamItem, TypeCompletion, TypeStreamInvocation, TypeCancelInvocation:
		return true
	default:
		return false
	}
}

// Message is the wire envelope. Exactly one of the typed payload fields is
// populated, selected by Type. Target/Args are used by Invocation and
// StreamInvocation (RPC name + JSON-encoded arguments); Result/Error by
// Completion; Item by StreamItem.
type Message struct {
	Type           Type              `json:"type"`
	InvocationID   string            `json:"invocationId,omitempty"`
	Target         string            `json:"target,omitempty"`
	Arguments      []any             `json:"arguments,omitempty"`
	Item           any               `json:"item,omitempty"`
	Result         any               `json:"result,omitempty"`
	Error          string            `json:"error,omitempty"`
	SequenceID     uint64            `json:"sequenceId,omitempty"`
	AllowReconnect bool              `json:"allowReconnect,omitempty"`

	// sequenceId assigned by the Message Buffer on send/receive; zero for
	// control messages).
	LocalSeq uint64 `json:"-"`
}

// ApplyPatchesArgs is the decoded argument payload for the server->client
// "ApplyPatches" invocation target.
type ApplyPatchesArgs struct {
	ComponentID string       `json:"componentId"`
	Patches     []vdom.Patch `json:"patches"`
}

// ApplyPredictionArgs is the decoded payload for "ApplyPrediction".
type ApplyPredictionArgs struct {
	ComponentID string       `json:"componentId"`
	Patches     []vdom.Patch `json:"patches"`
	Confidence  float64      `json:"confidence"`
}

// QueueHintArgs is the decoded payload for "QueueHint".
type QueueHintArgs struct {
	ComponentID   string         `json:"componentId"`
	HintID        string         `json:"hintId"`
	Patches       []vdom.Patch   `json:"patches"`
	Confidence    float64        `json:"confidence"`
	PredictedState map[string]any `json:"predictedState"`
	IsTemplate    bool           `json:"isTemplate"`
}

// UpdateComponentArgs is the decoded payload for "UpdateComponent".
type UpdateComponentArgs struct {
	ComponentID string `json:"componentId"`
	HTML        string `json:"html"`
}

// DecodeArgument re-decodes msg.Arguments[index] (already JSON-decoded
// into `any` by DecodeFrame) into T, by round-tripping through
// encoding/json. Server->client invocations carry a single object
// argument.
func DecodeArgument[T any](msg *Message, index int) (T, error) {
	var zero T
	if index < 0 || index >= len(msg.Arguments) {
		return zero, fmt.Errorf("protocol: argument index %d out of range (have %d)", index, len(msg.Arguments))
	}

	b, err := json.Marshal(msg.Arguments[index])
	if err != nil {
		return zero, fmt.Errorf("protocol: re-marshal argument %d: %w", index, err)
	}

	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, fmt.Errorf("protocol: decode argument %d: %w", index, err)
	}
	return out, nil
}
