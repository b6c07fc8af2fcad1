package protocol

import (
	"testing"

	"github.com/minimact/client-go/pkg/vdom"
	"github.com/stretchr/testify/assert"
)

func TestIsInvocationClass(t *testing.T) {
	invocationClass := []Type{TypeInvocation, TypeStreamItem, TypeCompletion, TypeStreamInvocation, TypeCancelInvocation}
	for _, ty := range invocationClass {
		assert.True(t, ty.IsInvocationClass(), "type %d should be invocation-class", ty)
	}

	notInvocationClass := []Type{TypePing, TypeClose, TypeAck, TypeSequence}
	for _, ty := range notInvocationClass {
		assert.False(t, ty.IsInvocationClass(), "type %d should not be invocation-class", ty)
	}
}

func TestControlConstructors(t *testing.T) {
	ack := NewAck(42)
	assert.Equal(t, TypeAck, ack.Type)
	assert.Equal(t, uint64(42), ack.SequenceID)

	seq := NewSequence(7)
	assert.Equal(t, TypeSequence, seq.Type)

	closeMsg := NewClose("transport dropped", true)
	assert.Equal(t, TypeClose, closeMsg.Type)
	assert.True(t, closeMsg.AllowReconnect)
	assert.Equal(t, "transport dropped", closeMsg.Error)
}

func TestDecodeArgument_RoundTripsThroughJSON(t *testing.T) {
	msg := NewInvocation("", "ApplyPatches", map[string]any{
		"componentId": "c1",
		"patches":     []any{map[string]any{"op": float64(vdom.OpUpdateText), "path": []any{0.0}, "content": "hi"}},
	})

	args, err := DecodeArgument[ApplyPatchesArgs](msg, 0)
	assert.NoError(t, err)
	assert.Equal(t, "c1", args.ComponentID)
	assert.Len(t, args.Patches, 1)
}

func TestDecodeArgument_OutOfRangeErrors(t *testing.T) {
	msg := NewInvocation("", "ApplyPatches")
	_, err := DecodeArgument[ApplyPatchesArgs](msg, 0)
	assert.Error(t, err)
}

func TestApplyPatchesArgs_CarriesVDOMPatches(t *testing.T) {
	args := ApplyPatchesArgs{
		ComponentID: "comp-1",
		Patches:     []vdom.Patch{vdom.NewUpdateText(vdom.Path{0, 1}, "hi")},
	}
	assert.Equal(t, "comp-1", args.ComponentID)
	assert.Len(t, args.Patches, 1)
	assert.Equal(t, vdom.OpUpdateText, args.Patches[0].Op)
}
