package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandshakeRequest_VersionBySupport(t *testing.T) {
	stateful := NewHandshakeRequest(true)
	assert.Equal(t, HandshakeVersionStateful, stateful.Version)
	assert.Equal(t, HandshakeProtocolJSON, stateful.Protocol)

	stateless := NewHandshakeRequest(false)
	assert.Equal(t, HandshakeVersionStateless, stateless.Version)
}

func TestEncodeHandshakeRequest_Terminated(t *testing.T) {
	b, err := EncodeHandshakeRequest(NewHandshakeRequest(true))
	require.NoError(t, err)
	assert.Equal(t, byte(RecordSeparator), b[len(b)-1])
}

func TestDecodeHandshakeResponse_Error(t *testing.T) {
	resp, err := DecodeHandshakeResponse([]byte(`{"error":"unsupported protocol"}`))
	require.NoError(t, err)
	assert.Equal(t, "unsupported protocol", resp.Error)
}

func TestDecodeHandshakeResponse_Success(t *testing.T) {
	resp, err := DecodeHandshakeResponse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
}
