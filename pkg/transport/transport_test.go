package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minimact/client-go/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func encodeHandshakeResponse(t *testing.T, resp *protocol.HandshakeResponse) []byte {
	t.Helper()
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return append(b, protocol.RecordSeparator)
}

func echoHandshakeServer(t *testing.T, onFrame func(frame []byte)) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames, _ := protocol.SplitFrames(msg)
		require.Len(t, frames, 1)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, encodeHandshakeResponse(t, &protocol.HandshakeResponse{})))

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if onFrame != nil {
				fs, _ := protocol.SplitFrames(msg)
				for _, f := range fs {
					onFrame(f)
				}
			}
		}
	}))
}

func TestAdapter_StartPerformsHandshake(t *testing.T) {
	ts := echoHandshakeServer(t, nil)
	defer ts.Close()

	a := New(Config{URL: wsURL(ts)})
	err := a.Start(context.Background(), TransferText)
	require.NoError(t, err)
	defer a.Stop()
}

func TestAdapter_SendFramesWithTerminator(t *testing.T) {
	received := make(chan []byte, 1)
	ts := echoHandshakeServer(t, func(frame []byte) {
		received <- frame
	})
	defer ts.Close()

	a := New(Config{URL: wsURL(ts)})
	require.NoError(t, a.Start(context.Background(), TransferText))
	defer a.Stop()

	require.NoError(t, a.Send([]byte(`{"type":1}`), TransferText))

	select {
	case frame := <-received:
		assert.Equal(t, `{"type":1}`, string(frame))
	case <-time.After(time.Second):
		t.Fatal("server did not receive frame")
	}
}

func TestAdapter_OnReceiveGetsServerFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, _, err = conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, encodeHandshakeResponse(t, &protocol.HandshakeResponse{})))

		pushed := append([]byte(`{"type":9,"sequenceId":3}`), protocol.RecordSeparator)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, pushed))

		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	frames := make(chan []byte, 4)
	a := New(Config{URL: wsURL(ts)})
	a.SetOnReceive(func(frame []byte) { frames <- frame })
	require.NoError(t, a.Start(context.Background(), TransferText))
	defer a.Stop()

	select {
	case f := <-frames:
		assert.Equal(t, `{"type":9,"sequenceId":3}`, string(f))
	case <-time.After(time.Second):
		t.Fatal("did not receive pushed frame")
	}
}

func TestAdapter_ReconnectsAfterDropAndNotifies(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var conns int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conns++
		attempt := conns

		_, _, err = conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, encodeHandshakeResponse(t, &protocol.HandshakeResponse{})))

		if attempt == 1 {
			conn.Close()
			return
		}
		time.Sleep(300 * time.Millisecond)
		conn.Close()
	}))
	defer ts.Close()

	zero := 0 * time.Millisecond
	reconnected := make(chan struct{}, 1)
	a := New(Config{URL: wsURL(ts), RetryDelays: []*time.Duration{&zero, nil}})
	a.SetOnReconnected(func() { reconnected <- struct{}{} })

	require.NoError(t, a.Start(context.Background(), TransferText))
	defer a.Stop()

	select {
	case <-reconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("adapter did not reconnect")
	}
	assert.GreaterOrEqual(t, conns, 2)
}

func TestAdapter_HandshakeErrorFailsStart(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, _, err = conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, encodeHandshakeResponse(t, &protocol.HandshakeResponse{Error: "unsupported version"})))
	}))
	defer ts.Close()

	a := New(Config{URL: wsURL(ts)})
	err := a.Start(context.Background(), TransferText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}
