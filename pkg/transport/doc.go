// Package transport implements the Transport Adapter: a gorilla/websocket
// client dialing the hub, performing the handshake, framing sends with the
// record separator, and reconnecting on an exponential-ish backoff table.
//
// Grounded on vango-go-vango's pkg/server/websocket.go ReadLoop/WriteLoop
// split (one goroutine reading frames, one driving periodic work) and
// Session.Resume's swap-the-connection-under-a-mutex reconnect shape —
// generalized from the server's per-session accept loop to a client that
// dials out and retries.
package transport
