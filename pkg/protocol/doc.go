// Package protocol implements the minimact wire protocol: a hub-style
// JSON message format framed by the ASCII record-separator byte (0x1E),
// covering the handshake/invocation/ack message vocabulary.
//
// Unlike vango-go-vango's own binary varint protocol package, this wire
// format is JSON-first: every message is one JSON object per frame, and
// every frame — including the handshake response on a binary transport —
// is terminated by 0x1E. The framing, encode/decode, and handshake split
// across files the way vango-go-vango organizes its own protocol package
// (frame.go, handshake.go, ack.go, control.go, event.go, error.go), even
// though the payload shape differs.
package protocol
