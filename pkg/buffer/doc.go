// Package buffer implements the reliable message buffer: monotonic
// per-direction sequence ids, an outbound resend list bounded by byte size
// rather than message count, and the ack/resend handshake that lets a
// reconnecting transport resume without message loss or duplication.
//
// The ring/resend bookkeeping here is grounded on vango-go-vango's
// pkg/server/patch_history.go (a bounded history of applied patches kept
// for reconnect replay) generalized from "patches" to "any buffered
// invocation-class message", and on pkg/protocol/ack.go's ack-on-timer
// pattern, now retargeted at the JSON+0x1E wire in package protocol.
package buffer
