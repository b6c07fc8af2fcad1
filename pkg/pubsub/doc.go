// Package pubsub implements the Pub/Sub Aggregator: an in-process event
// bus that fans internal runtime events out to any number of
// subscribers. The Orchestrator publishes hint queue/match and connection
// lifecycle events; the debug server and the terminal inspector read
// Orchestrator.Snapshot and do not subscribe.
//
// Grounded on niceyeti-tabular's tabular/server/fastview/client.go, which
// uses github.com/niceyeti/channerics/channels.NewTicker the same way
// this package uses OrDone/Merge: a done channel (here, a subscriber's
// context) governs channel teardown, letting fan-in composition stay
// declarative instead of hand-rolled select loops.
package pubsub
