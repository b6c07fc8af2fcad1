// Package orchestrator implements the Orchestrator: it
// boots the Transport Adapter, constructs the Message Buffer, Patch
// Engine, Hint Queue, Template State Manager, and Client-Computed
// Registry, hydrates the document, attaches event delegation, registers
// every discovered component, and routes server-pushed invocations
// (UpdateComponent, ApplyPatches, ApplyPrediction, ApplyCorrection,
// QueueHint) to the right collaborator.
//
// Grounded on vango-go-vango's pkg/server/manager.go (the Manager type that
// owns and wires together Sessions, the event queue, and the metrics
// registry) — generalized from a server owning many client sessions to a
// client owning many components over one session.
package orchestrator
