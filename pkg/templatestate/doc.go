// Package templatestate implements the Template State Manager: a
// persistent componentId+nodePath → Template map plus a per-component
// stateKey → value cache, used to re-render authoritative template
// bindings in place whenever the Hook Runtime commits a new state value —
// independent of the Hint Queue's speculative bundles.
//
// The two-level map (per-component state cache, per-path template
// registry) is grounded on vango-go-vango's pkg/server/patch_history.go
// bookkeeping style (componentID-scoped maps guarded by one mutex) and
// pkg/vango/store.go's persistent keyed-value cache.
package templatestate
