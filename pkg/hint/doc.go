// Package hint implements the speculative prediction cache: server-supplied
// (predictedState → patches) bundles, keyed by componentId:hintId, matched
// against a state-change delta by subset comparison on canonically
// serialized values, and expired by a ≤5s TTL.
//
// The keyed-map-with-sweep shape is grounded on vango-go-vango's
// pkg/vango/optimistic.go (which keeps a similar pending-optimistic-update
// table keyed by update id, swept on confirm/timeout). Canonical-JSON
// comparison is a plain byte compare of the marshaled values; nothing here
// indexes or caches a digest, so hashing first would only add cost.
package hint
