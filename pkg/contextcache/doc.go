// Package contextcache implements named, scoped context values
// (request/session/app/url) with write-through to the server via
// UpdateContext/ClearContext, plus an unverified read of the
// session-scope claims token delivered at handshake so session values
// are available before any round-trip.
//
// Grounded on vango-go-vango's pkg/auth (session-claims handling) for the
// golang-jwt/jwt/v5 usage, and on pkg/vango/store.go's map-plus-mutex
// cache shape (also the model for pkg/templatestate.Manager's state
// cache) for the Cache type itself.
package contextcache
