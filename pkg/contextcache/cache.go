package contextcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minimact/client-go/pkg/protocol"
)

// Scope is a named context value's lifetime/visibility.
type Scope int

const (
	ScopeRequest Scope = iota
	ScopeSession
	ScopeApp
	ScopeURL
)

func (s Scope) String() string {
	switch s {
	case ScopeRequest:
		return "request"
	case ScopeSession:
		return "session"
	case ScopeApp:
		return "app"
	case ScopeURL:
		return "url"
	default:
		return "unknown"
	}
}

// ErrNoSessionToken reports that no session token has been parsed. No
// function in this package returns it: Get reports a missing
// session-scope value through its bool result.
var ErrNoSessionToken = errors.New("context: no session token parsed")

type key struct {
	name  string
	scope Scope
}

// Sender delivers a wire message; installed by the Orchestrator.
type Sender func(ctx context.Context, msg *protocol.Message) error

// Cache is the Context Cache Facade: named, scoped values with
// write-through to the server. session-scope values are additionally
// readable directly from the handshake's JWT claims, without a round
// trip, via ParseSessionToken.
//
// The JWT is read, not verified: the server already authenticated this
// connection before handing it the claims, so the client only needs the
// claims' contents, not proof of their origin.
type Cache struct {
	send Sender

	mu            sync.Mutex
	values        map[key]any
	sessionClaims jwt.MapClaims
}

// New constructs an empty Cache.
func New(send Sender) *Cache {
	return &Cache{values: make(map[key]any), send: send}
}

// ParseSessionToken reads (without verifying) the JWT claims delivered at
// handshake, making session-scope values available via Get before any
// UpdateContext round-trip.
func (c *Cache) ParseSessionToken(token string) error {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("context: parse session token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("context: session token claims are not a map")
	}

	c.mu.Lock()
	c.sessionClaims = claims
	c.mu.Unlock()
	return nil
}

// Get returns the current value for name at scope. For ScopeSession, a
// local Set always takes precedence; absent that, it falls back to the
// parsed session-token claim of the same name.
func (c *Cache) Get(name string, scope Scope) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.values[key{name, scope}]; ok {
		return v, true
	}
	if scope == ScopeSession && c.sessionClaims != nil {
		if v, ok := c.sessionClaims[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set stores value locally and pushes UpdateContext to the server.
func (c *Cache) Set(ctx context.Context, componentID, name string, scope Scope, value any) error {
	c.mu.Lock()
	c.values[key{name, scope}] = value
	c.mu.Unlock()

	if c.send == nil {
		return nil
	}
	return c.send(ctx, protocol.NewInvocation("", "UpdateContext", componentID, name, scope.String(), value))
}

// Clear removes the local value and pushes ClearContext to the server.
func (c *Cache) Clear(ctx context.Context, componentID, name string, scope Scope) error {
	c.mu.Lock()
	delete(c.values, key{name, scope})
	c.mu.Unlock()

	if c.send == nil {
		return nil
	}
	return c.send(ctx, protocol.NewInvocation("", "ClearContext", componentID, name, scope.String()))
}
