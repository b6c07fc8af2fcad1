package contextcache

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minimact/client-go/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("any-secret-the-client-never-checks"))
	require.NoError(t, err)
	return signed
}

func TestCache_SetIsReadableAndWriteThrough(t *testing.T) {
	var sent []*protocol.Message
	c := New(func(_ context.Context, msg *protocol.Message) error {
		sent = append(sent, msg)
		return nil
	})

	require.NoError(t, c.Set(context.Background(), "c1", "theme", ScopeApp, "dark"))

	v, ok := c.Get("theme", ScopeApp)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	require.Len(t, sent, 1)
	assert.Equal(t, "UpdateContext", sent[0].Target)
}

func TestCache_ClearRemovesValueAndWriteThrough(t *testing.T) {
	var sent []*protocol.Message
	c := New(func(_ context.Context, msg *protocol.Message) error {
		sent = append(sent, msg)
		return nil
	})
	require.NoError(t, c.Set(context.Background(), "c1", "theme", ScopeApp, "dark"))

	require.NoError(t, c.Clear(context.Background(), "c1", "theme", ScopeApp))

	_, ok := c.Get("theme", ScopeApp)
	assert.False(t, ok)
	require.Len(t, sent, 2)
	assert.Equal(t, "ClearContext", sent[1].Target)
}

func TestCache_ParseSessionToken_ExposesClaimsAsSessionScope(t *testing.T) {
	c := New(nil)
	token := signedToken(t, jwt.MapClaims{"userId": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	require.NoError(t, c.ParseSessionToken(token))

	v, ok := c.Get("userId", ScopeSession)
	require.True(t, ok)
	assert.Equal(t, "u1", v)
}

func TestCache_LocalSetOverridesSessionClaim(t *testing.T) {
	c := New(func(context.Context, *protocol.Message) error { return nil })
	require.NoError(t, c.ParseSessionToken(signedToken(t, jwt.MapClaims{"userId": "from-token"})))
	require.NoError(t, c.Set(context.Background(), "", "userId", ScopeSession, "from-server-push"))

	v, ok := c.Get("userId", ScopeSession)
	require.True(t, ok)
	assert.Equal(t, "from-server-push", v)
}

func TestCache_ScopesAreIndependent(t *testing.T) {
	c := New(func(context.Context, *protocol.Message) error { return nil })
	require.NoError(t, c.Set(context.Background(), "c1", "key", ScopeRequest, "req-value"))
	require.NoError(t, c.Set(context.Background(), "c1", "key", ScopeURL, "url-value"))

	reqV, _ := c.Get("key", ScopeRequest)
	urlV, _ := c.Get("key", ScopeURL)
	assert.Equal(t, "req-value", reqV)
	assert.Equal(t, "url-value", urlV)
}

func TestCache_GetMissingReturnsFalse(t *testing.T) {
	c := New(nil)
	_, ok := c.Get("nope", ScopeApp)
	assert.False(t, ok)
}
