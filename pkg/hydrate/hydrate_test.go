package hydrate

import (
	"context"
	"testing"

	"github.com/minimact/client-go/pkg/protocol"
	"github.com/minimact/client-go/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrate_RegistersComponentAndStampsID(t *testing.T) {
	doc, err := vdom.ParseFragment(`<div data-minimact-component="c1"><span>hi</span></div>`)
	require.NoError(t, err)

	var sent []*protocol.Message
	h := &Hydrator{Send: func(_ context.Context, msg *protocol.Message) error {
		sent = append(sent, msg)
		return nil
	}}

	components, err := h.Hydrate(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "c1", components[0].ID)

	require.Len(t, sent, 1)
	assert.Equal(t, "RegisterComponent", sent[0].Target)

	id, ok := vdom.Attr(components[0].Root, componentIDAttr)
	require.True(t, ok)
	assert.Equal(t, "c1", id)
}

func TestHydrate_DoesNotDescendIntoNestedComponents(t *testing.T) {
	doc, err := vdom.ParseFragment(`<div data-minimact-component="outer"><div data-minimact-component="inner"><span>x</span></div></div>`)
	require.NoError(t, err)

	h := &Hydrator{}
	components, err := h.Hydrate(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, components, 1, "nested component must be discovered in its own top-level walk, not double-hydrated")
	assert.Equal(t, "outer", components[0].ID)
}

func TestScopeFor_DefaultsToServer(t *testing.T) {
	doc, err := vdom.ParseFragment(`<div><span>x</span></div>`)
	require.NoError(t, err)
	span := doc.FirstChild.FirstChild
	assert.Equal(t, ScopeServer, ScopeFor(span))
}

func TestScopeFor_NearestAncestorWins(t *testing.T) {
	doc, err := vdom.ParseFragment(`<div data-minimact-client-scope><div data-minimact-server-scope><span>x</span></div></div>`)
	require.NoError(t, err)
	span := doc.FirstChild.FirstChild.FirstChild
	assert.Equal(t, ScopeServer, ScopeFor(span))
}

func TestFindStateSeeds_OnlyWithinClientScope(t *testing.T) {
	doc, err := vdom.ParseFragment(`<div data-minimact-component="c1">
		<div data-minimact-client-scope><input data-state="name" value="Ada"/></div>
		<input data-state="ignored" value="x"/>
	</div>`)
	require.NoError(t, err)

	h := &Hydrator{}
	components, err := h.Hydrate(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, components, 1)

	require.Len(t, components[0].StateSeeds, 1)
	assert.Equal(t, "name", components[0].StateSeeds[0].Key)
	assert.Equal(t, "Ada", components[0].StateSeeds[0].InitialValue)
}

func TestFindBindings_HTMLAndTextBindings(t *testing.T) {
	doc, err := vdom.ParseFragment(`<div data-minimact-component="c1">
		<span data-bind="title"></span>
		<div data-bind-html="body"></div>
	</div>`)
	require.NoError(t, err)

	h := &Hydrator{}
	components, err := h.Hydrate(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, components[0].Bindings, 2)

	var sawText, sawHTML bool
	for _, b := range components[0].Bindings {
		if b.Key == "title" && !b.HTML {
			sawText = true
		}
		if b.Key == "body" && b.HTML {
			sawHTML = true
		}
	}
	assert.True(t, sawText)
	assert.True(t, sawHTML)
}
