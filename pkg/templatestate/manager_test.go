package templatestate

import (
	"log/slog"
	"testing"

	"github.com/minimact/client-go/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func newTestRoot(t *testing.T, markup string) *html.Node {
	t.Helper()
	n, err := vdom.ParseFragment(markup)
	require.NoError(t, err)
	return n
}

func TestRenderBindings_UpdatesBoundText(t *testing.T) {
	engine := vdom.NewEngine(slog.Default())
	root := newTestRoot(t, `<span>Count: 0</span>`)
	m := New(engine)

	m.Register("c1", &Entry{
		Kind: EntryText,
		Path: vdom.Path{0, 0},
		Text: &vdom.TemplatePatch{
			Template: "Count: {0}",
			Bindings: []vdom.Binding{{StateKey: "count"}},
		},
	})

	m.SetState("c1", "count", 5.0)
	errs := m.RenderBindings("c1", root, "count")
	assert.Empty(t, errs)

	out, err := vdom.RenderChildren(root)
	require.NoError(t, err)
	assert.Contains(t, out, "Count: 5")
}

func TestRenderBindings_SkipsTemplatesNotBoundToKey(t *testing.T) {
	engine := vdom.NewEngine(slog.Default())
	root := newTestRoot(t, `<span>Count: 0</span><b>Name: x</b>`)
	m := New(engine)

	m.Register("c1", &Entry{
		Kind: EntryText,
		Path: vdom.Path{0, 0},
		Text: &vdom.TemplatePatch{Template: "Count: {0}", Bindings: []vdom.Binding{{StateKey: "count"}}},
	})
	m.Register("c1", &Entry{
		Kind: EntryText,
		Path: vdom.Path{1, 0},
		Text: &vdom.TemplatePatch{Template: "Name: {0}", Bindings: []vdom.Binding{{StateKey: "name"}}},
	})

	m.SetState("c1", "count", 9.0)
	m.SetState("c1", "name", "unchanged")
	m.RenderBindings("c1", root, "count")

	out, err := vdom.RenderChildren(root)
	require.NoError(t, err)
	assert.Contains(t, out, "Count: 9")
	assert.Contains(t, out, "Name: x")
}

func TestApplyTemplatePatch_InsertsAndRendersImmediately(t *testing.T) {
	engine := vdom.NewEngine(slog.Default())
	root := newTestRoot(t, `<div data-key="x">old</div>`)
	m := New(engine)
	m.SetState("c1", "label", "new value")

	err := m.ApplyTemplatePatch("c1", root, &Entry{
		Kind: EntryText,
		Path: vdom.Path{0, 0},
		Text: &vdom.TemplatePatch{Template: "{0}", Bindings: []vdom.Binding{{StateKey: "label"}}},
	})
	require.NoError(t, err)

	out, err := vdom.RenderChildren(root)
	require.NoError(t, err)
	assert.Contains(t, out, "new value")
}

func TestSnapshot_ReturnsIndependentCopy(t *testing.T) {
	m := New(vdom.NewEngine(slog.Default()))
	m.SetState("c1", "a", 1.0)

	snap := m.Snapshot("c1")
	snap["a"] = 2.0

	assert.Equal(t, 1.0, m.Snapshot("c1")["a"])
}
