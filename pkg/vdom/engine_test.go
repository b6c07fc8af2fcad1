package vdom

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestApplyPatches_UpdateText(t *testing.T) {
	root, err := ParseFragment(`<div><span>old</span></div>`)
	require.NoError(t, err)

	e := NewEngine(nil)
	// root -> [0]=div -> [0]=span -> [0]=text("old")
	div := childAt(root, 0)
	e.ApplyPatches(div, []Patch{NewUpdateText(Path{0, 0}, "new")})

	out, err := RenderChildren(root)
	require.NoError(t, err)
	require.Contains(t, out, "new")
	require.NotContains(t, out, "old")
}

func TestApplyPatches_UpdateProps_PreservesReserved(t *testing.T) {
	root, err := ParseFragment(`<div data-minimact-component-id="c1" class="a"></div>`)
	require.NoError(t, err)

	e := NewEngine(nil)
	div := childAt(root, 0)
	e.ApplyPatches(root, []Patch{NewUpdateProps(Path{0}, Props{"class": "b"})})

	id, ok := Attr(div, "data-minimact-component-id")
	require.True(t, ok)
	require.Equal(t, "c1", id)
	cls, _ := Attr(div, "class")
	require.Equal(t, "b", cls)
}

func TestApplyPatches_UpdateProps_SkipsHandlers(t *testing.T) {
	root, err := ParseFragment(`<button></button>`)
	require.NoError(t, err)
	e := NewEngine(nil)
	e.ApplyPatches(root, []Patch{NewUpdateProps(Path{0}, Props{"onclick": "evil()", "disabled": "true"})})

	btn := childAt(root, 0)
	_, hasOnClick := Attr(btn, "onclick")
	require.False(t, hasOnClick)
	v, ok := Attr(btn, "disabled")
	require.True(t, ok)
	require.Equal(t, "true", v)
}

func TestApplyPatches_ReorderChildren_Permutation(t *testing.T) {
	root, err := ParseFragment(`<ul><li data-key="a">A</li><li data-key="b">B</li><li data-key="c">C</li></ul>`)
	require.NoError(t, err)
	e := NewEngine(nil)
	ul := childAt(root, 0)

	e.ApplyPatches(root, []Patch{NewReorderChildren(Path{0}, []string{"c", "a", "b"})})

	var keys []string
	for n := ul.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			k, _ := Attr(n, "data-key")
			keys = append(keys, k)
		}
	}
	require.Equal(t, []string{"c", "a", "b"}, keys)
}

func TestApplyPatches_ReorderChildren_UnknownKeyIgnored(t *testing.T) {
	root, err := ParseFragment(`<ul><li data-key="a">A</li><li data-key="b">B</li></ul>`)
	require.NoError(t, err)
	e := NewEngine(nil)
	ul := childAt(root, 0)

	// "z" does not exist among current children; it is ignored, "b" moves
	// to the front, "a" is left in place.
	e.ApplyPatches(root, []Patch{NewReorderChildren(Path{0}, []string{"b", "z", "a"})})

	var keys []string
	for n := ul.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			k, _ := Attr(n, "data-key")
			keys = append(keys, k)
		}
	}
	require.Equal(t, []string{"b", "a"}, keys)
}

func TestApplyPatches_CreateAppendsWhenIndexBeyondEnd(t *testing.T) {
	root, err := ParseFragment(`<ul><li data-key="a">A</li></ul>`)
	require.NoError(t, err)
	e := NewEngine(nil)
	ul := childAt(root, 0)

	e.ApplyPatches(root, []Patch{NewCreate(Path{0, 5}, KeyedElement("li", "b", nil, Text("B")))})

	require.Equal(t, 2, childCount(ul))
}

func TestApplyPatches_MissingTargetIsNoOp(t *testing.T) {
	root, err := ParseFragment(`<div></div>`)
	require.NoError(t, err)
	e := NewEngine(nil)

	require.NotPanics(t, func() {
		e.ApplyPatches(root, []Patch{
			NewUpdateText(Path{0, 9}, "x"),
			NewRemove(Path{0, 9}),
			NewReplace(Path{0, 9}, Text("x")),
		})
	})
}

func TestApplyPatches_BatchContinuesAfterFailure(t *testing.T) {
	root, err := ParseFragment(`<div><span>a</span></div>`)
	require.NoError(t, err)
	e := NewEngine(nil)

	e.ApplyPatches(root, []Patch{
		NewUpdateText(Path{0, 9}, "missing"), // no-op
		NewUpdateText(Path{0, 0}, "b"),       // applies
	})

	out, err := RenderChildren(root)
	require.NoError(t, err)
	require.Contains(t, out, "b")
}

// TestApplyPatches_TemplatePatchRejected proves template-variant patches
// never reach live DOM mutation without materialization.
func TestApplyPatches_TemplatePatchRejected(t *testing.T) {
	root, err := ParseFragment(`<span>x</span>`)
	require.NoError(t, err)
	e := NewEngine(nil)

	e.ApplyPatches(root, []Patch{{Op: OpUpdateTextTemplate, Path: Path{0}, TextTemplate: &TemplatePatch{Template: "{0}"}}})

	out, err := RenderChildren(root)
	require.NoError(t, err)
	require.Contains(t, out, "x")
}
