package vdom

import (
	"log/slog"

	"golang.org/x/net/html"
)

// Engine applies patches to a live golang.org/x/net/html tree, standing in
// for the browser's patch engine. Individual patch failures are logged and
// skipped; the batch always completes.
type Engine struct {
	Log *slog.Logger
}

// NewEngine constructs an Engine with the given logger (a nil logger falls
// back to slog.Default()).
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Log: log}
}

// ApplyPatches iterates patches in array order and applies each against
// root, which is mutated in place. Patches resolve against the tree as it
// exists after any prior patch in the same call.
// Template-variant patches are rejected: callers must materialize them via
// package template first.
func (e *Engine) ApplyPatches(root *html.Node, patches []Patch) {
	for _, p := range patches {
		if p.Op.IsTemplate() {
			e.Log.Warn("vdom: template patch reached engine unmaterialized", "op", p.Op.String())
			continue
		}
		e.applyPatch(root, p)
	}
}

func (e *Engine) applyPatch(root *html.Node, p Patch) {
	switch p.Op {
	case OpCreate:
		e.applyCreate(root, p)
	case OpRemove:
		e.applyRemove(root, p)
	case OpReplace:
		e.applyReplace(root, p)
	case OpUpdateText:
		e.applyUpdateText(root, p)
	case OpUpdateProps:
		e.applyUpdateProps(root, p)
	case OpReorderChildren:
		e.applyReorder(root, p)
	default:
		e.Log.Warn("vdom: unknown patch op", "op", p.Op)
	}
}

// childAt returns the i'th child of parent (0-indexed, matching
// childNodes[i] semantics), or nil if out of range.
func childAt(parent *html.Node, i int) *html.Node {
	if parent == nil || i < 0 {
		return nil
	}
	n := parent.FirstChild
	for ; n != nil && i > 0; i-- {
		n = n.NextSibling
	}
	return n
}

func childCount(parent *html.Node) int {
	n, count := parent.FirstChild, 0
	for n != nil {
		count++
		n = n.NextSibling
	}
	return count
}

// resolveNode walks path from root to the addressed node itself.
func resolveNode(root *html.Node, path Path) (*html.Node, bool) {
	n := root
	for _, idx := range path {
		n = childAt(n, idx)
		if n == nil {
			return nil, false
		}
	}
	return n, true
}

// resolveParent walks path[:len-1] and returns (parent, last index).
func resolveParent(root *html.Node, path Path) (*html.Node, int, bool) {
	if len(path) == 0 {
		return nil, 0, false
	}
	parent, ok := resolveNode(root, path[:len(path)-1])
	if !ok {
		return nil, 0, false
	}
	return parent, path[len(path)-1], true
}

func (e *Engine) applyCreate(root *html.Node, p Patch) {
	parent, idx, ok := resolveParent(root, p.Path)
	if !ok {
		e.Log.Warn("vdom: Create target parent missing", "path", p.Path)
		return
	}
	node := CreateElementFromVNode(p.Node)
	if node == nil {
		return
	}
	if idx >= childCount(parent) {
		parent.AppendChild(node)
		return
	}
	ref := childAt(parent, idx)
	parent.InsertBefore(node, ref)
}

func (e *Engine) applyRemove(root *html.Node, p Patch) {
	parent, idx, ok := resolveParent(root, p.Path)
	if !ok {
		e.Log.Warn("vdom: Remove target parent missing", "path", p.Path)
		return
	}
	target := childAt(parent, idx)
	if target == nil {
		e.Log.Warn("vdom: Remove target missing", "path", p.Path)
		return
	}
	parent.RemoveChild(target)
}

func (e *Engine) applyReplace(root *html.Node, p Patch) {
	parent, idx, ok := resolveParent(root, p.Path)
	if !ok {
		e.Log.Warn("vdom: Replace target parent missing", "path", p.Path)
		return
	}
	target := childAt(parent, idx)
	if target == nil {
		e.Log.Warn("vdom: Replace target missing", "path", p.Path)
		return
	}
	node := CreateElementFromVNode(p.Node)
	if node == nil {
		return
	}
	parent.InsertBefore(node, target)
	parent.RemoveChild(target)
}

func (e *Engine) applyUpdateText(root *html.Node, p Patch) {
	target, ok := resolveNode(root, p.Path)
	if !ok {
		e.Log.Warn("vdom: UpdateText target missing", "path", p.Path)
		return
	}
	switch target.Type {
	case html.TextNode:
		target.Data = p.Content
	case html.ElementNode:
		// Replace all children with a single text node, matching "set text
		// content" semantics for an element target.
		for target.FirstChild != nil {
			target.RemoveChild(target.FirstChild)
		}
		target.AppendChild(&html.Node{Type: html.TextNode, Data: p.Content})
	default:
		e.Log.Warn("vdom: UpdateText target not text or element", "path", p.Path)
	}
}

func (e *Engine) applyUpdateProps(root *html.Node, p Patch) {
	target, ok := resolveNode(root, p.Path)
	if !ok || target.Type != html.ElementNode {
		e.Log.Warn("vdom: UpdateProps target missing or not element", "path", p.Path)
		return
	}
	current := attrsToProps(target.Attr)
	merged := MergeProps(current, p.Props)
	target.Attr = propsToAttrs(merged)
}

func (e *Engine) applyReorder(root *html.Node, p Patch) {
	parent, ok := resolveNode(root, p.Path)
	if !ok {
		e.Log.Warn("vdom: ReorderChildren target missing", "path", p.Path)
		return
	}
	keyed := keyedChildren(parent)
	for i, key := range p.Order {
		node, ok := keyed[key]
		if !ok {
			// Unknown key: silently ignored.
			continue
		}
		if childAt(parent, i) != node {
			ref := childAt(parent, i)
			parent.RemoveChild(node)
			parent.InsertBefore(node, ref)
		}
	}
}

// keyedChildren builds a map of data-key/key attribute value to child node.
func keyedChildren(parent *html.Node) map[string]*html.Node {
	out := make(map[string]*html.Node)
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		for _, a := range n.Attr {
			if a.Key == "data-key" || a.Key == "key" {
				out[a.Val] = n
				break
			}
		}
	}
	return out
}

func attrsToProps(attrs []html.Attribute) Props {
	p := make(Props, len(attrs))
	for _, a := range attrs {
		p[a.Key] = a.Val
	}
	return p
}

func propsToAttrs(props Props) []html.Attribute {
	attrs := make([]html.Attribute, 0, len(props))
	for k, v := range props {
		attrs = append(attrs, html.Attribute{Key: k, Val: v})
	}
	return attrs
}

// CreateElementFromVNode recursively materializes a VNode into a live
// html.Node. An unknown VNode kind yields an empty text
// node with a warning.
func CreateElementFromVNode(v *VNode) *html.Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: v.Content}
	case KindElement:
		n := &html.Node{
			Type: html.ElementNode,
			Data: v.Tag,
			Attr: propsToAttrs(filterHandlers(v.Props)),
		}
		for _, c := range v.Children {
			if child := CreateElementFromVNode(c); child != nil {
				n.AppendChild(child)
			}
		}
		if v.Key != "" {
			n.Attr = append(n.Attr, html.Attribute{Key: "data-key", Val: v.Key})
		}
		return n
	case KindFragment:
		// DocumentFragment stand-in: an unattached DocumentNode holding the
		// children. Create and Replace insert this node itself; its children
		// are not spliced into the parent.
		n := &html.Node{Type: html.DocumentNode}
		for _, c := range v.Children {
			if child := CreateElementFromVNode(c); child != nil {
				n.AppendChild(child)
			}
		}
		return n
	case KindRaw:
		// A minimal container; Content is not re-parsed (parsing untrusted
		// HTML client-side is explicitly out of scope).
		n := &html.Node{Type: html.ElementNode, Data: "span"}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v.Content})
		return n
	default:
		slog.Default().Warn("vdom: unknown VNode kind", "kind", v.Kind)
		return &html.Node{Type: html.TextNode, Data: ""}
	}
}

func filterHandlers(props Props) Props {
	if props == nil {
		return nil
	}
	out := make(Props, len(props))
	for k, v := range props {
		if IsHandlerAttr(k) {
			continue
		}
		out[k] = v
	}
	return out
}
