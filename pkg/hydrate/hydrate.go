package hydrate

import (
	"context"
	"fmt"

	"github.com/minimact/client-go/pkg/protocol"
	"github.com/minimact/client-go/pkg/vdom"
	"golang.org/x/net/html"
)

const (
	componentAttr   = "data-minimact-component"
	componentIDAttr = "data-minimact-component-id"
	clientScopeAttr = "data-minimact-client-scope"
	serverScopeAttr = "data-minimact-server-scope"
	bindAttr        = "data-bind"
	bindHTMLAttr    = "data-bind-html"
	stateAttr       = "data-state"
	keyAttr         = "data-key"
)

// Scope is the binding scope a node resolves to.
type Scope uint8

const (
	ScopeServer Scope = iota
	ScopeClient
)

// StateSeed is a [data-state] node found within a client-scope subtree,
// used to seed client state and install a two-way binding.
type StateSeed struct {
	Node         *html.Node
	Key          string
	InitialValue string
}

// DataBinding is a [data-bind]/[data-bind-html] node, resolved to its
// client- or server-scope handling.
type DataBinding struct {
	Node  *html.Node
	Key   string
	HTML  bool
	Scope Scope
}

// Component is one hydrated Component Instance.
type Component struct {
	ID         string
	Root       *html.Node
	StateSeeds []StateSeed
	Bindings   []DataBinding
}

// Sender forwards a hydration-time invocation (RegisterComponent) to the
// server.
type Sender func(ctx context.Context, msg *protocol.Message) error

// Hydrator scans server-rendered markup for component boundaries and
// produces one Component per [data-minimact-component] node found.
type Hydrator struct {
	Send Sender
}

// Hydrate walks doc looking for [data-minimact-component] nodes. For
// each, it registers the component with the server, stamps the durable
// component-id attribute, and collects the state seeds and bindings
// found within its subtree (not crossing into a nested component's own
// subtree).
func (h *Hydrator) Hydrate(ctx context.Context, doc *html.Node) ([]*Component, error) {
	var components []*Component
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id, ok := vdom.Attr(n, componentAttr); ok {
				comp, err := h.hydrateOne(ctx, n, id)
				if err == nil {
					components = append(components, comp)
				}
				return // do not descend into nested components from here
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return components, nil
}

func (h *Hydrator) hydrateOne(ctx context.Context, node *html.Node, id string) (*Component, error) {
	setAttr(node, componentIDAttr, id)

	if h.Send != nil {
		msg := protocol.NewInvocation("", "RegisterComponent", id)
		if err := h.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("hydrate: register component %s: %w", id, err)
		}
	}

	return &Component{
		ID:         id,
		Root:       node,
		StateSeeds: findStateSeeds(node),
		Bindings:   findBindings(node),
	}, nil
}

// ScopeFor walks up from el to find the nearest scope-marking ancestor,
// defaulting to ScopeServer.
func ScopeFor(el *html.Node) Scope {
	for n := el; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if _, ok := vdom.Attr(n, clientScopeAttr); ok {
			return ScopeClient
		}
		if _, ok := vdom.Attr(n, serverScopeAttr); ok {
			return ScopeServer
		}
	}
	return ScopeServer
}

func findStateSeeds(root *html.Node) []StateSeed {
	var seeds []StateSeed
	forEachDescendant(root, func(n *html.Node) {
		if ScopeFor(n) != ScopeClient {
			return
		}
		key, ok := vdom.Attr(n, stateAttr)
		if !ok {
			return
		}
		value, _ := vdom.Attr(n, "value")
		seeds = append(seeds, StateSeed{Node: n, Key: key, InitialValue: value})
	})
	return seeds
}

func findBindings(root *html.Node) []DataBinding {
	var bindings []DataBinding
	forEachDescendant(root, func(n *html.Node) {
		if key, ok := vdom.Attr(n, bindHTMLAttr); ok {
			bindings = append(bindings, DataBinding{Node: n, Key: key, HTML: true, Scope: ScopeFor(n)})
			return
		}
		if key, ok := vdom.Attr(n, bindAttr); ok {
			bindings = append(bindings, DataBinding{Node: n, Key: key, Scope: ScopeFor(n)})
		}
	})
	return bindings
}

// forEachDescendant visits every descendant of root (not root itself),
// not crossing into a nested component's own subtree.
func forEachDescendant(root *html.Node, visit func(*html.Node)) {
	var walk func(n *html.Node, isRoot bool)
	walk = func(n *html.Node, isRoot bool) {
		if n.Type == html.ElementNode {
			if !isRoot {
				if _, ok := vdom.Attr(n, componentAttr); ok {
					return
				}
			}
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, false)
		}
	}
	walk(root, true)
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// KeyOf returns an element's reconciliation key (data-key), if any.
func KeyOf(n *html.Node) (string, bool) {
	return vdom.Attr(n, keyAttr)
}
