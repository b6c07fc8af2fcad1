package vdom

import (
	"strings"

	"golang.org/x/net/html"
)

// ParseFragment parses an HTML fragment into a detached container node
// whose children are the parsed nodes. Used by tests and by package hydrate
// to build the initial live tree from server-rendered markup.
func ParseFragment(markup string) (*html.Node, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// Render serializes node back to an HTML string, for tests and debug
// snapshots.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderChildren serializes only the children of n, skipping n itself. Used
// to render a detached container's contents without its wrapper tag.
func RenderChildren(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Attr returns the value of attribute name on n, and whether it was present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
