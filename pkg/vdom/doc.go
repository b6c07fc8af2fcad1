// Package vdom defines the virtual node and patch vocabulary used by the
// minimact client runtime, and the patch engine that applies patches to the
// live tree.
//
// There is no browser in this module: the "live DOM" is an
// golang.org/x/net/html tree, identical in shape to what the Hydrator (see
// package hydrate) parses out of server-rendered markup. The patch engine
// walks that tree with the same path-addressed, childNodes[i]-style
// resolution a real DOM would use, so swapping in a real browser binding
// later is a matter of implementing the same apply semantics against
// syscall/js, not of redesigning the patch vocabulary.
package vdom
