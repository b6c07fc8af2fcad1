// Package eventdelegate implements the capture-phase event delegation
//: a single listener per supported event type,
// attached at the component root, that walks the event target up to the
// root looking for the nearest data-on<type> (or legacy on<type>)
// attribute, parses its "methodName[:arg1[:arg2…]]" syntax, and
// assembles the invocation args array.
//
// Since this module runs without a real DOM/browser (see pkg/vdom's doc
// comment), "dispatch" here takes an already-resolved *html.Node target
// rather than a browser Event. pkg/orchestrator builds one Dispatcher per
// hydrated component; nothing in this module turns real DOM events into
// HandleEvent calls, so callers invoke HandleEvent directly. The attribute
// walk is grounded on vango-go-vango's pkg/vdom/hydration.go
// event-attribute scan.
package eventdelegate
