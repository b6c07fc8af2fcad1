// Package hydrate implements the Hydrator: it scans
// server-rendered markup for [data-minimact-component] nodes, registers
// each with the server, assigns the durable component id attribute,
// seeds client/server scope bindings from [data-bind]/[data-state], and
// produces one Component Instance per id.
//
// The scan-and-register boot sequence is grounded on vango-go-vango's
// pkg/vdom/hydration.go, which walks a server-rendered tree looking for
// its own component-boundary markers and wires up event listeners during
// the same pass.
package hydrate
