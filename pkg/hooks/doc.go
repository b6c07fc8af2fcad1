// Package hooks implements the hook-scoped state/effect runtime:
// useState/useEffect/useRef modeled as an index-addressed set of cells
// within a per-component render Context, plus the semantic array-state
// helpers (append/prepend/insertAt/removeAt/...) that sync an operation
// descriptor to the server instead of a full array diff.
//
// The index-addressed-cell-plus-context-frame shape is grounded on
// vango-go-vango's pkg/vango/owner.go (Owner as the per-scope hook-order
// tracker), generalized from signal-based fine-grained reactivity to
// React-style index-addressed cells; array helpers are built on
// github.com/samber/lo, the generic slice-helper library the rest of the
// example pack (several go.mod files) already depends on.
package hooks
