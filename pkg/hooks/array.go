package hooks

import "github.com/samber/lo"

// OpType names the minimal operation a server-side list patch generator
// can apply directly, instead of diffing the whole array.
type OpType string

const (
	OpAppend      OpType = "append"
	OpPrepend     OpType = "prepend"
	OpInsertAt    OpType = "insertAt"
	OpRemoveAt    OpType = "removeAt"
	OpUpdateAt    OpType = "updateAt"
	OpClear       OpType = "clear"
	OpRemoveWhere OpType = "removeWhere"
	OpUpdateWhere OpType = "updateWhere"
	OpAppendMany  OpType = "appendMany"
	OpRemoveMany  OpType = "removeMany"
)

// OperationDescriptor accompanies every array-state commit, carrying the
// minimal operation the server can replay directly instead of diffing the
// whole array.
type OperationDescriptor struct {
	Type  OpType `json:"type"`
	Index *int   `json:"index,omitempty"`
	Item  any    `json:"item,omitempty"`
}

// ArrayState is the array-valued specialization of State, exposing the
// semantic helpers (Append, RemoveAt, UpdateWhere, ...) that each commit an
// OperationDescriptor alongside the new slice.
type ArrayState[T any] struct {
	ctx *Context
	idx int
}

// UseArrayState allocates (on first render) or retrieves (on subsequent
// renders) an array-valued state cell.
func UseArrayState[T any](ctx *Context, init []T) ([]T, *ArrayState[T]) {
	ctx.mu.Lock()
	idx, _ := ctx.nextIndexLocked(init)
	value := ctx.cells[idx].([]T)
	ctx.mu.Unlock()

	return value, &ArrayState[T]{ctx: ctx, idx: idx}
}

func (a *ArrayState[T]) current() []T {
	return a.ctx.cellValue(a.idx).([]T)
}

func (a *ArrayState[T]) commit(next []T, desc OperationDescriptor) {
	a.ctx.commitState(a.idx, next)
	a.ctx.syncOperation(a.idx, desc)
}

// Append adds item to the end of the array.
func (a *ArrayState[T]) Append(item T) []T {
	out := append(append([]T{}, a.current()...), item)
	a.commit(out, OperationDescriptor{Type: OpAppend, Item: item})
	return out
}

// Prepend adds item to the front of the array.
func (a *ArrayState[T]) Prepend(item T) []T {
	out := append([]T{item}, a.current()...)
	a.commit(out, OperationDescriptor{Type: OpPrepend, Item: item})
	return out
}

// InsertAt inserts item at index, shifting later elements right.
func (a *ArrayState[T]) InsertAt(index int, item T) []T {
	cur := a.current()
	out := make([]T, 0, len(cur)+1)
	out = append(out, cur[:index]...)
	out = append(out, item)
	out = append(out, cur[index:]...)
	idx := index
	a.commit(out, OperationDescriptor{Type: OpInsertAt, Index: &idx, Item: item})
	return out
}

// RemoveAt removes the element at index.
func (a *ArrayState[T]) RemoveAt(index int) []T {
	cur := a.current()
	out := lo.Reject(cur, func(_ T, i int) bool { return i == index })
	idx := index
	a.commit(out, OperationDescriptor{Type: OpRemoveAt, Index: &idx})
	return out
}

// UpdateAt replaces the element at index with fn's result.
func (a *ArrayState[T]) UpdateAt(index int, fn func(T) T) []T {
	cur := a.current()
	out := lo.Map(cur, func(item T, i int) T {
		if i == index {
			return fn(item)
		}
		return item
	})
	idx := index
	var item any
	if index >= 0 && index < len(out) {
		item = out[index]
	}
	a.commit(out, OperationDescriptor{Type: OpUpdateAt, Index: &idx, Item: item})
	return out
}

// Clear empties the array.
func (a *ArrayState[T]) Clear() []T {
	out := []T{}
	a.commit(out, OperationDescriptor{Type: OpClear})
	return out
}

// RemoveWhere removes every element matching pred.
func (a *ArrayState[T]) RemoveWhere(pred func(T) bool) []T {
	cur := a.current()
	out := lo.Reject(cur, func(item T, _ int) bool { return pred(item) })
	a.commit(out, OperationDescriptor{Type: OpRemoveWhere})
	return out
}

// UpdateWhere replaces every element matching pred with fn's result.
func (a *ArrayState[T]) UpdateWhere(pred func(T) bool, fn func(T) T) []T {
	cur := a.current()
	out := lo.Map(cur, func(item T, _ int) T {
		if pred(item) {
			return fn(item)
		}
		return item
	})
	a.commit(out, OperationDescriptor{Type: OpUpdateWhere})
	return out
}

// AppendMany appends items in order.
func (a *ArrayState[T]) AppendMany(items []T) []T {
	out := append(append([]T{}, a.current()...), items...)
	a.commit(out, OperationDescriptor{Type: OpAppendMany, Item: items})
	return out
}

// RemoveMany removes the elements at the given indices.
func (a *ArrayState[T]) RemoveMany(indices []int) []T {
	remove := lo.SliceToMap(indices, func(i int) (int, struct{}) { return i, struct{}{} })
	cur := a.current()
	out := lo.Reject(cur, func(_ T, i int) bool {
		_, found := remove[i]
		return found
	})
	a.commit(out, OperationDescriptor{Type: OpRemoveMany, Item: indices})
	return out
}

// syncOperation is a hook point for the Orchestrator/Server Task layer to
// forward the minimal operation descriptor alongside the state push; the
// base Context implementation is a no-op beyond what commitState already
// sends, since the server RPC target ("UpdateState") already carries the
// full next value. Installed via Context.OperationSync for orchestrator
// wiring that wants the cheaper descriptor instead.
func (c *Context) syncOperation(idx int, desc OperationDescriptor) {
	if c.OperationSync != nil {
		c.OperationSync(stateKeyFor(idx), desc)
	}
}
