package hooks

// State is the handle returned by UseState alongside the current value,
// exposing the setter.
type State[T any] struct {
	ctx *Context
	idx int
}

// Get returns the cell's current value.
func (s *State[T]) Get() T {
	return s.ctx.cellValue(s.idx).(T)
}

// Set stores next, running the full commit sequence (hint consult,
// template re-render, server push).
func (s *State[T]) Set(next T) {
	s.ctx.commitState(s.idx, next)
}

// Update stores fn(current) as the new value, running the same commit
// sequence as Set.
func (s *State[T]) Update(fn func(current T) T) {
	current := s.ctx.cellValue(s.idx).(T)
	s.ctx.commitState(s.idx, fn(current))
}

// cellValue returns the raw stored cell value, used internally by
// Update/Get.
func (c *Context) cellValue(idx int) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cells[idx]
}

// UseState allocates (on first render) or retrieves (on subsequent
// renders) a state cell. The hook index is assigned positionally;
// callers must call hooks unconditionally and in the same order on every
// render.
func UseState[T any](ctx *Context, init T) (T, *State[T]) {
	ctx.mu.Lock()
	idx, _ := ctx.nextIndexLocked(init)
	value := ctx.cells[idx].(T)
	ctx.mu.Unlock()

	return value, &State[T]{ctx: ctx, idx: idx}
}
