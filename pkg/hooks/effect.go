package hooks

// UseEffect schedules fn to run once rendering completes (see
// Context.FlushEffects) whenever deps has changed since the last render,
// or on the first render. If fn returns a non-nil Cleanup, it runs before
// the next execution of this effect, or on Dehydrate.
//
// Identity rule: two deps slices are equal iff they have the same length
// and each element is == to its counterpart. A nil/empty deps slice
// equals the previous nil/empty one, so such an effect runs only on the
// first render.
func UseEffect(ctx *Context, fn func() Cleanup, deps []any) {
	ctx.mu.Lock()
	idx, isNew := ctx.nextIndexLocked(nil)

	cell := ctx.effects[idx]
	if cell == nil {
		cell = &effectCell{}
		ctx.effects[idx] = cell
	}

	changed := isNew || !depsEqual(cell.deps, deps)
	cell.deps = deps
	if !changed {
		ctx.mu.Unlock()
		return
	}

	prevCleanup := cell.cleanup
	cell.hasRun = true
	ctx.pendingEffects = append(ctx.pendingEffects, func() {
		if prevCleanup != nil {
			prevCleanup()
		}
		cell.cleanup = fn()
	})
	ctx.mu.Unlock()
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
