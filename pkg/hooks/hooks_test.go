package hooks

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/minimact/client-go/pkg/hint"
	"github.com/minimact/client-go/pkg/protocol"
	"github.com/minimact/client-go/pkg/templatestate"
	"github.com/minimact/client-go/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx(t *testing.T, sent *[]*protocol.Message) *Context {
	t.Helper()
	engine := vdom.NewEngine(slog.Default())
	root, err := vdom.ParseFragment(`<span>0</span>`)
	require.NoError(t, err)

	send := func(_ context.Context, msg *protocol.Message) error {
		if sent != nil {
			*sent = append(*sent, msg)
		}
		return nil
	}
	return NewContext("c1", root, hint.New(time.Second), templatestate.New(engine), engine, send)
}

func TestUseState_PersistsAcrossRenders(t *testing.T) {
	ctx := newCtx(t, nil)

	ctx.BeginRender()
	val, state := UseState(ctx, 0)
	assert.Equal(t, 0, val)
	state.Set(5)

	ctx.BeginRender()
	val2, _ := UseState(ctx, 0)
	assert.Equal(t, 5, val2, "state must persist to the next render")
}

func TestUseState_SetPushesToServer(t *testing.T) {
	var sent []*protocol.Message
	ctx := newCtx(t, &sent)

	ctx.BeginRender()
	_, state := UseState(ctx, "hello")
	state.Set("world")

	require.Len(t, sent, 1)
	assert.Equal(t, "UpdateState", sent[0].Target)
}

func TestUseState_UpdateUsesCurrentValue(t *testing.T) {
	ctx := newCtx(t, nil)
	ctx.BeginRender()
	_, state := UseState(ctx, 10)
	state.Update(func(cur int) int { return cur + 1 })

	ctx.BeginRender()
	val, _ := UseState(ctx, 0)
	assert.Equal(t, 11, val)
}

func TestUseState_MultipleHooksStableOrder(t *testing.T) {
	ctx := newCtx(t, nil)

	ctx.BeginRender()
	a, aState := UseState(ctx, "a")
	b, _ := UseState(ctx, "b")
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
	aState.Set("a2")

	ctx.BeginRender()
	a2, _ := UseState(ctx, "a")
	b2, _ := UseState(ctx, "b")
	assert.Equal(t, "a2", a2)
	assert.Equal(t, "b", b2)
}

func TestUseRef_StableAcrossRenders(t *testing.T) {
	ctx := newCtx(t, nil)

	ctx.BeginRender()
	ref := UseRef(ctx, 0)
	ref.Current = 42

	ctx.BeginRender()
	ref2 := UseRef(ctx, 0)
	assert.Same(t, ref, ref2)
	assert.Equal(t, 42, ref2.Current)
}

func TestUseEffect_RunsOnFirstRenderAndOnDepsChange(t *testing.T) {
	ctx := newCtx(t, nil)
	runs := 0

	ctx.BeginRender()
	UseEffect(ctx, func() Cleanup { runs++; return nil }, []any{1})
	ctx.FlushEffects()
	assert.Equal(t, 1, runs)

	ctx.BeginRender()
	UseEffect(ctx, func() Cleanup { runs++; return nil }, []any{1})
	ctx.FlushEffects()
	assert.Equal(t, 1, runs, "unchanged deps must not re-run the effect")

	ctx.BeginRender()
	UseEffect(ctx, func() Cleanup { runs++; return nil }, []any{2})
	ctx.FlushEffects()
	assert.Equal(t, 2, runs, "changed deps must re-run the effect")
}

func TestUseEffect_CleanupRunsBeforeNextExecution(t *testing.T) {
	ctx := newCtx(t, nil)
	var events []string

	ctx.BeginRender()
	UseEffect(ctx, func() Cleanup {
		events = append(events, "run1")
		return func() { events = append(events, "cleanup1") }
	}, []any{1})
	ctx.FlushEffects()

	ctx.BeginRender()
	UseEffect(ctx, func() Cleanup {
		events = append(events, "run2")
		return nil
	}, []any{2})
	ctx.FlushEffects()

	assert.Equal(t, []string{"run1", "cleanup1", "run2"}, events)
}

func TestDehydrate_RunsPendingCleanup(t *testing.T) {
	ctx := newCtx(t, nil)
	cleaned := false

	ctx.BeginRender()
	UseEffect(ctx, func() Cleanup {
		return func() { cleaned = true }
	}, []any{1})
	ctx.FlushEffects()

	ctx.Dehydrate()
	assert.True(t, cleaned)
}

func TestArrayState_AppendAndRemove(t *testing.T) {
	ctx := newCtx(t, nil)
	ctx.BeginRender()
	val, arr := UseArrayState(ctx, []string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, val)

	out := arr.Append("c")
	assert.Equal(t, []string{"a", "b", "c"}, out)

	out = arr.RemoveAt(0)
	assert.Equal(t, []string{"b", "c"}, out)
}

func TestArrayState_OperationDescriptorSync(t *testing.T) {
	ctx := newCtx(t, nil)
	var lastDesc OperationDescriptor
	ctx.OperationSync = func(_ string, desc OperationDescriptor) { lastDesc = desc }

	ctx.BeginRender()
	_, arr := UseArrayState(ctx, []int{1, 2, 3})
	arr.UpdateAt(1, func(v int) int { return v * 10 })

	assert.Equal(t, OpUpdateAt, lastDesc.Type)
	require.NotNil(t, lastDesc.Index)
	assert.Equal(t, 1, *lastDesc.Index)
	assert.Equal(t, 20, lastDesc.Item)
}

func TestArrayState_RemoveWhereAndUpdateWhere(t *testing.T) {
	ctx := newCtx(t, nil)
	ctx.BeginRender()
	_, arr := UseArrayState(ctx, []int{1, 2, 3, 4})

	out := arr.RemoveWhere(func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{1, 3}, out)

	ctx2 := newCtx(t, nil)
	ctx2.BeginRender()
	_, arr2 := UseArrayState(ctx2, []int{1, 2, 3})
	out2 := arr2.UpdateWhere(func(v int) bool { return v > 1 }, func(v int) int { return v + 100 })
	assert.Equal(t, []int{1, 102, 103}, out2)
}

func TestCommitState_MatchedHintAppliesPatches(t *testing.T) {
	engine := vdom.NewEngine(slog.Default())
	root, err := vdom.ParseFragment(`<span>old</span>`)
	require.NoError(t, err)
	h := hint.New(time.Second)
	h.QueueHint(&hint.Hint{
		ComponentID:    "c1",
		HintID:         "h1",
		PredictedState: map[string]any{"state_0": "new"},
		Patches:        []vdom.Patch{vdom.NewUpdateText(vdom.Path{0, 0}, "new")},
	})

	ctx := NewContext("c1", root, h, templatestate.New(engine), engine, nil)
	ctx.BeginRender()
	_, state := UseState(ctx, "old")
	state.Set("new")

	out, err := vdom.RenderChildren(root)
	require.NoError(t, err)
	assert.Contains(t, out, "new")
}
