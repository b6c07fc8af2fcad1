package computed

import (
	"errors"
	"testing"
	"time"

	"github.com/minimact/client-go/pkg/hooks"
	"github.com/minimact/client-go/pkg/hint"
	"github.com/minimact/client-go/pkg/templatestate"
	"github.com/minimact/client-go/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
)

func TestComputeAllForComponent_RunsEveryRegistration(t *testing.T) {
	r := New(func(componentID string) map[string]any {
		return map[string]any{"count": 4.0}
	})
	r.RegisterClientComputed("c1", "doubled", func(state map[string]any) (any, error) {
		return state["count"].(float64) * 2, nil
	}, nil)
	r.RegisterClientComputed("c1", "label", func(state map[string]any) (any, error) {
		return "n/a", nil
	}, nil)

	out, errs := r.ComputeAllForComponent("c1")
	assert.Empty(t, errs)
	assert.Equal(t, 8.0, out["doubled"])
	assert.Equal(t, "n/a", out["label"])
}

func TestComputeDependentVariables_OnlyRunsMatchingDeps(t *testing.T) {
	r := New(func(string) map[string]any { return map[string]any{"a": 1.0, "b": 2.0} })
	r.RegisterClientComputed("c1", "fromA", func(s map[string]any) (any, error) { return s["a"], nil }, []string{"a"})
	r.RegisterClientComputed("c1", "fromB", func(s map[string]any) (any, error) { return s["b"], nil }, []string{"b"})
	r.RegisterClientComputed("c1", "always", func(s map[string]any) (any, error) { return "x", nil }, nil)

	out, _ := r.ComputeDependentVariables("c1", "a")
	assert.Contains(t, out, "fromA")
	assert.Contains(t, out, "always")
	assert.NotContains(t, out, "fromB")
}

func TestComputeAllForComponent_CollectsErrorsWithoutAborting(t *testing.T) {
	r := New(func(string) map[string]any { return nil })
	r.RegisterClientComputed("c1", "bad", func(map[string]any) (any, error) {
		return nil, errors.New("boom")
	}, nil)
	r.RegisterClientComputed("c1", "good", func(map[string]any) (any, error) {
		return 1, nil
	}, nil)

	out, errs := r.ComputeAllForComponent("c1")
	require.Len(t, errs, 1)
	assert.Equal(t, 1, out["good"])
	assert.NotContains(t, out, "bad")
}

func newComputedTestContext(t *testing.T) *hooks.Context {
	t.Helper()
	engine := vdom.NewEngine(slog.Default())
	root, err := vdom.ParseFragment(`<span>0</span>`)
	require.NoError(t, err)
	return hooks.NewContext("c1", root, hint.New(time.Second), templatestate.New(engine), engine, nil)
}

func TestUseComputed_MemoizesUntilDepsChange(t *testing.T) {
	ctx := newComputedTestContext(t)
	calls := 0
	compute := func() (int, error) { calls++; return calls, nil }

	ctx.BeginRender()
	v1, err := UseComputed(ctx, compute, []any{1}, Options[int]{})
	require.NoError(t, err)

	ctx.BeginRender()
	v2, err := UseComputed(ctx, compute, []any{1}, Options[int]{})
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls, "unchanged deps must not recompute")

	ctx.BeginRender()
	v3, err := UseComputed(ctx, compute, []any{2}, Options[int]{})
	require.NoError(t, err)
	assert.Equal(t, 2, v3)
	assert.Equal(t, 2, calls)
}

func TestUseComputed_SkipMemoizeAlwaysRecomputes(t *testing.T) {
	ctx := newComputedTestContext(t)
	calls := 0
	compute := func() (int, error) { calls++; return calls, nil }

	ctx.BeginRender()
	UseComputed(ctx, compute, []any{1}, Options[int]{SkipMemoize: true})
	ctx.BeginRender()
	UseComputed(ctx, compute, []any{1}, Options[int]{SkipMemoize: true})

	assert.Equal(t, 2, calls)
}

func TestUseComputed_SyncsOnEveryRecompute(t *testing.T) {
	ctx := newComputedTestContext(t)
	var synced []int

	ctx.BeginRender()
	UseComputed(ctx, func() (int, error) { return 1, nil }, []any{1}, Options[int]{
		OnSync: func(v int) { synced = append(synced, v) },
	})
	ctx.BeginRender()
	UseComputed(ctx, func() (int, error) { return 2, nil }, []any{2}, Options[int]{
		OnSync: func(v int) { synced = append(synced, v) },
	})

	assert.Equal(t, []int{1, 2}, synced)
}

func TestUseComputed_ExpiryForcesRecompute(t *testing.T) {
	ctx := newComputedTestContext(t)
	calls := 0
	compute := func() (int, error) { calls++; return calls, nil }

	ctx.BeginRender()
	UseComputed(ctx, compute, []any{1}, Options[int]{Expiry: 10 * time.Millisecond})
	time.Sleep(20 * time.Millisecond)
	ctx.BeginRender()
	UseComputed(ctx, compute, []any{1}, Options[int]{Expiry: 10 * time.Millisecond})

	assert.Equal(t, 2, calls)
}
