package computed

import (
	"time"

	"github.com/bep/debounce"
	"github.com/minimact/client-go/pkg/hooks"
	"golang.org/x/time/rate"
)

// Options configures UseComputed.
type Options[T any] struct {
	// SkipMemoize disables memoization, forcing a recompute on every call.
	// Memoization is enabled by default, hence
	// the inverted zero-value-means-enabled naming.
	SkipMemoize bool
	// Expiry invalidates a memoized value once it is older than Expiry.
	// Zero means never expire.
	Expiry time.Duration
	// Debounce coalesces rapid recomputations, delaying OnSync by this
	// duration after the last one. Zero disables debouncing.
	Debounce time.Duration
	// Throttle caps OnSync to at most once per this duration. Zero
	// disables throttling. Debounce and Throttle are mutually exclusive;
	// Debounce wins if both are set.
	Throttle time.Duration
	// OnSync, if set, is called with the freshly computed value whenever
	// UseComputed recomputes — typically wired to push
	// UpdateClientComputedState to the server.
	OnSync func(value T)
}

type cellState[T any] struct {
	computed  bool
	value     T
	deps      []any
	timestamp time.Time

	debouncer func(func())
	limiter   *rate.Limiter
}

// UseComputed is the hook facade over Registry: it memoizes fn's result
// across renders (comparing deps element-wise, mirroring Object.is
// semantics for primitives), invalidates on Expiry, and syncs the result
// via OnSync, debounced or throttled per Options.
func UseComputed[T any](ctx *hooks.Context, fn func() (T, error), deps []any, opts Options[T]) (T, error) {
	ref := hooks.UseRef[*cellState[T]](ctx, nil)
	if ref.Current == nil {
		ref.Current = &cellState[T]{}
	}
	cs := ref.Current

	now := time.Now()
	memoize := !opts.SkipMemoize
	depsChanged := !depsEqual(cs.deps, deps)
	expired := opts.Expiry > 0 && !cs.timestamp.IsZero() && now.Sub(cs.timestamp) > opts.Expiry

	if cs.computed && memoize && !depsChanged && !expired {
		return cs.value, nil
	}

	val, err := fn()
	if err != nil {
		var zero T
		if cs.computed {
			return cs.value, err
		}
		return zero, err
	}

	cs.value = val
	cs.deps = deps
	cs.timestamp = now
	cs.computed = true
	cs.sync(opts)

	return cs.value, nil
}

func (cs *cellState[T]) sync(opts Options[T]) {
	if opts.OnSync == nil {
		return
	}

	switch {
	case opts.Debounce > 0:
		if cs.debouncer == nil {
			cs.debouncer = debounce.New(opts.Debounce)
		}
		val := cs.value
		cs.debouncer(func() { opts.OnSync(val) })

	case opts.Throttle > 0:
		if cs.limiter == nil {
			cs.limiter = rate.NewLimiter(rate.Every(opts.Throttle), 1)
		}
		if cs.limiter.Allow() {
			opts.OnSync(cs.value)
		}

	default:
		opts.OnSync(cs.value)
	}
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
