package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/minimact/client-go/pkg/hint"
	"github.com/minimact/client-go/pkg/protocol"
	"github.com/minimact/client-go/pkg/template"
	"github.com/minimact/client-go/pkg/templatestate"
	"github.com/minimact/client-go/pkg/vdom"
	"golang.org/x/net/html"
)

// Sender pushes a new state value to the server via a sequenceable
// invocation. Implementations typically wrap the Message Buffer and
// Transport Adapter.
type Sender func(ctx context.Context, msg *protocol.Message) error

// Cleanup is returned by an effect callback and run before the next
// execution of that effect, or on dehydrate.
type Cleanup func()

type effectCell struct {
	deps    []any
	cleanup Cleanup
	hasRun  bool
}

// Context is the render-scoped hook frame for one component. Hook indices
// are reset at the start of each render via BeginRender and must be
// called in the same order every render (the "rules of hooks").
//
// A Context is not safe for concurrent use by multiple goroutines
// rendering the same component simultaneously — components render
// sequentially, matching vango-go-vango's single-threaded-per-owner model.
type Context struct {
	ComponentID string
	Root        *html.Node

	Hints     *hint.Queue
	Templates *templatestate.Manager
	Engine    *vdom.Engine
	Send      Sender
	Log       *slog.Logger

	// OperationSync, if set, receives the minimal operation descriptor
	// for every array-state commit (see UseArrayState), so the server can
	// apply a targeted list patch instead of diffing the whole array.
	OperationSync func(stateKey string, desc OperationDescriptor)

	mu      sync.Mutex
	cells   []any
	effects []*effectCell
	index   int

	pendingEffects []func()
}

// NewContext constructs a hook frame for a component. Engine and
// Templates may be shared across all components' Contexts; Hints is
// typically the connection-wide hint.Queue.
func NewContext(componentID string, root *html.Node, hints *hint.Queue, templates *templatestate.Manager, engine *vdom.Engine, send Sender) *Context {
	log := slog.Default()
	return &Context{
		ComponentID: componentID,
		Root:        root,
		Hints:       hints,
		Templates:   templates,
		Engine:      engine,
		Send:        send,
		Log:         log,
	}
}

// BeginRender resets the hook index to the start of the cell list ahead
// of a render pass. Cell storage itself persists across renders.
func (c *Context) BeginRender() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}

// nextIndex returns the next hook slot index, growing storage as needed,
// and reports whether this is the cell's first allocation. Must be
// called with mu held.
func (c *Context) nextIndexLocked(init any) (idx int, isNew bool) {
	idx = c.index
	c.index++
	isNew = idx >= len(c.cells)
	if isNew {
		c.cells = append(c.cells, init)
		c.effects = append(c.effects, nil)
	}
	return idx, isNew
}

func stateKeyFor(idx int) string {
	return fmt.Sprintf("state_%d", idx)
}

// FlushEffects runs every effect scheduled during the last render, in
// order. Go has no microtask queue; the caller invokes FlushEffects once
// rendering for this pass has completed, which gives the same ordering
// guarantee (effects never run mid-render).
func (c *Context) FlushEffects() {
	c.mu.Lock()
	pending := c.pendingEffects
	c.pendingEffects = nil
	c.mu.Unlock()

	for _, run := range pending {
		run()
	}
}

// Dehydrate runs every registered effect's cleanup, for component
// teardown.
func (c *Context) Dehydrate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.effects {
		if e != nil && e.cleanup != nil {
			e.cleanup()
			e.cleanup = nil
		}
	}
}

// commitState runs the common useState setter steps: build the state delta, consult the Hint Queue, apply a
// matched hint's patches, persist into the state cell and Template State
// Manager, re-render bound templates, and push the new value to the
// server.
func (c *Context) commitState(idx int, next any) {
	stateKey := stateKeyFor(idx)
	delta := map[string]any{stateKey: next}

	c.mu.Lock()
	c.cells[idx] = next
	c.mu.Unlock()

	if c.Hints != nil {
		if h, ok := c.Hints.Match(c.ComponentID, delta); ok {
			c.applyMatchedHint(h, delta)
		}
	}

	if c.Templates != nil {
		c.Templates.SetState(c.ComponentID, stateKey, next)
		if c.Root != nil && c.Engine != nil {
			if errs := c.Templates.RenderBindings(c.ComponentID, c.Root, stateKey); len(errs) > 0 {
				for _, err := range errs {
					c.logger().Warn("hooks: template re-render failed", "component", c.ComponentID, "err", err)
				}
			}
		}
	}

	if c.Send != nil {
		msg := protocol.NewInvocation("", "UpdateState", c.ComponentID, stateKey, next)
		if err := c.Send(context.Background(), msg); err != nil {
			c.logger().Warn("hooks: failed to push state update", "component", c.ComponentID, "stateKey", stateKey, "err", err)
		}
	}
}

func (c *Context) applyMatchedHint(h *hint.Hint, delta map[string]any) {
	start := time.Now()
	state := delta
	if c.Templates != nil {
		state = c.Templates.Snapshot(c.ComponentID)
		for k, v := range delta {
			state[k] = v
		}
	}

	patches, errs := template.MaterializeAll(h.Patches, state)
	for _, err := range errs {
		c.logger().Warn("hooks: hint materialization failed", "component", c.ComponentID, "hintId", h.HintID, "err", err)
	}
	if c.Engine != nil && c.Root != nil {
		c.Engine.ApplyPatches(c.Root, patches)
	}
	c.logger().Debug("hooks: applied matched hint", "component", c.ComponentID, "hintId", h.HintID, "latency", time.Since(start))
}

func (c *Context) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
