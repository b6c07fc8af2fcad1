package eventdelegate

import (
	"context"
	"strings"

	"github.com/minimact/client-go/pkg/hint"
	"github.com/minimact/client-go/pkg/protocol"
	"github.com/minimact/client-go/pkg/template"
	"github.com/minimact/client-go/pkg/templatestate"
	"github.com/minimact/client-go/pkg/vdom"
	"golang.org/x/net/html"
)

// SupportedEventTypes is the event vocabulary handled by one capture-phase
// listener each.
var SupportedEventTypes = []string{
	"click", "dblclick", "input", "change", "submit", "focus", "blur",
	"keydown", "keyup", "keypress", "mouseenter", "mouseleave",
	"mouseover", "mouseout",
}

const componentIDAttr = "data-minimact-component-id"

// Invocation is the resolved method call ready to consult the Hint Queue
// and/or forward to the server.
type Invocation struct {
	ComponentID string
	Method      string
	Args        []any

	// PreventDefault is true for "submit" events.
	PreventDefault bool
}

// Sender forwards a resolved invocation to the server, typically via the
// Message Buffer.
type Sender func(ctx context.Context, msg *protocol.Message) error

// Dispatcher owns the hint-consultation and server-forwarding behavior
// shared by every delegated event type.
type Dispatcher struct {
	Root      *html.Node
	Hints     *hint.Queue
	Engine    *vdom.Engine
	Templates *templatestate.Manager
	Send      Sender

	// OnHintApplied, if set, is invoked whenever a queued hint matched and
	// its patches were applied ahead of the server's confirmation.
	OnHintApplied func(h *hint.Hint)
}

// HandleEvent resolves the nearest handler for (target, eventType),
// assembles its invocation, consults the Hint Queue, applies any matched
// patches immediately, and forwards the invocation to the server — in the
// background if a hint already applied (reconciliation), synchronously
// otherwise. It reports false if no handler attribute was found walking
// from target to Root.
func (d *Dispatcher) HandleEvent(target *html.Node, eventType, targetValue string) (*Invocation, bool) {
	el, spec, ok := FindHandler(target, d.Root, eventType)
	if !ok {
		return nil, false
	}

	method, literalArgs := ParseHandlerSpec(spec)
	componentID, _ := ComponentIDFor(el)
	inv := &Invocation{
		ComponentID:    componentID,
		Method:         method,
		Args:           AssembleArgs(eventType, targetValue, literalArgs),
		PreventDefault: eventType == "submit",
	}

	hintApplied := false
	if d.Hints != nil {
		if h, found := d.Hints.MatchByKey(componentID, method); found {
			d.applyHint(h)
			hintApplied = true
		}
	}

	if d.Send != nil {
		msg := protocol.NewInvocation("", "InvokeMethod", inv.ComponentID, inv.Method, inv.Args)
		if hintApplied {
			go d.Send(context.Background(), msg) //nolint:errcheck // best-effort background reconciliation
		} else {
			_ = d.Send(context.Background(), msg)
		}
	}

	return inv, true
}

func (d *Dispatcher) applyHint(h *hint.Hint) {
	state := map[string]any{}
	if d.Templates != nil {
		state = d.Templates.Snapshot(h.ComponentID)
	}
	patches, _ := template.MaterializeAll(h.Patches, state)
	if d.Engine != nil && d.Root != nil {
		d.Engine.ApplyPatches(d.Root, patches)
	}
	if d.OnHintApplied != nil {
		d.OnHintApplied(h)
	}
}

// FindHandler walks from target up to (and including) root, returning the
// first element carrying a data-on<type> or legacy on<type> attribute.
func FindHandler(target, root *html.Node, eventType string) (el *html.Node, spec string, ok bool) {
	dataAttr, legacyAttr := "data-on"+eventType, "on"+eventType
	for n := target; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			if v, found := vdom.Attr(n, dataAttr); found {
				return n, v, true
			}
			if v, found := vdom.Attr(n, legacyAttr); found {
				return n, v, true
			}
		}
		if n == root {
			break
		}
	}
	return nil, "", false
}

// ParseHandlerSpec parses "methodName[:arg1[:arg2…]]".
func ParseHandlerSpec(spec string) (method string, args []string) {
	parts := strings.Split(spec, ":")
	return parts[0], parts[1:]
}

// ComponentIDFor walks up from el looking for the nearest
// data-minimact-component-id attribute.
func ComponentIDFor(el *html.Node) (string, bool) {
	for n := el; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			if v, found := vdom.Attr(n, componentIDAttr); found {
				return v, true
			}
		}
	}
	return "", false
}

// AssembleArgs builds the invocation args array: for
// input/change events, targetValue is prepended; then the colon-delimited
// literal args, in order.
func AssembleArgs(eventType, targetValue string, literalArgs []string) []any {
	var args []any
	if eventType == "input" || eventType == "change" {
		args = append(args, targetValue)
	}
	for _, a := range literalArgs {
		args = append(args, a)
	}
	return args
}
