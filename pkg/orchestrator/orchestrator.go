package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/minimact/client-go/pkg/buffer"
	"github.com/minimact/client-go/pkg/computed"
	"github.com/minimact/client-go/pkg/eventdelegate"
	"github.com/minimact/client-go/pkg/hint"
	"github.com/minimact/client-go/pkg/hooks"
	"github.com/minimact/client-go/pkg/hydrate"
	"github.com/minimact/client-go/pkg/protocol"
	"github.com/minimact/client-go/pkg/pubsub"
	"github.com/minimact/client-go/pkg/template"
	"github.com/minimact/client-go/pkg/templatestate"
	"github.com/minimact/client-go/pkg/transport"
	"github.com/minimact/client-go/pkg/vdom"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

// Instance is one hydrated, live component: its DOM subtree, its hook
// frame, and the event dispatcher scoped to it.
type Instance struct {
	ID         string
	Root       *html.Node
	Hooks      *hooks.Context
	Dispatcher *eventdelegate.Dispatcher
}

// Orchestrator wires the Transport Adapter, Message Buffer, Patch
// Engine, Hint Queue, Template State Manager, and Client-Computed
// Registry together and routes server-pushed invocations to the right
// collaborator.
type Orchestrator struct {
	cfg Config

	Transport *transport.Adapter
	Buffer    *buffer.Buffer
	Engine    *vdom.Engine
	Hints     *hint.Queue
	Templates *templatestate.Manager
	Computed  *computed.Registry
	Events    *pubsub.Bus
	Hydrator  *hydrate.Hydrator

	// Metrics and Registry are private to this Orchestrator instance (not
	// prometheus.DefaultRegisterer), so multiple Orchestrators can coexist
	// in one process without a duplicate-collector panic. debugserver
	// serves Registry directly.
	Metrics  *Metrics
	Registry *prometheus.Registry

	log    *slog.Logger
	tracer trace.Tracer

	mu        sync.Mutex
	instances map[string]*Instance
}

// New constructs an Orchestrator and wires its collaborators, but does
// not dial the transport; call Start for that.
func New(cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()

	engine := vdom.NewEngine(cfg.Logger)
	templates := templatestate.New(engine)
	hintTTL := cfg.HintTTL
	if hintTTL <= 0 {
		hintTTL = hint.MaxTTL
	}
	hints := hint.New(hintTTL)
	registry := prometheus.NewRegistry()

	o := &Orchestrator{
		cfg:       cfg,
		Engine:    engine,
		Hints:     hints,
		Templates: templates,
		Computed:  computed.New(templates.Snapshot),
		Events:    pubsub.New(),
		Registry:  registry,
		Metrics:   NewMetrics(registry),
		instances: make(map[string]*Instance),
		log:       cfg.Logger,
		tracer:    otel.Tracer("github.com/minimact/client-go/pkg/orchestrator"),
	}

	o.Buffer = buffer.New(cfg.Buffer, func(ack *protocol.Message) {
		_ = o.sendRaw(context.Background(), ack)
	})

	o.Transport = transport.New(cfg.transportConfig())
	o.Transport.SetOnReceive(o.handleFrame)
	o.Transport.SetOnReconnected(o.handleReconnected)
	o.Transport.SetOnClose(o.handleClose)

	o.Hydrator = &hydrate.Hydrator{Send: o.Send}

	return o
}

// Start dials the transport and begins processing inbound frames.
func (o *Orchestrator) Start(ctx context.Context) error {
	return o.Transport.Start(ctx, o.cfg.TransferFormat)
}

// Stop closes the transport without triggering reconnect.
func (o *Orchestrator) Stop() error {
	return o.Transport.Stop()
}

// Boot hydrates doc, registering one Instance per discovered component.
func (o *Orchestrator) Boot(ctx context.Context, doc *html.Node) ([]*Instance, error) {
	components, err := o.Hydrator.Hydrate(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: hydrate: %w", err)
	}

	instances := make([]*Instance, 0, len(components))
	for _, comp := range components {
		instances = append(instances, o.registerInstance(comp))
	}
	return instances, nil
}

func (o *Orchestrator) registerInstance(comp *hydrate.Component) *Instance {
	for _, seed := range comp.StateSeeds {
		o.Templates.SetState(comp.ID, seed.Key, seed.InitialValue)
	}

	h := hooks.NewContext(comp.ID, comp.Root, o.Hints, o.Templates, o.Engine, o.Send)
	inst := &Instance{
		ID:    comp.ID,
		Root:  comp.Root,
		Hooks: h,
		Dispatcher: &eventdelegate.Dispatcher{
			Root:      comp.Root,
			Hints:     o.Hints,
			Engine:    o.Engine,
			Templates: o.Templates,
			Send:      o.Send,
			OnHintApplied: func(h *hint.Hint) {
				o.Metrics.HintsMatched.Inc()
				o.Events.Publish(pubsub.TopicHintMatched, h)
			},
		},
	}

	o.mu.Lock()
	o.instances[comp.ID] = inst
	o.mu.Unlock()
	o.Metrics.ComponentsAlive.Inc()

	return inst
}

// Instance returns the registered Instance for id, if any.
func (o *Orchestrator) Instance(id string) (*Instance, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	inst, ok := o.instances[id]
	return inst, ok
}

// Snapshot is a point-in-time view of live Orchestrator state, used by
// pkg/orchestrator/debugserver and `minimact inspect`.
type Snapshot struct {
	ComponentIDs []string `json:"componentIds"`
	HintsQueued  int      `json:"hintsQueued"`
	PendingBytes int      `json:"pendingBytes"`
	PendingCount int      `json:"pendingCount"`
}

// Snapshot captures the current component set, hint queue depth, and
// outbound buffer occupancy.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	ids := make([]string, 0, len(o.instances))
	for id := range o.instances {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	return Snapshot{
		ComponentIDs: ids,
		HintsQueued:  o.Hints.Len(),
		PendingBytes: o.Buffer.PendingBytes(),
		PendingCount: o.Buffer.PendingCount(),
	}
}

// Send funnels an outbound invocation through the Message Buffer's
// backpressure gate before writing it to the wire.
func (o *Orchestrator) Send(ctx context.Context, msg *protocol.Message) error {
	prepared, err := o.Buffer.PrepareOutbound(ctx, msg)
	if err != nil {
		return err
	}
	return o.sendRaw(ctx, prepared)
}

// sendRaw writes msg directly to the transport. It marshals with plain
// encoding/json rather than protocol.EncodeFrame: Transport.Send already
// appends the record-separator terminator itself, and double-appending
// it would corrupt the next frame boundary.
func (o *Orchestrator) sendRaw(_ context.Context, msg *protocol.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("orchestrator: marshal outbound message: %w", err)
	}
	return o.Transport.Send(b, o.cfg.TransferFormat)
}

// handleReconnected resumes the wire protocol after the transport
// re-establishes a connection: it gates further inbound invocations on a
// fresh Sequence from the server, advertises the last inbound sequence id
// this side has processed, replays every still-unacked outbound message in
// its original order, and only then re-registers components.
func (o *Orchestrator) handleReconnected() {
	o.log.Info("orchestrator: reconnected, resuming sequence and resending buffered messages")
	o.Metrics.Reconnects.Inc()

	lastInSeq := o.Buffer.BeginReconnect()
	if err := o.sendRaw(context.Background(), protocol.NewSequence(lastInSeq)); err != nil {
		o.log.Warn("orchestrator: failed to send resume sequence", "error", err)
	}

	for _, msg := range o.Buffer.ResendAll() {
		if err := o.sendRaw(context.Background(), msg); err != nil {
			o.log.Warn("orchestrator: resend failed", "sequence", msg.SequenceID, "error", err)
		}
	}

	o.mu.Lock()
	ids := make([]string, 0, len(o.instances))
	for id := range o.instances {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	for _, id := range ids {
		msg := protocol.NewInvocation("", "RegisterComponent", id)
		if err := o.sendRaw(context.Background(), msg); err != nil {
			o.log.Warn("orchestrator: re-register failed", "component", id, "error", err)
		}
	}

	o.Events.Publish(pubsub.TopicConnectionState, "reconnected")
}

func (o *Orchestrator) handleClose(err error, allowReconnect bool) {
	o.log.Warn("orchestrator: transport closed", "error", err, "allowReconnect", allowReconnect)
	o.Events.Publish(pubsub.TopicConnectionState, "closed")
}

// handleFrame decodes one inbound wire frame and routes it by message
// type and, for invocation-class messages, by target.
func (o *Orchestrator) handleFrame(frame []byte) {
	o.Metrics.FramesReceived.Inc()

	msg, err := protocol.DecodeFrame(frame)
	if err != nil {
		o.log.Warn("orchestrator: discarding malformed frame", "error", err)
		return
	}

	o.routeMessage(msg)
}

// InjectFrame feeds a wire-encoded frame through the same routing path a
// frame received over the transport would take. It exists for offline
// replay of captured fixtures (see cmd/minimact replay) and tests; the
// live Transport path never calls it.
func (o *Orchestrator) InjectFrame(frame []byte) error {
	o.Metrics.FramesReceived.Inc()

	msg, err := protocol.DecodeFrame(frame)
	if err != nil {
		return err
	}

	o.routeMessage(msg)
	return nil
}

func (o *Orchestrator) routeMessage(msg *protocol.Message) {
	ctx, span := o.tracer.Start(context.Background(), "orchestrator.handleFrame")
	defer span.End()

	switch msg.Type {
	case protocol.TypeAck:
		o.Buffer.Ack(msg.SequenceID)
		return
	case protocol.TypePing:
		return
	case protocol.TypeClose:
		o.log.Info("orchestrator: server closed connection", "error", msg.Error, "allowReconnect", msg.AllowReconnect)
		return
	}

	accept, err := o.Buffer.HandleInbound(msg)
	if err != nil {
		if errors.Is(err, buffer.ErrFatalSequenceViolation) {
			o.log.Error("orchestrator: fatal sequence violation, stopping connection", "error", err)
			if stopErr := o.Transport.Stop(); stopErr != nil {
				o.log.Warn("orchestrator: stop after fatal sequence violation failed", "error", stopErr)
			}
			return
		}
		o.log.Warn("orchestrator: rejecting inbound message", "error", err)
		return
	}
	if !accept {
		return
	}

	o.dispatchInvocation(ctx, msg)
}

func (o *Orchestrator) dispatchInvocation(ctx context.Context, msg *protocol.Message) {
	switch msg.Target {
	case "UpdateComponent":
		o.handleUpdateComponent(msg)
	case "ApplyPatches":
		o.handleApplyPatches(msg, false)
	case "ApplyPrediction":
		o.handleApplyPatches(msg, false)
	case "ApplyCorrection":
		o.handleApplyPatches(msg, true)
	case "QueueHint":
		o.handleQueueHint(msg)
	default:
		o.log.Debug("orchestrator: no handler for invocation target", "target", msg.Target)
	}
}

func (o *Orchestrator) handleUpdateComponent(msg *protocol.Message) {
	args, err := protocol.DecodeArgument[protocol.UpdateComponentArgs](msg, 0)
	if err != nil {
		o.log.Warn("orchestrator: decode UpdateComponent", "error", err)
		return
	}

	inst, ok := o.Instance(args.ComponentID)
	if !ok {
		o.log.Warn("orchestrator: UpdateComponent for unknown component", "component", args.ComponentID)
		return
	}

	if err := replaceHTML(inst.Root, args.HTML); err != nil {
		o.log.Warn("orchestrator: replace component markup", "component", args.ComponentID, "error", err)
	}
}

// handleApplyPatches services ApplyPatches, ApplyPrediction, and
// ApplyCorrection: all three deliver a patch batch against a live
// component's root; a correction additionally overrides whatever a
// previously-applied hint guessed.
func (o *Orchestrator) handleApplyPatches(msg *protocol.Message, isCorrection bool) {
	args, err := protocol.DecodeArgument[protocol.ApplyPatchesArgs](msg, 0)
	if err != nil {
		o.log.Warn("orchestrator: decode patches", "target", msg.Target, "error", err)
		return
	}

	inst, ok := o.Instance(args.ComponentID)
	if !ok {
		o.log.Warn("orchestrator: patches for unknown component", "component", args.ComponentID)
		return
	}

	state := o.Templates.Snapshot(args.ComponentID)
	patches, errs := template.MaterializeAll(args.Patches, state)
	for _, e := range errs {
		o.log.Warn("orchestrator: materialize patch", "component", args.ComponentID, "error", e)
	}

	o.Engine.ApplyPatches(inst.Root, patches)
	o.Metrics.PatchesApplied.Add(float64(len(patches)))

	if isCorrection {
		o.log.Debug("orchestrator: applied server correction", "component", args.ComponentID)
	}
}

func (o *Orchestrator) handleQueueHint(msg *protocol.Message) {
	args, err := protocol.DecodeArgument[protocol.QueueHintArgs](msg, 0)
	if err != nil {
		o.log.Warn("orchestrator: decode QueueHint", "error", err)
		return
	}

	o.Hints.QueueHint(&hint.Hint{
		ComponentID:    args.ComponentID,
		HintID:         args.HintID,
		Patches:        args.Patches,
		Confidence:     args.Confidence,
		PredictedState: args.PredictedState,
		IsTemplate:     args.IsTemplate,
	})

	o.Metrics.HintsQueued.Inc()
	o.Events.Publish(pubsub.TopicHintQueued, args)
}

// replaceHTML parses markup and swaps it in as root's children, used for
// the full-subtree replacement UpdateComponent requests.
func replaceHTML(root *html.Node, markup string) error {
	fragment, err := vdom.ParseFragment(markup)
	if err != nil {
		return fmt.Errorf("parse replacement markup: %w", err)
	}

	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		root.RemoveChild(c)
		c = next
	}
	for c := fragment.FirstChild; c != nil; {
		next := c.NextSibling
		fragment.RemoveChild(c)
		root.AppendChild(c)
		c = next
	}
	return nil
}
