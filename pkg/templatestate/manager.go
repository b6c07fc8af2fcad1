package templatestate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/minimact/client-go/pkg/template"
	"github.com/minimact/client-go/pkg/vdom"
	"golang.org/x/net/html"
)

// EntryKind discriminates the two template shapes a node-path can be
// registered with.
type EntryKind uint8

const (
	EntryText EntryKind = iota
	EntryProp
)

// Entry is a stored template bound to one node path.
type Entry struct {
	Kind     EntryKind
	Path     vdom.Path
	Text     *vdom.TemplatePatch // EntryText
	PropName string              // EntryProp
	Prop     *vdom.TemplatePatch // EntryProp
}

func (e *Entry) bindings() []vdom.Binding {
	if e.Kind == EntryText {
		return e.Text.Bindings
	}
	return e.Prop.Bindings
}

func (e *Entry) bindsKey(stateKey string) bool {
	for _, b := range e.bindings() {
		if b.StateKey == stateKey {
			return true
		}
	}
	return false
}

// Manager is the persistent componentId+nodePath -> Template map and
// per-component stateKey -> value cache. Manager is safe for concurrent
// use.
type Manager struct {
	engine *vdom.Engine

	mu         sync.Mutex
	templates  map[string]map[string]*Entry // componentID -> pathKey -> entry
	stateCache map[string]map[string]any    // componentID -> stateKey -> value
}

// New constructs a Manager. engine is used to apply the concrete patches
// produced when re-rendering a bound template.
func New(engine *vdom.Engine) *Manager {
	return &Manager{
		engine:     engine,
		templates:  make(map[string]map[string]*Entry),
		stateCache: make(map[string]map[string]any),
	}
}

func pathKey(p vdom.Path) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, "_")
}

// Register stores (or replaces) the template bound at componentID+path.
func (m *Manager) Register(componentID string, entry *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerLocked(componentID, entry)
}

func (m *Manager) registerLocked(componentID string, entry *Entry) {
	if m.templates[componentID] == nil {
		m.templates[componentID] = make(map[string]*Entry)
	}
	m.templates[componentID][pathKey(entry.Path)] = entry
}

// SetState stores a new value in the per-component state cache, keeping
// it in sync with the Hook Runtime's own state cells.
func (m *Manager) SetState(componentID, stateKey string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stateCache[componentID] == nil {
		m.stateCache[componentID] = make(map[string]any)
	}
	m.stateCache[componentID][stateKey] = value
}

// Snapshot returns a copy of componentID's current state cache, suitable
// for passing to the Template Renderer.
func (m *Manager) Snapshot(componentID string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.stateCache[componentID]
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// RenderBindings re-renders every stored template for componentID whose
// bindings include stateKey, applying the result directly to root through
// the patch engine.
func (m *Manager) RenderBindings(componentID string, root *html.Node, stateKey string) []error {
	m.mu.Lock()
	entries := m.templates[componentID]
	state := m.stateCacheCopyLocked(componentID)
	m.mu.Unlock()

	var errs []error
	for _, entry := range entries {
		if !entry.bindsKey(stateKey) {
			continue
		}
		if err := m.renderEntry(root, state, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ApplyTemplatePatch updates or inserts the stored template at
// componentID+path and immediately re-renders the addressed DOM node, for
// use by hot reload.
func (m *Manager) ApplyTemplatePatch(componentID string, root *html.Node, entry *Entry) error {
	m.mu.Lock()
	m.registerLocked(componentID, entry)
	state := m.stateCacheCopyLocked(componentID)
	m.mu.Unlock()

	return m.renderEntry(root, state, entry)
}

func (m *Manager) stateCacheCopyLocked(componentID string) map[string]any {
	src := m.stateCache[componentID]
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (m *Manager) renderEntry(root *html.Node, state map[string]any, entry *Entry) error {
	switch entry.Kind {
	case EntryText:
		content, err := template.RenderTemplatePatch(entry.Text, state)
		if err != nil {
			return err
		}
		m.engine.ApplyPatches(root, []vdom.Patch{vdom.NewUpdateText(entry.Path, content)})
		return nil
	case EntryProp:
		content, err := template.RenderTemplatePatch(entry.Prop, state)
		if err != nil {
			return err
		}
		m.engine.ApplyPatches(root, []vdom.Patch{vdom.NewUpdateProps(entry.Path, vdom.Props{entry.PropName: content})})
		return nil
	default:
		return fmt.Errorf("templatestate: unknown entry kind %d", entry.Kind)
	}
}
