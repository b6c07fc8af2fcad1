package hint

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/minimact/client-go/pkg/vdom"
)

// MaxTTL is the hard ceiling on a hint's lifetime (5s).
const MaxTTL = 5 * time.Second

// Hint is a speculative (predictedState → patches) bundle queued by the
// server ahead of an expected state change.
type Hint struct {
	ComponentID    string
	HintID         string
	Patches        []vdom.Patch
	Confidence     float64
	PredictedState map[string]any
	QueuedAt       time.Time
	IsTemplate     bool
}

func (h *Hint) key() string { return h.ComponentID + ":" + h.HintID }

// Queue is the per-client hint cache. Queue is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	ttl   time.Duration
	hints map[string]*Hint
	now   func() time.Time
}

// New constructs a Queue with the given TTL, clamped to MaxTTL.
func New(ttl time.Duration) *Queue {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock constructs a Queue with an injectable clock, for testing
// TTL expiry deterministically.
func NewWithClock(ttl time.Duration, now func() time.Time) *Queue {
	if ttl <= 0 || ttl > MaxTTL {
		ttl = MaxTTL
	}
	return &Queue{ttl: ttl, hints: make(map[string]*Hint), now: now}
}

// QueueHint stores or replaces a hint, keyed by componentId:hintId.
// QueuedAt is stamped if unset.
func (q *Queue) QueueHint(h *Hint) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked()
	if h.QueuedAt.IsZero() {
		h.QueuedAt = q.now()
	}
	q.hints[h.key()] = h
}

// Match looks for a queued hint for componentID whose predictedState is a
// subset of delta (every predicted key present in delta with an equal
// value, by canonical serialization. A matched hint is removed from the
// queue on first use.
func (q *Queue) Match(componentID string, delta map[string]any) (*Hint, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked()
	for key, h := range q.hints {
		if h.ComponentID != componentID {
			continue
		}
		if subsetMatches(h.PredictedState, delta) {
			delete(q.hints, key)
			return h, true
		}
	}
	return nil, false
}

// MatchByKey looks up a hint directly by its componentId:hintId key,
// rather than by subset-matching a state delta — used by event
// delegation's method-derived hint consultation, as distinct from the
// state-change subset match used by Match. A matched hint is removed
// from the queue on first use.
func (q *Queue) MatchByKey(componentID, hintID string) (*Hint, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked()
	key := componentID + ":" + hintID
	h, ok := q.hints[key]
	if !ok || h.ComponentID != componentID {
		return nil, false
	}
	delete(q.hints, key)
	return h, true
}

// Len reports the number of live (non-expired) queued hints.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()
	return len(q.hints)
}

// sweepLocked drops expired hints. Must be called with mu held.
func (q *Queue) sweepLocked() {
	now := q.now()
	for key, h := range q.hints {
		if now.Sub(h.QueuedAt) > q.ttl {
			delete(q.hints, key)
		}
	}
}

func subsetMatches(predicted, delta map[string]any) bool {
	for k, v := range predicted {
		dv, ok := delta[k]
		if !ok || !valuesEqual(v, dv) {
			return false
		}
	}
	return true
}

// valuesEqual compares two state values by canonical JSON encoding, since
// predicted values may themselves be nested objects or arrays whose key
// order must not affect equality (Go's encoding/json already sorts object
// keys on Marshal, making this canonical).
func valuesEqual(a, b any) bool {
	ab, aerr := json.Marshal(a)
	bb, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
