package scheduler

import (
	"sync"

	"github.com/charmbracelet/log"
)

// PrepareFunc starts a (possibly slow) composition preparation and reports
// whether the composition ended up ready.
type PrepareFunc func(compositionID string) (bool, error)

// preparation is the in-flight/prepared handle for one composition id.
type preparation struct {
	settled bool
}

// PreparationTracker dedups concurrent "prepare this composition" requests.
// Any number of call sites may ask for the same id; exactly one underlying
// preparation runs until it settles. A failed preparation removes its entry,
// leaving the id eligible for retry by any future caller.
type PreparationTracker struct {
	mu      sync.Mutex
	prepare PrepareFunc
	log     *log.Logger
	preps   map[string]*preparation
}

func NewPreparationTracker(prepare PrepareFunc, logger *log.Logger) *PreparationTracker {
	if logger == nil {
		logger = log.Default()
	}
	return &PreparationTracker{
		prepare: prepare,
		log:     logger,
		preps:   make(map[string]*preparation),
	}
}

// EnsurePrepared requests preparation of a composition. No-op when the id is
// already prepared or a preparation is in flight. Never blocks; the caller
// observes completion later through the renderer's readiness predicate.
func (t *PreparationTracker) EnsurePrepared(compositionID string) {
	if compositionID == "" {
		return
	}

	t.mu.Lock()
	if _, ok := t.preps[compositionID]; ok {
		t.mu.Unlock()
		return
	}
	p := &preparation{}
	t.preps[compositionID] = p
	t.mu.Unlock()

	t.log.Debugf("preparing composition %s", compositionID)
	go t.run(compositionID, p)
}

// Preparing reports whether a preparation for the id is currently in flight.
func (t *PreparationTracker) Preparing(compositionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.preps[compositionID]
	return ok && !p.settled
}

// Prepared reports whether the id settled successfully.
func (t *PreparationTracker) Prepared(compositionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.preps[compositionID]
	return ok && p.settled
}

func (t *PreparationTracker) run(compositionID string, p *preparation) {
	ready, err := t.prepare(compositionID)

	t.mu.Lock()
	defer t.mu.Unlock()
	p.settled = true
	if err != nil || !ready {
		// Clear the marker so a later caller can retry.
		delete(t.preps, compositionID)
		if err != nil {
			t.log.Warnf("preparation of composition %s failed: %v", compositionID, err)
		} else {
			t.log.Debugf("composition %s did not become ready", compositionID)
		}
		return
	}
	t.log.Debugf("composition %s prepared", compositionID)
}
