package targets

import (
	"sync"

	"github.com/richinsley/gocompositor/timeline"
)

// MemRegistry is an in-memory Registry with deck-slot assignments, used by
// the demo binary and tests. Safe for concurrent use.
type MemRegistry struct {
	mu      sync.RWMutex
	store   timeline.Store
	targets map[string]Target
	slots   map[int]string // slot index -> composition id
}

func NewMemRegistry(store timeline.Store) *MemRegistry {
	return &MemRegistry{
		store:   store,
		targets: make(map[string]Target),
		slots:   make(map[int]string),
	}
}

func (r *MemRegistry) Target(id string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	return t, ok
}

func (r *MemRegistry) Put(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[t.ID] = t
}

func (r *MemRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.targets, id)
}

// SetSource replaces a target's source wholesale.
func (r *MemRegistry) SetSource(id string, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[id]; ok {
		t.Source = src
		r.targets[id] = t
	}
}

func (r *MemRegistry) SetEnabled(id string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[id]; ok {
		t.Enabled = enabled
		r.targets[id] = t
	}
}

// AssignSlot loads a composition into a deck slot. An empty composition id
// clears the slot.
func (r *MemRegistry) AssignSlot(index int, compositionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if compositionID == "" {
		delete(r.slots, index)
		return
	}
	r.slots[index] = compositionID
}

func (r *MemRegistry) ResolveSourceToCompID(src Source) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch src.Kind {
	case SourceActiveComp, SourceProgram:
		// The program bus follows the active composition.
		id := r.store.ActiveCompositionID()
		return id, id != ""
	case SourceComposition, SourceLayer, SourceLayerIndex:
		if src.CompositionID == "" {
			return "", false
		}
		if _, ok := r.store.Composition(src.CompositionID); !ok {
			return "", false
		}
		return src.CompositionID, true
	case SourceSlot:
		id, ok := r.slots[src.SlotIndex]
		return id, ok
	default:
		return "", false
	}
}
