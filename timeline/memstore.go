package timeline

import "sync"

// MemStore is an in-memory Store used by the demo binary and tests. All
// methods are safe for concurrent use.
type MemStore struct {
	mu           sync.RWMutex
	activeCompID string
	mainPlayhead float64
	mainClips    []Clip
	comps        map[string]Composition
}

func NewMemStore() *MemStore {
	return &MemStore{
		comps: make(map[string]Composition),
	}
}

func (s *MemStore) ActiveCompositionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCompID
}

func (s *MemStore) SetActiveCompositionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCompID = id
}

func (s *MemStore) MainPlayhead() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mainPlayhead
}

func (s *MemStore) SetMainPlayhead(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mainPlayhead = t
}

func (s *MemStore) MainClips() []Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Clip, len(s.mainClips))
	copy(out, s.mainClips)
	return out
}

func (s *MemStore) SetMainClips(clips []Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mainClips = make([]Clip, len(clips))
	copy(s.mainClips, clips)
}

func (s *MemStore) Composition(id string) (Composition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comps[id]
	return c, ok
}

func (s *MemStore) PutComposition(c Composition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comps[c.ID] = c
}
