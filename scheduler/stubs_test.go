package scheduler

import (
	"sync"

	"github.com/richinsley/gocompositor/timeline"
)

// stubRenderer is a call-counting CompositionRenderer for tests.
type stubRenderer struct {
	mu           sync.Mutex
	prepareCalls map[string]int
	prepareReady bool
	prepareErr   error
	prepareGate  chan struct{} // when non-nil, PrepareComposition blocks until closed
	ready        map[string]bool
	evalCalls    int
	layers       []timeline.Layer
	evalErr      error
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{
		prepareCalls: make(map[string]int),
		prepareReady: true,
		ready:        make(map[string]bool),
	}
}

func (r *stubRenderer) PrepareComposition(compositionID string) (bool, error) {
	r.mu.Lock()
	r.prepareCalls[compositionID]++
	gate := r.prepareGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return r.prepareReady, r.prepareErr
}

func (r *stubRenderer) IsReady(compositionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready[compositionID]
}

func (r *stubRenderer) EvaluateAtTime(compositionID string, t float64) ([]timeline.Layer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evalCalls++
	return r.layers, r.evalErr
}

func (r *stubRenderer) prepareCount(compositionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prepareCalls[compositionID]
}

func (r *stubRenderer) evalCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evalCalls
}

type renderCall struct {
	targetID string
	layers   []timeline.Layer
}

// stubGPU records dispatches.
type stubGPU struct {
	mu         sync.Mutex
	renders    []renderCall
	renderErrs map[string]error // per-target render failure
	renderHook func(targetID string)
	copyCalls  int
	copyResult bool
	exporting  bool
}

func newStubGPU() *stubGPU {
	return &stubGPU{renderErrs: make(map[string]error)}
}

func (g *stubGPU) RenderToPreviewCanvas(targetID string, layers []timeline.Layer) error {
	g.mu.Lock()
	g.renders = append(g.renders, renderCall{targetID: targetID, layers: layers})
	err := g.renderErrs[targetID]
	hook := g.renderHook
	g.mu.Unlock()
	if hook != nil {
		hook(targetID)
	}
	return err
}

func (g *stubGPU) CopyNestedCompTextureToPreview(targetID, compositionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.copyCalls++
	return g.copyResult
}

func (g *stubGPU) IsExporting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exporting
}

func (g *stubGPU) setExporting(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exporting = v
}

func (g *stubGPU) renderCalls() []renderCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]renderCall, len(g.renders))
	copy(out, g.renders)
	return out
}

// countingStore wraps clip data and counts main-timeline scans.
type countingStore struct {
	mu             sync.Mutex
	activeID       string
	playhead       float64
	clips          []timeline.Clip
	comps          map[string]timeline.Composition
	mainClipsCalls int
}

func newCountingStore() *countingStore {
	return &countingStore{comps: make(map[string]timeline.Composition)}
}

func (s *countingStore) ActiveCompositionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *countingStore) MainPlayhead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead
}

func (s *countingStore) MainClips() []timeline.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mainClipsCalls++
	return s.clips
}

func (s *countingStore) Composition(id string) (timeline.Composition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comps[id]
	return c, ok
}

func (s *countingStore) scanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mainClipsCalls
}
