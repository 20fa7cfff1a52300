package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/petermattis/goid"

	"github.com/richinsley/gocompositor/options"
	"github.com/richinsley/gocompositor/targets"
	"github.com/richinsley/gocompositor/timeline"
)

// Scheduler decides, once per frame, what every registered render target
// should show and whether that content can be reused, freshly rendered, or
// skipped. It never touches pixels itself; all drawing is delegated to the
// injected GPUExecutor and all evaluation to the CompositionRenderer.
//
// One shared tick drives all targets. The loop runs iff the registered set is
// non-empty: it starts on the first Register and stops exactly when the set
// becomes empty. Disabled-but-registered targets keep the loop ticking; their
// render is skipped per tick.
type Scheduler struct {
	store    timeline.Store
	registry targets.Registry
	comp     CompositionRenderer
	gpu      GPUExecutor
	opts     *options.SchedulerOptions
	log      *log.Logger

	nested   *NestedCompCache
	playhead *PlayheadCalculator
	prep     *PreparationTracker

	mu         sync.Mutex
	registered map[string]struct{}
	running    bool
	stop       chan struct{}
	lastTick   time.Time
	now        func() time.Time

	// goroutine id of an in-progress dispatch pass, 0 otherwise. Guards
	// against ForceRender recursing out of an executor callback.
	dispatchGID atomic.Int64
}

func New(store timeline.Store, registry targets.Registry, comp CompositionRenderer, gpu GPUExecutor, opts *options.SchedulerOptions, logger *log.Logger) *Scheduler {
	if opts == nil {
		opts = &options.SchedulerOptions{}
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Scheduler{
		store:      store,
		registry:   registry,
		comp:       comp,
		gpu:        gpu,
		opts:       opts,
		log:        logger,
		registered: make(map[string]struct{}),
		now:        time.Now,
	}
	s.nested = NewNestedCompCache(store, opts.NestedCacheTTLDuration())
	s.playhead = NewPlayheadCalculator(store, s.nested)
	s.prep = NewPreparationTracker(comp.PrepareComposition, logger)
	return s
}

// Register adds a target to the frame loop. Idempotent: registering an
// already-registered id does nothing. The first registration starts the loop;
// the target's resolved composition is queued for preparation so it is
// renderable by the time the next ticks reach it.
func (s *Scheduler) Register(targetID string) {
	s.mu.Lock()
	if _, ok := s.registered[targetID]; ok {
		s.mu.Unlock()
		return
	}
	s.registered[targetID] = struct{}{}
	s.startLoopLocked()
	s.mu.Unlock()

	s.log.Debugf("registered render target %s", targetID)
	s.prepareTargetSource(targetID)
}

// Unregister removes a target. Takes effect on the very next tick; the loop
// stops iff the registered set becomes empty. An in-flight preparation for a
// composition with no remaining consumer completes harmlessly.
func (s *Scheduler) Unregister(targetID string) {
	s.mu.Lock()
	if _, ok := s.registered[targetID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.registered, targetID)
	if len(s.registered) == 0 {
		s.stopLoopLocked()
	}
	s.mu.Unlock()

	s.log.Debugf("unregistered render target %s", targetID)
}

// UpdateTargetSource re-resolves a registered target's source and queues the
// newly-resolved composition for preparation. No-op for unregistered ids.
func (s *Scheduler) UpdateTargetSource(targetID string) {
	s.mu.Lock()
	_, ok := s.registered[targetID]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.prepareTargetSource(targetID)
}

// ForceRender clears the nested cache and runs one dispatch pass
// synchronously, independent of the timer. Rejected when called from inside a
// dispatch callback, which would recurse the dispatcher.
func (s *Scheduler) ForceRender() {
	if gid := s.dispatchGID.Load(); gid != 0 && gid == goid.Get() {
		s.log.Warnf("ForceRender called from inside a dispatch pass; ignoring")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nested.Invalidate()
	s.dispatchLocked()
}

// InvalidateNestedCache drops the nested-composition cache; the next lookup
// rescans the main timeline. Call when clip data is known to have changed.
func (s *Scheduler) InvalidateNestedCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nested.Invalidate()
}

// TargetDebug is a read-only snapshot of one registered target's resolution.
type TargetDebug struct {
	TargetID      string
	Source        targets.Source
	CompositionID string
}

// Debug is a read-only snapshot of the scheduler's run state.
type Debug struct {
	Running  bool
	LastTick time.Time
	Targets  []TargetDebug
}

func (s *Scheduler) DebugInfo() Debug {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := Debug{Running: s.running, LastTick: s.lastTick}
	for id := range s.registered {
		td := TargetDebug{TargetID: id}
		if t, ok := s.registry.Target(id); ok {
			td.Source = t.Source
			if compID, ok := s.registry.ResolveSourceToCompID(t.Source); ok {
				td.CompositionID = compID
			}
		}
		d.Targets = append(d.Targets, td)
	}
	sort.Slice(d.Targets, func(i, j int) bool { return d.Targets[i].TargetID < d.Targets[j].TargetID })
	return d
}

// prepareTargetSource resolves a target's current source and queues the
// composition for preparation. Unresolvable sources are fine; the tick will
// show an empty frame until the source points somewhere.
func (s *Scheduler) prepareTargetSource(targetID string) {
	t, ok := s.registry.Target(targetID)
	if !ok {
		return
	}
	if compID, ok := s.registry.ResolveSourceToCompID(t.Source); ok {
		s.prep.EnsurePrepared(compID)
	}
}

func (s *Scheduler) startLoopLocked() {
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	go s.loop(s.stop, s.opts.FrameInterval())
	s.log.Debug("frame loop started")
}

func (s *Scheduler) stopLoopLocked() {
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil
	s.log.Debug("frame loop stopped")
}

func (s *Scheduler) loop(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick is one pass of the frame loop across all registered targets.
func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.lastTick.IsZero() && now.Sub(s.lastTick) < s.opts.ThrottleThreshold() {
		return
	}
	s.lastTick = now

	// While exporting, skip the whole tick. lastTick still advances, so the
	// first tick after export ends resumes normally with no catch-up burst.
	if s.gpu.IsExporting() {
		return
	}

	s.dispatchLocked()
}

func (s *Scheduler) dispatchLocked() {
	s.dispatchGID.Store(goid.Get())
	defer s.dispatchGID.Store(0)

	for id := range s.registered {
		s.dispatchTarget(id)
	}
}

// dispatchTarget runs the per-target decision ladder. Failures here are
// isolated: nothing a single target does may abort the rest of the tick.
func (s *Scheduler) dispatchTarget(targetID string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("dispatch panic for target %s: %v", targetID, r)
		}
	}()

	t, ok := s.registry.Target(targetID)
	if !ok || !t.Enabled {
		return
	}

	compID, ok := s.registry.ResolveSourceToCompID(t.Source)
	if !ok {
		// Empty slot or unresolved reference: show black. Documented
		// behavior, not an error.
		if err := s.gpu.RenderToPreviewCanvas(targetID, nil); err != nil {
			s.log.Errorf("empty-frame dispatch for target %s: %v", targetID, err)
		}
		return
	}

	// The main pipeline already renders the active composition; this
	// scheduler exists only for targets that diverge from the main view.
	if compID == s.store.ActiveCompositionID() {
		return
	}

	// When the composition is nested on the main timeline and the playhead
	// is inside its clip window, the main pipeline has already rendered its
	// texture this frame. Reuse it instead of rendering twice.
	if info := s.nested.Get(compID); info != nil {
		mp := s.store.MainPlayhead()
		if mp >= info.StartTime && mp < info.EndTime() {
			if s.gpu.CopyNestedCompTextureToPreview(targetID, compID) {
				return
			}
			// Texture not available; fall back to an independent render.
		}
	}

	if !s.comp.IsReady(compID) {
		s.prep.EnsurePrepared(compID)
		return
	}

	ph := s.playhead.Calculate(compID)
	layers, err := s.comp.EvaluateAtTime(compID, ph.Time)
	if err != nil {
		s.log.Errorf("evaluating composition %s for target %s: %v", compID, targetID, err)
		return
	}

	layers = filterLayersForSource(t.Source, layers)
	if len(layers) == 0 {
		// No draw call; canvas-clear semantics belong to the executor.
		return
	}

	if err := s.gpu.RenderToPreviewCanvas(targetID, layers); err != nil {
		s.log.Errorf("rendering target %s: %v", targetID, err)
	}
}

// filterLayersForSource applies source-type layer filtering, preserving
// evaluator order. Out-of-range indices and unknown ids yield an empty list,
// never an error.
func filterLayersForSource(src targets.Source, layers []timeline.Layer) []timeline.Layer {
	switch src.Kind {
	case targets.SourceLayer:
		wanted := make(map[string]struct{}, len(src.LayerIDs))
		for _, id := range src.LayerIDs {
			wanted[id] = struct{}{}
		}
		kept := layers[:0:0]
		for _, l := range layers {
			if _, ok := wanted[l.ID]; ok {
				kept = append(kept, l)
			}
		}
		return kept
	case targets.SourceLayerIndex:
		if src.LayerIndex < 0 || src.LayerIndex >= len(layers) {
			return nil
		}
		return layers[src.LayerIndex : src.LayerIndex+1]
	default:
		return layers
	}
}
