package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/richinsley/gocompositor/control"
	"github.com/richinsley/gocompositor/options"
	"github.com/richinsley/gocompositor/project"
	"github.com/richinsley/gocompositor/scheduler"
	"github.com/richinsley/gocompositor/targets"
	"github.com/richinsley/gocompositor/timeline"
)

// demoRenderer is a stand-in composition evaluator: every composition is
// ready after a short simulated preparation and evaluates to a fixed layer
// stack.
type demoRenderer struct {
	ready map[string]*atomic.Bool
}

func newDemoRenderer(compIDs ...string) *demoRenderer {
	r := &demoRenderer{ready: make(map[string]*atomic.Bool)}
	for _, id := range compIDs {
		r.ready[id] = &atomic.Bool{}
	}
	return r
}

func (r *demoRenderer) PrepareComposition(compositionID string) (bool, error) {
	ready, ok := r.ready[compositionID]
	if !ok {
		return false, fmt.Errorf("unknown composition: %s", compositionID)
	}
	time.Sleep(50 * time.Millisecond) // simulate texture uploads
	ready.Store(true)
	return true, nil
}

func (r *demoRenderer) IsReady(compositionID string) bool {
	ready, ok := r.ready[compositionID]
	return ok && ready.Load()
}

func (r *demoRenderer) EvaluateAtTime(compositionID string, t float64) ([]timeline.Layer, error) {
	return []timeline.Layer{
		{ID: compositionID + "-bg", Name: "background", Opacity: 1},
		{ID: compositionID + "-fg", Name: "foreground", Opacity: 1},
	}, nil
}

// demoGPU logs what a real GPU executor would draw.
type demoGPU struct{}

func (demoGPU) RenderToPreviewCanvas(targetID string, layers []timeline.Layer) error {
	if len(layers) == 0 {
		log.Debugf("target %s: empty frame", targetID)
		return nil
	}
	log.Debugf("target %s: rendered %d layers", targetID, len(layers))
	return nil
}

func (demoGPU) CopyNestedCompTextureToPreview(targetID, compositionID string) bool {
	log.Debugf("target %s: reused texture of %s", targetID, compositionID)
	return true
}

func (demoGPU) IsExporting() bool { return false }

func main() {
	var optsFile = flag.String("options", "", "Path to a gocompositor.toml options file")
	var projectFile = flag.String("project", "", "Path to a project JSON file (built-in demo project if not set)")
	var oscAddr = flag.String("osc", "", "OSC listen address (overrides options file)")
	var duration = flag.Float64("duration", 0, "Seconds to run the demo before exiting (0 = until interrupted)")
	var verbose = flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	opts := &options.SchedulerOptions{}
	if *optsFile != "" {
		loaded, err := options.LoadFile(*optsFile)
		if err != nil {
			log.Fatalf("Failed to load options: %v", err)
		}
		opts = loaded
	}
	if *oscAddr != "" {
		opts.OSCListenAddr = oscAddr
	}

	var (
		store     *timeline.MemStore
		registry  *targets.MemRegistry
		compIDs   []string
		targetIDs []string
	)
	if *projectFile != "" {
		proj, err := project.LoadFile(*projectFile)
		if err != nil {
			log.Fatalf("Failed to load project: %v", err)
		}
		store, registry, err = proj.Build()
		if err != nil {
			log.Fatalf("Failed to build project: %v", err)
		}
		for _, c := range proj.Compositions {
			compIDs = append(compIDs, c.ID)
		}
		for _, t := range proj.Targets {
			targetIDs = append(targetIDs, t.ID)
		}
	} else {
		store, registry = buildDemoProject()
		compIDs = []string{"comp-main", "comp-nested", "comp-free"}
		targetIDs = []string{"preview-1", "window-1"}
	}

	renderer := newDemoRenderer(compIDs...)
	sched := scheduler.New(store, registry, renderer, demoGPU{}, opts, log.Default())

	srv := control.NewServer(opts.OSCAddr(), sched, log.Default())
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start OSC control surface: %v", err)
	}
	defer srv.Stop()

	for _, id := range targetIDs {
		sched.Register(id)
	}

	// Crawl the main playhead so the nested/stored paths both get exercised.
	stopTransport := make(chan struct{})
	go func() {
		ticker := time.NewTicker(33 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTransport:
				return
			case <-ticker.C:
				store.SetMainPlayhead(store.MainPlayhead() + 0.033)
			}
		}
	}()
	defer close(stopTransport)

	log.Infof("Scheduler running; OSC on %s", opts.OSCAddr())

	if *duration > 0 {
		time.Sleep(time.Duration(*duration * float64(time.Second)))
	} else {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	}

	for _, id := range targetIDs {
		sched.Unregister(id)
	}
	log.Info("Shut down")
}

// buildDemoProject assembles a small project: one composition nested on the
// main timeline, one free-running composition with a stored playhead, and two
// render targets looking at them.
func buildDemoProject() (*timeline.MemStore, *targets.MemRegistry) {
	store := timeline.NewMemStore()

	storedPlayhead := 1.5
	store.PutComposition(timeline.Composition{ID: "comp-main", Name: "Main"})
	store.PutComposition(timeline.Composition{ID: "comp-nested", Name: "Nested"})
	store.PutComposition(timeline.Composition{
		ID:       "comp-free",
		Name:     "Free",
		Timeline: timeline.Data{PlayheadPosition: &storedPlayhead},
	})

	store.SetActiveCompositionID("comp-main")
	store.SetMainClips([]timeline.Clip{
		{ID: "clip-1", IsComposition: true, CompositionID: "comp-nested", StartTime: 2, Duration: 6, InPoint: 0, OutPoint: 6},
	})

	registry := targets.NewMemRegistry(store)
	registry.Put(targets.Target{
		ID:          "preview-1",
		Name:        "Preview",
		Source:      targets.CompositionSource("comp-nested"),
		Destination: targets.DestinationCanvas,
		Enabled:     true,
	})
	registry.Put(targets.Target{
		ID:          "window-1",
		Name:        "Output Window",
		Source:      targets.CompositionSource("comp-free"),
		Destination: targets.DestinationWindow,
		Enabled:     true,
	})
	return store, registry
}
