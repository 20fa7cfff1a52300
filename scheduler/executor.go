package scheduler

import "github.com/richinsley/gocompositor/timeline"

// CompositionRenderer is the external composition evaluator. Preparation may
// be slow (texture uploads, decoder spin-up); the scheduler always calls
// PrepareComposition off the frame loop via the PreparationTracker.
type CompositionRenderer interface {
	// PrepareComposition makes a composition renderable. It may block; the
	// returned bool reports whether the composition ended up ready.
	PrepareComposition(compositionID string) (bool, error)

	// IsReady reports whether a composition can be evaluated right now.
	IsReady(compositionID string) bool

	// EvaluateAtTime produces the composition's layers at a local time, in
	// draw order.
	EvaluateAtTime(compositionID string, t float64) ([]timeline.Layer, error)
}

// GPUExecutor is the external draw pipeline. The scheduler decides what to
// draw and when; the executor owns every pixel.
type GPUExecutor interface {
	// RenderToPreviewCanvas draws the given layers into the target's canvas.
	// A nil/empty layer slice means "show an empty (black) frame".
	RenderToPreviewCanvas(targetID string, layers []timeline.Layer) error

	// CopyNestedCompTextureToPreview blits the already-rendered texture of a
	// nested composition into the target's canvas, reporting whether the
	// texture was available. False is a fallback trigger, not an error.
	CopyNestedCompTextureToPreview(targetID, compositionID string) bool

	// IsExporting reports whether an export is in progress; the scheduler
	// skips whole ticks while it is.
	IsExporting() bool
}
