package scheduler

import "github.com/richinsley/gocompositor/timeline"

// SyncSource names which rule produced a playhead time.
type SyncSource string

const (
	SyncNested        SyncSource = "nested"
	SyncReverseNested SyncSource = "reverse-nested"
	SyncStored        SyncSource = "stored"
	SyncDefault       SyncSource = "default"
)

// PlayheadResult is a composition-local time plus the rule that produced it.
type PlayheadResult struct {
	Time   float64
	Source SyncSource
}

// PlayheadCalculator converts the main-timeline playhead into a target
// composition's local time. Cases are tried in order; absence of data at one
// level falls through to the next, and no case errors.
type PlayheadCalculator struct {
	store  timeline.Store
	nested *NestedCompCache
}

func NewPlayheadCalculator(store timeline.Store, nested *NestedCompCache) *PlayheadCalculator {
	return &PlayheadCalculator{store: store, nested: nested}
}

func (p *PlayheadCalculator) Calculate(compositionID string) PlayheadResult {
	mainPlayhead := p.store.MainPlayhead()

	// Nested-forward: the composition sits as a clip on the main timeline,
	// so its local time follows the main playhead through the clip window,
	// clamped to the clip's in/out points on either side.
	if info := p.nested.Get(compositionID); info != nil {
		switch {
		case mainPlayhead < info.StartTime:
			return PlayheadResult{Time: info.InPoint, Source: SyncNested}
		case mainPlayhead < info.EndTime():
			return PlayheadResult{Time: (mainPlayhead - info.StartTime) + info.InPoint, Source: SyncNested}
		default:
			return PlayheadResult{Time: info.OutPoint, Source: SyncNested}
		}
	}

	comp, haveComp := p.store.Composition(compositionID)

	// Reverse-nested: the active composition is a clip inside this one, so
	// this composition's time is wherever that child clip puts the main
	// playhead.
	if activeID := p.store.ActiveCompositionID(); haveComp && activeID != "" && activeID != compositionID {
		for _, clip := range comp.Timeline.Clips {
			if clip.IsComposition && clip.CompositionID == activeID {
				return PlayheadResult{
					Time:   clip.StartTime + (mainPlayhead - clip.InPoint),
					Source: SyncReverseNested,
				}
			}
		}
	}

	// Stored: the composition remembers its own playhead.
	if haveComp && comp.Timeline.PlayheadPosition != nil {
		return PlayheadResult{Time: *comp.Timeline.PlayheadPosition, Source: SyncStored}
	}

	return PlayheadResult{Time: 0, Source: SyncDefault}
}
