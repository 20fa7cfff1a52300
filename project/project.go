// Package project loads a compositor project description (compositions, main
// timeline, deck slots, render targets) from JSON and builds the in-memory
// store and registry the scheduler runs against.
package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/richinsley/gocompositor/targets"
	"github.com/richinsley/gocompositor/timeline"
)

type Project struct {
	ActiveCompositionID string                 `json:"activeCompositionId,omitempty"`
	MainPlayhead        float64                `json:"mainPlayhead,omitempty"`
	MainClips           []timeline.Clip        `json:"mainClips,omitempty"`
	Compositions        []timeline.Composition `json:"compositions"`
	Slots               []SlotSpec             `json:"slots,omitempty"`
	Targets             []TargetSpec           `json:"targets,omitempty"`
}

type SlotSpec struct {
	Index         int    `json:"index"`
	CompositionID string `json:"compositionId"`
}

type TargetSpec struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Destination string     `json:"destination,omitempty"`
	Enabled     bool       `json:"enabled"`
	Source      SourceSpec `json:"source"`
}

// SourceSpec is the serialized form of a render source. Kind selects which of
// the remaining fields apply.
type SourceSpec struct {
	Kind          string   `json:"kind"`
	CompositionID string   `json:"compositionId,omitempty"`
	LayerIDs      []string `json:"layerIds,omitempty"`
	LayerIndex    *int     `json:"layerIndex,omitempty"`
	SlotIndex     *int     `json:"slotIndex,omitempty"`
}

func (s SourceSpec) toSource() (targets.Source, error) {
	switch targets.SourceKind(s.Kind) {
	case targets.SourceActiveComp:
		return targets.ActiveCompSource(), nil
	case targets.SourceProgram:
		return targets.ProgramSource(), nil
	case targets.SourceComposition:
		if s.CompositionID == "" {
			return targets.Source{}, fmt.Errorf("composition source requires a compositionId")
		}
		return targets.CompositionSource(s.CompositionID), nil
	case targets.SourceLayer:
		if s.CompositionID == "" {
			return targets.Source{}, fmt.Errorf("layer source requires a compositionId")
		}
		return targets.LayerSource(s.CompositionID, s.LayerIDs...), nil
	case targets.SourceLayerIndex:
		if s.CompositionID == "" || s.LayerIndex == nil {
			return targets.Source{}, fmt.Errorf("layer-index source requires a compositionId and layerIndex")
		}
		return targets.LayerIndexSource(s.CompositionID, *s.LayerIndex), nil
	case targets.SourceSlot:
		if s.SlotIndex == nil {
			return targets.Source{}, fmt.Errorf("slot source requires a slotIndex")
		}
		return targets.SlotSource(*s.SlotIndex), nil
	default:
		return targets.Source{}, fmt.Errorf("unknown source kind: %q", s.Kind)
	}
}

// FromJSON parses a project description.
func FromJSON(data []byte) (*Project, error) {
	p := &Project{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	if len(p.Compositions) == 0 {
		return nil, fmt.Errorf("project has no compositions")
	}
	return p, nil
}

// LoadFile reads and parses a project file.
func LoadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	return FromJSON(data)
}

// Build materializes the project into a composition store and target
// registry.
func (p *Project) Build() (*timeline.MemStore, *targets.MemRegistry, error) {
	store := timeline.NewMemStore()
	for _, comp := range p.Compositions {
		if comp.ID == "" {
			return nil, nil, fmt.Errorf("composition without an id")
		}
		store.PutComposition(comp)
	}
	if p.ActiveCompositionID != "" {
		if _, ok := store.Composition(p.ActiveCompositionID); !ok {
			return nil, nil, fmt.Errorf("active composition %q is not in the project", p.ActiveCompositionID)
		}
		store.SetActiveCompositionID(p.ActiveCompositionID)
	}
	store.SetMainPlayhead(p.MainPlayhead)
	store.SetMainClips(p.MainClips)

	registry := targets.NewMemRegistry(store)
	for _, slot := range p.Slots {
		registry.AssignSlot(slot.Index, slot.CompositionID)
	}
	for _, spec := range p.Targets {
		if spec.ID == "" {
			return nil, nil, fmt.Errorf("target without an id")
		}
		src, err := spec.Source.toSource()
		if err != nil {
			return nil, nil, fmt.Errorf("target %s: %w", spec.ID, err)
		}
		registry.Put(targets.Target{
			ID:          spec.ID,
			Name:        spec.Name,
			Source:      src,
			Destination: targets.DestinationType(spec.Destination),
			Enabled:     spec.Enabled,
		})
	}
	return store, registry, nil
}
