package targets

import (
	"fmt"
	"strings"
)

// SourceKind discriminates the RenderSource tagged union.
type SourceKind string

const (
	// SourceActiveComp mirrors whatever composition is active in the editor.
	SourceActiveComp SourceKind = "activeComp"
	// SourceComposition pins a specific composition by id.
	SourceComposition SourceKind = "composition"
	// SourceLayer shows only the listed layers of a composition.
	SourceLayer SourceKind = "layer"
	// SourceLayerIndex shows the single layer at an index, if present.
	SourceLayerIndex SourceKind = "layer-index"
	// SourceSlot shows whichever composition is loaded into a deck slot.
	SourceSlot SourceKind = "slot"
	// SourceProgram follows the program output bus.
	SourceProgram SourceKind = "program"
)

// Source describes what a render target should currently display. Values are
// immutable; a target's source is replaced wholesale, never mutated in place.
type Source struct {
	Kind          SourceKind
	CompositionID string   // composition, layer, layer-index
	LayerIDs      []string // layer
	LayerIndex    int      // layer-index
	SlotIndex     int      // slot
}

func ActiveCompSource() Source {
	return Source{Kind: SourceActiveComp}
}

func CompositionSource(compositionID string) Source {
	return Source{Kind: SourceComposition, CompositionID: compositionID}
}

func LayerSource(compositionID string, layerIDs ...string) Source {
	ids := make([]string, len(layerIDs))
	copy(ids, layerIDs)
	return Source{Kind: SourceLayer, CompositionID: compositionID, LayerIDs: ids}
}

func LayerIndexSource(compositionID string, index int) Source {
	return Source{Kind: SourceLayerIndex, CompositionID: compositionID, LayerIndex: index}
}

func SlotSource(index int) Source {
	return Source{Kind: SourceSlot, SlotIndex: index}
}

func ProgramSource() Source {
	return Source{Kind: SourceProgram}
}

func (s Source) String() string {
	switch s.Kind {
	case SourceComposition:
		return fmt.Sprintf("composition(%s)", s.CompositionID)
	case SourceLayer:
		return fmt.Sprintf("layer(%s, [%s])", s.CompositionID, strings.Join(s.LayerIDs, " "))
	case SourceLayerIndex:
		return fmt.Sprintf("layer-index(%s, %d)", s.CompositionID, s.LayerIndex)
	case SourceSlot:
		return fmt.Sprintf("slot(%d)", s.SlotIndex)
	default:
		return string(s.Kind)
	}
}
