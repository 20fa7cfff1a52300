package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gocompositor/targets"
)

const sampleProject = `{
  "activeCompositionId": "comp-main",
  "mainPlayhead": 4.5,
  "mainClips": [
    {"id": "clip-1", "isComposition": true, "compositionId": "comp-nested",
     "startTime": 2, "duration": 6, "inPoint": 0, "outPoint": 6}
  ],
  "compositions": [
    {"id": "comp-main", "name": "Main"},
    {"id": "comp-nested", "name": "Nested"},
    {"id": "comp-deck", "name": "Deck", "timeline": {"playheadPosition": 1.5}}
  ],
  "slots": [{"index": 0, "compositionId": "comp-deck"}],
  "targets": [
    {"id": "preview-1", "name": "Preview", "destination": "canvas", "enabled": true,
     "source": {"kind": "composition", "compositionId": "comp-nested"}},
    {"id": "window-1", "destination": "window", "enabled": true,
     "source": {"kind": "slot", "slotIndex": 0}},
    {"id": "tab-1", "destination": "tab", "enabled": false,
     "source": {"kind": "layer-index", "compositionId": "comp-nested", "layerIndex": 2}}
  ]
}`

func TestProjectBuild(t *testing.T) {
	p, err := FromJSON([]byte(sampleProject))
	require.NoError(t, err)

	store, registry, err := p.Build()
	require.NoError(t, err)

	assert.Equal(t, "comp-main", store.ActiveCompositionID())
	assert.Equal(t, 4.5, store.MainPlayhead())
	require.Len(t, store.MainClips(), 1)

	deck, ok := store.Composition("comp-deck")
	require.True(t, ok)
	require.NotNil(t, deck.Timeline.PlayheadPosition)
	assert.Equal(t, 1.5, *deck.Timeline.PlayheadPosition)

	preview, ok := registry.Target("preview-1")
	require.True(t, ok)
	assert.Equal(t, targets.SourceComposition, preview.Source.Kind)

	id, ok := registry.ResolveSourceToCompID(targets.SlotSource(0))
	require.True(t, ok)
	assert.Equal(t, "comp-deck", id)

	tab, ok := registry.Target("tab-1")
	require.True(t, ok)
	assert.False(t, tab.Enabled)
	assert.Equal(t, 2, tab.Source.LayerIndex)
}

func TestProjectValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no compositions", `{"compositions": []}`},
		{"composition without id", `{"compositions": [{"name": "x"}]}`},
		{"unknown active composition", `{"activeCompositionId": "nope", "compositions": [{"id": "a"}]}`},
		{"unknown source kind", `{"compositions": [{"id": "a"}],
			"targets": [{"id": "t", "source": {"kind": "bogus"}}]}`},
		{"slot source without index", `{"compositions": [{"id": "a"}],
			"targets": [{"id": "t", "source": {"kind": "slot"}}]}`},
		{"layer-index source without index", `{"compositions": [{"id": "a"}],
			"targets": [{"id": "t", "source": {"kind": "layer-index", "compositionId": "a"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FromJSON([]byte(tt.body))
			if err != nil {
				return // rejected at parse time
			}
			_, _, err = p.Build()
			assert.Error(t, err)
		})
	}
}
