package timeline

// Clip is a single placement on a timeline. A clip either references media
// directly or, when IsComposition is set, embeds another composition as a
// nested sub-timeline.
type Clip struct {
	ID            string  `json:"id"`
	Name          string  `json:"name,omitempty"`
	IsComposition bool    `json:"isComposition,omitempty"`
	CompositionID string  `json:"compositionId,omitempty"`
	StartTime     float64 `json:"startTime"`
	Duration      float64 `json:"duration"`
	InPoint       float64 `json:"inPoint"`
	OutPoint      float64 `json:"outPoint"`
}

// EndTime returns the time on the owning timeline at which the clip ends.
func (c Clip) EndTime() float64 {
	return c.StartTime + c.Duration
}

// Layer is one evaluated element of a composition at a point in time, in
// bottom-to-top draw order as produced by the evaluator.
type Layer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Data holds the per-composition timeline state. PlayheadPosition is a
// pointer so that an absent stored playhead is distinguishable from a
// playhead parked at zero.
type Data struct {
	PlayheadPosition *float64 `json:"playheadPosition,omitempty"`
	Clips            []Clip   `json:"clips,omitempty"`
}

// Composition is an independently-timed group of layers with its own
// timeline. A composition may additionally appear as a clip on the main
// timeline, in which case it is "nested".
type Composition struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Timeline Data   `json:"timeline"`
}

// Store is the scheduler's read-only view of the composition/timeline state.
// The main timeline is the authoritative one the transport controls; every
// composition carries its own local timeline.
type Store interface {
	// ActiveCompositionID reports which composition the main pipeline is
	// currently rendering, or "" when none is active.
	ActiveCompositionID() string

	// MainPlayhead returns the current main-timeline playhead in seconds.
	MainPlayhead() float64

	// MainClips returns the main timeline's clip list in track order.
	MainClips() []Clip

	// Composition looks up a composition by id.
	Composition(id string) (Composition, bool)
}
