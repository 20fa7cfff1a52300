package targets

// DestinationType says what kind of surface a target draws into.
type DestinationType string

const (
	DestinationCanvas DestinationType = "canvas"
	DestinationWindow DestinationType = "window"
	DestinationTab    DestinationType = "tab"
)

// Target is a registered output destination. The canvas/context/window
// handles behind a target are owned by the registry; the scheduler only reads
// Enabled and Source and hands the id to the GPU executor.
type Target struct {
	ID          string
	Name        string
	Source      Source
	Destination DestinationType
	Enabled     bool
}

// Registry enumerates render targets and resolves their sources. It is the
// scheduler's only view of target state; handle lifecycle stays on the
// registry side.
type Registry interface {
	// Target looks up a target by id, returning its current state.
	Target(id string) (Target, bool)

	// ResolveSourceToCompID maps a source to the composition it currently
	// denotes. ok is false when the source resolves to nothing (an empty
	// slot, an unresolved reference); that is a valid state, not an error.
	ResolveSourceToCompID(src Source) (string, bool)
}
