package scheduler

import (
	"time"

	"github.com/richinsley/gocompositor/timeline"
)

// NestedCompInfo is the derived fact "this composition currently appears as a
// clip on the main timeline", with the clip's placement.
type NestedCompInfo struct {
	ClipID    string
	StartTime float64
	Duration  float64
	InPoint   float64
	OutPoint  float64
}

// EndTime returns the main-timeline time at which the nesting clip ends.
func (i NestedCompInfo) EndTime() float64 {
	return i.StartTime + i.Duration
}

// nestedEntry is a cached lookup result. A nil info is a cached "not nested"
// answer; absence from the map means the id has not been looked up since the
// last clear.
type nestedEntry struct {
	info *NestedCompInfo
}

// NestedCompCache answers "is composition C placed as a clip on the main
// timeline, and where?" with a short TTL. The whole cache is dropped at once
// when it goes stale, so many targets sharing a tick amortize one rescan.
//
// Not safe for concurrent use on its own; the scheduler serializes access.
type NestedCompCache struct {
	store   timeline.Store
	ttl     time.Duration
	now     func() time.Time
	entries map[string]nestedEntry
	builtAt time.Time
}

func NewNestedCompCache(store timeline.Store, ttl time.Duration) *NestedCompCache {
	return &NestedCompCache{
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]nestedEntry),
	}
}

// Get returns the clip placement for a nested composition, or nil when the
// composition is not on the main timeline. Repeated calls within the TTL
// return the identical cached value without rescanning.
func (c *NestedCompCache) Get(compositionID string) *NestedCompInfo {
	if len(c.entries) > 0 && c.now().Sub(c.builtAt) >= c.ttl {
		c.Invalidate()
	}

	if e, ok := c.entries[compositionID]; ok {
		return e.info
	}

	if len(c.entries) == 0 {
		c.builtAt = c.now()
	}
	info := c.scan(compositionID)
	c.entries[compositionID] = nestedEntry{info: info}
	return info
}

// Invalidate drops every cached entry. Called by the scheduler when clip
// data is known to have changed.
func (c *NestedCompCache) Invalidate() {
	c.entries = make(map[string]nestedEntry)
}

func (c *NestedCompCache) scan(compositionID string) *NestedCompInfo {
	for _, clip := range c.store.MainClips() {
		if clip.IsComposition && clip.CompositionID == compositionID {
			return &NestedCompInfo{
				ClipID:    clip.ID,
				StartTime: clip.StartTime,
				Duration:  clip.Duration,
				InPoint:   clip.InPoint,
				OutPoint:  clip.OutPoint,
			}
		}
	}
	return nil
}
