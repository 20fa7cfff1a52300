package options

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// SchedulerOptions holds the tunable knobs for the render scheduler and its
// control surface. Pointer fields are optional; nil means "use the default".
type SchedulerOptions struct {
	FPS            *int     `toml:"fps"`             // frame loop target rate
	ThrottleMargin *float64 `toml:"throttle_margin"` // seconds shaved off the ideal interval
	NestedCacheTTL *float64 `toml:"nested_cache_ttl"`
	OSCListenAddr  *string  `toml:"osc_listen_addr"`
	LogLevel       *string  `toml:"log_level"`
}

const (
	defaultFPS            = 60
	defaultThrottleMargin = 0.0025 // ~14.2ms threshold at 60fps
	defaultNestedCacheTTL = 0.100
	defaultOSCListenAddr  = "127.0.0.1:53010"
)

// FrameInterval returns the ideal time between ticks.
func (o *SchedulerOptions) FrameInterval() time.Duration {
	fps := defaultFPS
	if o.FPS != nil && *o.FPS > 0 {
		fps = *o.FPS
	}
	return time.Second / time.Duration(fps)
}

// ThrottleThreshold returns the minimum elapsed time between dispatched
// ticks. It sits a little below FrameInterval so minor refresh-rate jitter
// does not systematically drop frames.
func (o *SchedulerOptions) ThrottleThreshold() time.Duration {
	margin := defaultThrottleMargin
	if o.ThrottleMargin != nil && *o.ThrottleMargin >= 0 {
		margin = *o.ThrottleMargin
	}
	threshold := o.FrameInterval() - time.Duration(margin*float64(time.Second))
	if threshold < 0 {
		threshold = 0
	}
	return threshold
}

// NestedCacheTTLDuration returns how long nested-composition lookups stay
// cached before the whole cache is rebuilt.
func (o *SchedulerOptions) NestedCacheTTLDuration() time.Duration {
	ttl := defaultNestedCacheTTL
	if o.NestedCacheTTL != nil && *o.NestedCacheTTL > 0 {
		ttl = *o.NestedCacheTTL
	}
	return time.Duration(ttl * float64(time.Second))
}

func (o *SchedulerOptions) OSCAddr() string {
	if o.OSCListenAddr != nil && *o.OSCListenAddr != "" {
		return *o.OSCListenAddr
	}
	return defaultOSCListenAddr
}

// LoadFile reads options from a TOML file. Keys absent from the file keep
// their defaults.
func LoadFile(path string) (*SchedulerOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	opts := &SchedulerOptions{}
	if err := toml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}
	return opts, nil
}

// SaveFile writes the options as TOML.
func (o *SchedulerOptions) SaveFile(path string) error {
	data, err := toml.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write options file: %w", err)
	}
	return nil
}
