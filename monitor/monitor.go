// Package monitor tracks a decode session's frontier size over a rolling
// window and reports whether it is growing, shrinking, or flat. Grounded
// on monitoring.Monitor/monitoring.Predictor's case-tracking and alerting
// shape, retargeted from Petri-net case completion prediction to
// frontier-size trend detection.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Trend describes the direction a frontier's size is moving in.
type Trend string

const (
	TrendGrowing   Trend = "growing"
	TrendShrinking Trend = "shrinking"
	TrendFlat      Trend = "flat"
)

// Sample is one observation of frontier size at a point in time.
type Sample struct {
	At   time.Time
	Size int
}

// Config configures a FrontierMonitor.
type Config struct {
	// Window bounds how many samples are retained for trend detection.
	Window int
	// GrowthCap, when exceeded by the latest sample, triggers a warning
	// log suggesting the caller impose an explicit frontier cap.
	GrowthCap int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Window: 20, GrowthCap: 10000}
}

// Alert is emitted when a monitored frontier crosses GrowthCap.
type Alert struct {
	Timestamp time.Time
	Size      int
	Trend     Trend
	Message   string
}

func (a Alert) String() string {
	return fmt.Sprintf("[%s] frontier size %s (%s): %s",
		a.Timestamp.Format(time.RFC3339), humanize.Comma(int64(a.Size)), a.Trend, a.Message)
}

// AlertHandler is called when an Alert fires.
type AlertHandler func(Alert)

// FrontierMonitor observes a stream of frontier-size samples from a
// session.Session (or any caller advancing an NFA walk) and reports
// whether the frontier is trending toward exhaustion or explosion.
type FrontierMonitor struct {
	mu       sync.RWMutex
	config   Config
	samples  []Sample
	handlers []AlertHandler
	log      zerolog.Logger
}

// New creates a FrontierMonitor that logs through log.
func New(config Config, log zerolog.Logger) *FrontierMonitor {
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	return &FrontierMonitor{config: config, log: log}
}

// AddAlertHandler registers a function called whenever Observe crosses
// the configured GrowthCap.
func (m *FrontierMonitor) AddAlertHandler(handler AlertHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// Observe records the frontier size after a decode step at time at.
func (m *FrontierMonitor) Observe(at time.Time, size int) {
	m.mu.Lock()
	m.samples = append(m.samples, Sample{At: at, Size: size})
	if len(m.samples) > m.config.Window {
		m.samples = m.samples[len(m.samples)-m.config.Window:]
	}
	trend := m.trendLocked()
	cap := m.config.GrowthCap
	m.mu.Unlock()

	m.log.Debug().
		Time("at", at).
		Int("frontier_size", size).
		Str("trend", string(trend)).
		Msg("frontier observed")

	if cap > 0 && size > cap {
		alert := Alert{
			Timestamp: at,
			Size:      size,
			Trend:     trend,
			Message:   fmt.Sprintf("frontier size %s exceeds cap %s, impose an explicit cap", humanize.Comma(int64(size)), humanize.Comma(int64(cap))),
		}
		m.log.Warn().Str("alert", alert.String()).Msg("frontier growth cap exceeded")
		m.mu.RLock()
		handlers := append([]AlertHandler(nil), m.handlers...)
		m.mu.RUnlock()
		for _, h := range handlers {
			go h(alert)
		}
	}
}

// Trend reports the current direction of the frontier size over the
// retained window.
func (m *FrontierMonitor) Trend() Trend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trendLocked()
}

func (m *FrontierMonitor) trendLocked() Trend {
	if len(m.samples) < 2 {
		return TrendFlat
	}
	first := m.samples[0].Size
	last := m.samples[len(m.samples)-1].Size
	switch {
	case last > first:
		return TrendGrowing
	case last < first:
		return TrendShrinking
	default:
		return TrendFlat
	}
}

// Summary returns a humanize-formatted one-line report of the current
// frontier state, suitable for a CLI status line or log message.
func (m *FrontierMonitor) Summary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.samples) == 0 {
		return "no samples observed"
	}
	latest := m.samples[len(m.samples)-1]
	return fmt.Sprintf("frontier at %s walkers (%s), last observed %s",
		humanize.Comma(int64(latest.Size)), m.trendLocked(), humanize.Time(latest.At))
}

// Samples returns a copy of the retained rolling window.
func (m *FrontierMonitor) Samples() []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}
