package telemetry

import (
	"time"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/clock"
	"github.com/nerrad567/finger/internal/orchestrator"
)

// PointWriter is the subset of the InfluxDB client used by Metrics.
type PointWriter interface {
	WriteTick(botName, instanceID string, duration, cooldown time.Duration, status string, failed bool, ts time.Time)
	WriteRunState(state string, ts time.Time)
	Flush()
}

// Metrics forwards orchestrator events to a time-series store.
type Metrics struct {
	w     PointWriter
	clock clock.Clock
}

// NewMetrics creates a Metrics observer. A nil clock uses the real one.
func NewMetrics(w PointWriter, clk clock.Clock) *Metrics {
	if clk == nil {
		clk = clock.Real()
	}
	return &Metrics{w: w, clock: clk}
}

// RunStateChanged writes a run_state point. Reaching Stopped flushes the
// batch so the session's last ticks land without waiting for the interval.
func (m *Metrics) RunStateChanged(s bot.RunState) {
	m.w.WriteRunState(s.String(), m.clock.Now())
	if s == bot.Stopped {
		m.w.Flush()
	}
}

// RegistryChanged is a no-op; enablement is not a metric.
func (m *Metrics) RegistryChanged() {}

// TickCompleted writes a tick point stamped with the tick's start.
func (m *Metrics) TickCompleted(r orchestrator.TickResult) {
	m.w.WriteTick(r.Bot, r.InstanceID, r.Duration, r.Cooldown, r.Status, r.Err != nil, r.Started)
}
