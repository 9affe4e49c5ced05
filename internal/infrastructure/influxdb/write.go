package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by finger.
const (
	MeasurementTick     = "bot_ticks"
	MeasurementRunState = "run_state"
)

// TickPoint builds the point recording one tick of a bot instance.
//
// Tags: bot, instance. Fields: duration_ms, cooldown_ms, failed and, when
// non-empty, status.
func TickPoint(bot, instanceID string, duration, cooldown time.Duration, status string, failed bool, ts time.Time) *write.Point {
	fields := map[string]interface{}{
		"duration_ms": duration.Milliseconds(),
		"cooldown_ms": cooldown.Milliseconds(),
		"failed":      failed,
	}
	if status != "" {
		fields["status"] = status
	}

	return write.NewPoint(
		MeasurementTick,
		map[string]string{
			"bot":      bot,
			"instance": instanceID,
		},
		fields,
		ts,
	)
}

// RunStatePoint builds the point recording an orchestrator state change.
func RunStatePoint(state string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementRunState,
		map[string]string{"state": state},
		map[string]interface{}{"value": 1},
		ts,
	)
}

// WriteTick writes one tick of a bot instance.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteTick("wow", "wow-10001", 120*time.Millisecond, 5*time.Second, "fishing", false, time.Now())
func (c *Client) WriteTick(bot, instanceID string, duration, cooldown time.Duration, status string, failed bool, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(TickPoint(bot, instanceID, duration, cooldown, status, failed, ts))
}

// WriteRunState writes an orchestrator run state change.
func (c *Client) WriteRunState(state string, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(RunStatePoint(state, ts))
}
