// Package influxdb provides InfluxDB connectivity for finger.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, metric writing and health monitoring.
//
// # Purpose
//
// When enabled, every bot tick is written as a bot_ticks point (duration,
// cooldown, failure flag) and every orchestrator state change as a
// run_state point, so long farming sessions can be graphed.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTick("wow", "wow-10001", 120*time.Millisecond, 5*time.Second, "fishing", false, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are reported via
// SetOnError. Connection and health check errors are returned directly.
package influxdb
