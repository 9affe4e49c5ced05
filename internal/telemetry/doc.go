// Package telemetry records what the orchestrator does.
//
// History stores one row per tick in the SQLite tick_history table, stamped
// with a per-process session id. Metrics forwards the same events to
// InfluxDB. Both implement orchestrator.Observer and are combined with
// orchestrator.Observers.
package telemetry
