// Package logging provides structured logging for finger.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for files and pipes (machine-parsable)
//   - Colored console output on a terminal, with the source prefix
//     rendered in its registered color
//   - A bounded record sink feeding the terminal UI log pane
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "auto"     # json, text, auto
//	  output: "file"     # stdout, stderr, file, none
//	  file:
//	    path: "./logs/app.log"
//
// The log file is truncated when the service starts.
//
// # Usage
//
//	svc, err := logging.NewService(cfg.Logging, version, logging.Options{Sink: true})
//	svc.RegisterPrefix("wow", logging.ColorBlue)
//	svc.Prefixed("wow").Info("pulled boss")
//
// Never log secrets such as broker passwords or InfluxDB tokens.
package logging
