// Package database provides the SQLite store used by finger for persisted
// settings and tick history.
//
// This package manages:
//   - Connection setup with WAL mode and a busy timeout
//   - Schema migrations embedded into the binary
//   - Health checks and lifecycle
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files live in the top-level migrations package and are named
// YYYYMMDD_HHMMSS_description.up.sql.
package database
