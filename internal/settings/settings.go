// Package settings persists which bots the operator enabled.
//
// Two backends exist: FileStore writes {"enabled_bots": [...]} as
// pretty-printed JSON, SQLiteStore keeps the same set in the enabled_bots
// table of the finger database.
package settings

import (
	"context"
	"errors"
	"slices"
)

// ErrCorrupt is returned when stored settings cannot be decoded.
var ErrCorrupt = errors.New("settings: corrupt")

// Settings is the persisted operator state.
type Settings struct {
	EnabledBots []string `json:"enabled_bots"`
}

// Normalize returns s with a sorted, de-duplicated, non-nil bot list.
func (s Settings) Normalize() Settings {
	names := slices.Clone(s.EnabledBots)
	if names == nil {
		names = []string{}
	}
	slices.Sort(names)
	return Settings{EnabledBots: slices.Compact(names)}
}

// Store loads and saves Settings.
type Store interface {
	// Load returns the stored settings. Missing storage yields empty
	// settings and no error.
	Load(ctx context.Context) (Settings, error)

	// Save replaces the stored settings.
	Save(ctx context.Context, s Settings) error
}
