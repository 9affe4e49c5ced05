package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/finger/internal/infrastructure/database"
)

// SQLiteStore keeps settings in the enabled_bots table. The database must
// be migrated.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore returns a store backed by db.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM enabled_bots ORDER BY name")
	if err != nil {
		return Settings{}, fmt.Errorf("querying enabled bots: %w", err)
	}
	defer rows.Close()

	out := Settings{EnabledBots: []string{}}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Settings{}, fmt.Errorf("scanning enabled bot: %w", err)
		}
		out.EnabledBots = append(out.EnabledBots, name)
	}
	if err := rows.Err(); err != nil {
		return Settings{}, fmt.Errorf("iterating enabled bots: %w", err)
	}
	return out, nil
}

// Save replaces the table contents in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM enabled_bots"); err != nil {
		return fmt.Errorf("clearing enabled bots: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, name := range st.Normalize().EnabledBots {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO enabled_bots (name, enabled_at) VALUES (?, ?)", name, now,
		); err != nil {
			return fmt.Errorf("inserting enabled bot %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}
