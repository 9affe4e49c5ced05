package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/orchestrator"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500

	// recordTimeout bounds each insert so a locked database cannot stall
	// the scheduler.
	recordTimeout = 2 * time.Second

	// timeLayout is fixed width so started_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Logger defines the logging interface used by telemetry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// TickRecord is one row of tick history.
type TickRecord struct {
	ID         int64         `json:"id"`
	SessionID  string        `json:"session_id"`
	Bot        string        `json:"bot"`
	InstanceID string        `json:"instance_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Cooldown   time.Duration `json:"cooldown"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// History persists tick results to SQLite.
type History struct {
	db      *sql.DB
	session string
	logger  Logger
}

// NewHistory creates a history writer with a fresh session id.
func NewHistory(db *sql.DB, logger Logger) *History {
	if logger == nil {
		logger = noopLogger{}
	}
	return &History{
		db:      db,
		session: uuid.NewString(),
		logger:  logger,
	}
}

// SessionID identifies the rows written by this process.
func (h *History) SessionID() string {
	return h.session
}

// Record inserts one tick result.
func (h *History) Record(ctx context.Context, r orchestrator.TickResult) error {
	if r.InstanceID == "" {
		return fmt.Errorf("instance id is required")
	}

	var errMsg *string
	if r.Err != nil {
		s := r.Err.Error()
		errMsg = &s
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO tick_history
		 (session_id, bot, instance_id, started_at, duration_ms, cooldown_ms, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.session,
		r.Bot,
		r.InstanceID,
		r.Started.UTC().Format(timeLayout),
		r.Duration.Milliseconds(),
		r.Cooldown.Milliseconds(),
		r.Status,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("inserting tick history: %w", err)
	}
	return nil
}

// recent returns the latest ticks of instanceID, newest first. limit
// defaults to 50 and is capped at 500.
func (h *History) recent(ctx context.Context, instanceID string, limit int) ([]TickRecord, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("instance id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, session_id, bot, instance_id, started_at, duration_ms, cooldown_ms, status, error
		 FROM tick_history
		 WHERE instance_id = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		instanceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tick history: %w", err)
	}
	defer rows.Close()

	records := make([]TickRecord, 0, limit)
	for rows.Next() {
		var (
			rec        TickRecord
			startedAt  string
			durationMS int64
			cooldownMS int64
			errMsg     sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Bot, &rec.InstanceID, &startedAt,
			&durationMS, &cooldownMS, &rec.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning tick history: %w", err)
		}

		rec.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.Cooldown = time.Duration(cooldownMS) * time.Millisecond
		rec.Error = errMsg.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tick history: %w", err)
	}

	return records, nil
}

// Prune deletes ticks that started before now-olderThan.
func (h *History) Prune(ctx context.Context, now time.Time, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := now.UTC().Add(-olderThan).Format(timeLayout)
	result, err := h.db.ExecContext(ctx, "DELETE FROM tick_history WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting tick history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// RunStateChanged is a no-op; only ticks are stored.
func (h *History) RunStateChanged(bot.RunState) {}

// RegistryChanged is a no-op.
func (h *History) RegistryChanged() {}

// TickCompleted stores r. Failures are logged and otherwise ignored.
func (h *History) TickCompleted(r orchestrator.TickResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := h.Record(ctx, r); err != nil {
		h.logger.Warn("failed to record tick", "instance", r.InstanceID, "error", err)
	}
}
