package remote

import (
	"time"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/orchestrator"
)

// RunStatePayload is published retained on <prefix>/state.
type RunStatePayload struct {
	State     string    `json:"state"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InstancePayload describes one instance in the bot list.
type InstancePayload struct {
	ID          string `json:"id"`
	WindowID    uint64 `json:"window_id"`
	WindowTitle string `json:"window_title"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// BotPayload describes one entry in the bot list.
type BotPayload struct {
	Index       int               `json:"index"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Enabled     bool              `json:"enabled"`
	Instances   []InstancePayload `json:"instances"`
}

// TickPayload is published on <prefix>/instance/<id>/tick.
type TickPayload struct {
	Bot        string    `json:"bot"`
	InstanceID string    `json:"instance_id"`
	Started    time.Time `json:"started"`
	DurationMS int64     `json:"duration_ms"`
	CooldownMS int64     `json:"cooldown_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// BotList converts a registry snapshot for publishing.
func BotList(entries []bot.Entry) []BotPayload {
	out := make([]BotPayload, 0, len(entries))
	for i, e := range entries {
		bp := BotPayload{
			Index:       i,
			Name:        e.Name,
			Description: e.Description,
			Enabled:     e.Enabled,
			Instances:   make([]InstancePayload, 0, len(e.Instances)),
		}
		for _, inst := range e.Instances {
			ip := InstancePayload{
				ID:          inst.ID,
				WindowID:    uint64(inst.WindowID),
				WindowTitle: inst.WindowTitle,
				Status:      inst.Status,
			}
			if inst.Error != nil {
				ip.Error = *inst.Error
			}
			bp.Instances = append(bp.Instances, ip)
		}
		out = append(out, bp)
	}
	return out
}

// RunStateChanged publishes the new state and the bot list.
func (b *Bridge) RunStateChanged(s bot.RunState) {
	b.enqueue(b.topics.RunState(), RunStatePayload{
		State:     s.String(),
		SessionID: b.session,
		Timestamp: b.clock.Now().UTC(),
	}, true)
	b.PublishBots()
}

// TickCompleted publishes the tick result and the refreshed bot list.
func (b *Bridge) TickCompleted(r orchestrator.TickResult) {
	p := TickPayload{
		Bot:        r.Bot,
		InstanceID: r.InstanceID,
		Started:    r.Started.UTC(),
		DurationMS: r.Duration.Milliseconds(),
		CooldownMS: r.Cooldown.Milliseconds(),
		Status:     r.Status,
	}
	if r.Err != nil {
		p.Error = r.Err.Error()
	}
	b.enqueue(b.topics.InstanceTick(r.InstanceID), p, false)
	b.PublishBots()
}

// RegistryChanged republishes the bot list so enablement changes show up
// while Stopped.
func (b *Bridge) RegistryChanged() { b.PublishBots() }

// PublishBots queues the current bot list.
func (b *Bridge) PublishBots() {
	b.enqueue(b.topics.Bots(), BotList(b.registry.Snapshot()), true)
}
