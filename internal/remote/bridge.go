package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/clock"
	"github.com/nerrad567/finger/internal/infrastructure/mqtt"
)

const (
	defaultOutboxSize  = 256
	defaultSendTimeout = time.Second
)

// Broker is the subset of *mqtt.Client used by the Bridge.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Topics() mqtt.Topics
	QoS() byte
}

// Logger defines the logging interface used by the Bridge.
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

// Options wires a Bridge.
type Options struct {
	Broker   Broker
	Registry *bot.Registry
	Commands chan<- bot.Command

	// SessionID is stamped on published state.
	SessionID string

	Clock  clock.Clock
	Logger Logger

	// OutboxSize bounds queued publications. Zero means 256.
	OutboxSize int

	// SendTimeout bounds how long an inbound command waits for the
	// orchestrator. Zero means one second.
	SendTimeout time.Duration
}

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// Bridge connects MQTT to the orchestrator.
type Bridge struct {
	broker      Broker
	topics      mqtt.Topics
	registry    *bot.Registry
	commands    chan<- bot.Command
	session     string
	clock       clock.Clock
	logger      Logger
	sendTimeout time.Duration

	outbox chan message
}

// New creates a Bridge. Call Start to subscribe and Run to publish.
func New(opts Options) *Bridge {
	b := &Bridge{
		broker:      opts.Broker,
		topics:      opts.Broker.Topics(),
		registry:    opts.Registry,
		commands:    opts.Commands,
		session:     opts.SessionID,
		clock:       opts.Clock,
		logger:      opts.Logger,
		sendTimeout: opts.SendTimeout,
	}
	if b.clock == nil {
		b.clock = clock.Real()
	}
	if b.logger == nil {
		b.logger = noopLogger{}
	}
	if b.sendTimeout <= 0 {
		b.sendTimeout = defaultSendTimeout
	}
	size := opts.OutboxSize
	if size <= 0 {
		size = defaultOutboxSize
	}
	b.outbox = make(chan message, size)
	return b
}

// Start subscribes to the command topics.
func (b *Bridge) Start() error {
	if err := b.broker.Subscribe(b.topics.AllCommands(), b.broker.QoS(), b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	b.logger.Info("remote control listening", "topic", b.topics.AllCommands())
	return nil
}

// Run publishes queued messages until ctx is cancelled. It then stops
// accepting commands and drains what is left.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := b.broker.Unsubscribe(b.topics.AllCommands()); err != nil {
				b.logger.Debug("unsubscribing from commands", "error", err)
			}
			for {
				select {
				case m := <-b.outbox:
					b.publish(m)
				default:
					return nil
				}
			}
		case m := <-b.outbox:
			b.publish(m)
		}
	}
}

func (b *Bridge) publish(m message) {
	if err := b.broker.Publish(m.topic, m.payload, b.broker.QoS(), m.retained); err != nil {
		b.logger.Debug("publish failed", "topic", m.topic, "error", err)
	}
}

func (b *Bridge) enqueue(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Warn("marshalling remote payload", "topic", topic, "error", err)
		return
	}
	select {
	case b.outbox <- message{topic: topic, payload: payload, retained: retained}:
	default:
		b.logger.Debug("remote outbox full, dropping", "topic", topic)
	}
}

// commandPayload selects the target of toggle and restart. Bot takes
// precedence over Index.
type commandPayload struct {
	Index *int   `json:"index,omitempty"`
	Bot   string `json:"bot,omitempty"`
}

// ParseCommand decodes a command received on a command topic of kind.
func (b *Bridge) ParseCommand(kind string, payload []byte) (bot.Command, error) {
	k, ok := bot.ParseCommandKind(kind)
	if !ok {
		return bot.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, kind)
	}

	switch k {
	case bot.CmdToggle, bot.CmdRestart:
	default:
		return bot.Command{Kind: k}, nil
	}

	var p commandPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return bot.Command{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	index := -1
	switch {
	case p.Bot != "":
		for i, e := range b.registry.Snapshot() {
			if e.Name == p.Bot {
				index = i
				break
			}
		}
		if index < 0 {
			return bot.Command{}, fmt.Errorf("%w: %q", ErrUnknownBot, p.Bot)
		}
	case p.Index != nil:
		index = *p.Index
	default:
		return bot.Command{}, fmt.Errorf("%w: index or bot required", ErrBadPayload)
	}

	return bot.Command{Kind: k, Index: index}, nil
}

func (b *Bridge) handleCommand(topic string, payload []byte) error {
	kind, ok := b.topics.CommandKind(topic)
	if !ok {
		return fmt.Errorf("%w: topic %q", ErrUnknownCommand, topic)
	}
	cmd, err := b.ParseCommand(kind, payload)
	if err != nil {
		return err
	}

	timer := time.NewTimer(b.sendTimeout)
	defer timer.Stop()
	select {
	case b.commands <- cmd:
		b.logger.Info("remote command", "command", cmd.String())
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrCommandDropped, cmd)
	}
}
