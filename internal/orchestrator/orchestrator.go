package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/finger/internal/agent"
	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/clock"
	"github.com/nerrad567/finger/internal/platform"
	"github.com/nerrad567/finger/internal/settings"
)

// Logger defines the logging interface used by the orchestrator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds scheduler timings.
type Config struct {
	// SettleDelay is slept between activating a window and ticking.
	SettleDelay time.Duration

	// PassInterval is slept after each scheduling pass and while idle.
	PassInterval time.Duration

	// DefaultCooldown applies when a tick returns no cooldown or fails.
	DefaultCooldown time.Duration

	// RescanInterval triggers a periodic reconcile. Zero disables it.
	RescanInterval time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		SettleDelay:     200 * time.Millisecond,
		PassInterval:    100 * time.Millisecond,
		DefaultCooldown: 5 * time.Second,
	}
}

// Options wires an Orchestrator.
type Options struct {
	Registry *bot.Registry
	State    *bot.StateCell
	Platform platform.Platform
	Runtime  agent.Runtime
	Commands <-chan bot.Command

	// Settings persists enabled bots on Toggle. Optional.
	Settings settings.Store

	Clock    clock.Clock
	Logger   Logger
	Observer Observer
	Config   Config
}

// Orchestrator owns the live agents and drives them.
type Orchestrator struct {
	registry *bot.Registry
	state    *bot.StateCell
	platform platform.Platform
	runtime  agent.Runtime
	commands <-chan bot.Command
	settings settings.Store
	clock    clock.Clock
	logger   Logger
	observer Observer
	cfg      Config

	// Touched only by the orchestrator goroutine.
	agents     map[string]agent.Agent
	cooldowns  map[string]time.Time
	lastRescan time.Time
}

// New creates an orchestrator. Registry, State, Platform, Runtime and
// Commands are required.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	case opts.State == nil:
		return nil, fmt.Errorf("%w: state", ErrMissingDependency)
	case opts.Platform == nil:
		return nil, fmt.Errorf("%w: platform", ErrMissingDependency)
	case opts.Runtime == nil:
		return nil, fmt.Errorf("%w: runtime", ErrMissingDependency)
	case opts.Commands == nil:
		return nil, fmt.Errorf("%w: commands", ErrMissingDependency)
	}

	cfg := opts.Config
	def := DefaultConfig()
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	if cfg.PassInterval <= 0 {
		cfg.PassInterval = def.PassInterval
	}
	if cfg.DefaultCooldown <= 0 {
		cfg.DefaultCooldown = def.DefaultCooldown
	}

	o := &Orchestrator{
		registry:  opts.Registry,
		state:     opts.State,
		platform:  opts.Platform,
		runtime:   opts.Runtime,
		commands:  opts.Commands,
		settings:  opts.Settings,
		clock:     opts.Clock,
		logger:    opts.Logger,
		observer:  opts.Observer,
		cfg:       cfg,
		agents:    make(map[string]agent.Agent),
		cooldowns: make(map[string]time.Time),
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	if o.logger == nil {
		o.logger = noopLogger{}
	}
	if o.observer == nil {
		o.observer = noopObserver{}
	}
	return o, nil
}

// Run reconciles once, then loops until Quit, a closed command channel or
// ctx cancellation. On return every agent is stopped and the state is
// Stopped.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator loop started")
	o.reconcileAll()
	o.lastRescan = o.clock.Now()

	for o.step(ctx) {
	}

	o.logger.Info("orchestrator loop ended")
	return nil
}

// step runs one loop iteration. It reports false once the loop must end.
func (o *Orchestrator) step(ctx context.Context) bool {
	if !o.processCommands(ctx) {
		return false
	}

	if o.cfg.RescanInterval > 0 && o.clock.Now().Sub(o.lastRescan) >= o.cfg.RescanInterval {
		o.rescan()
	}

	switch o.state.Get() {
	case bot.Stopping:
		o.stopAll()
		o.setState(bot.Stopped)
		o.logger.Info("orchestrator stopped")
		return true
	case bot.Running:
		return o.schedulePass(ctx)
	default:
		o.clock.Sleep(o.cfg.PassInterval)
		return true
	}
}

func (o *Orchestrator) setState(s bot.RunState) {
	if prev := o.state.Set(s); prev != s {
		o.observer.RunStateChanged(s)
	}
}

// reconcileAll aligns every entry with the live windows. The platform is
// queried without the registry lock, and agents of vanished windows are
// stopped before their instances are removed.
func (o *Orchestrator) reconcileAll() {
	patterns := o.registry.Patterns()
	live := make([][]platform.WindowInfo, len(patterns))
	for i, p := range patterns {
		live[i] = o.platform.Instances(p)
	}

	for _, id := range o.registry.Dead(live) {
		o.stopAgent(id)
	}
	removed := o.registry.ApplyWindows(live)
	for _, inst := range removed {
		o.logger.Info("window gone", "instance", inst.ID)
	}
	o.lastRescan = o.clock.Now()
}

// spawn instantiates an agent for inst. Failures are recorded on the
// instance.
func (o *Orchestrator) spawn(entry bot.Entry, inst bot.Instance) {
	win := o.platform.CreateWindow(entry.WindowPattern, inst.WindowID)
	a, err := o.runtime.Instantiate(entry.ScriptPath, inst.ID, win)
	if err != nil {
		o.logger.Error("failed to start bot", "instance", inst.ID, "error", err)
		msg := err.Error()
		_ = o.registry.SetInstanceError(inst.ID, &msg) //nolint:errcheck // instance came from the registry
		return
	}
	o.agents[inst.ID] = a
	_ = o.registry.SetInstanceError(inst.ID, nil) //nolint:errcheck // instance came from the registry
	o.logger.Debug("agent started", "instance", inst.ID)
}

// spawnMissing starts agents for every instance of every enabled entry
// that lacks one.
func (o *Orchestrator) spawnMissing() {
	for _, entry := range o.registry.Snapshot() {
		if !entry.Enabled {
			continue
		}
		for _, inst := range entry.Instances {
			if _, ok := o.agents[inst.ID]; !ok {
				o.spawn(entry, inst)
			}
		}
	}
}

func (o *Orchestrator) stopAgent(id string) {
	if a, ok := o.agents[id]; ok {
		if err := a.Stop(); err != nil {
			o.logger.Warn("agent stop failed", "instance", id, "error", err)
		}
		delete(o.agents, id)
	}
	delete(o.cooldowns, id)
}

func (o *Orchestrator) stopAll() {
	for id := range o.agents {
		o.stopAgent(id)
	}
	clear(o.cooldowns)
}

func (o *Orchestrator) persist(ctx context.Context) {
	if o.settings == nil {
		return
	}
	s := settings.Settings{EnabledBots: o.registry.EnabledNames()}
	if err := o.settings.Save(ctx, s); err != nil {
		o.logger.Warn("failed to save settings", "error", err)
	}
}
