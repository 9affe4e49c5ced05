// finger - scripted window automation.
//
// finger discovers Lua bot scripts, binds each one to every live window
// whose title matches the script's pattern and drives all of them from one
// scheduler, each with its own cooldown. It is controlled from a terminal
// UI, over MQTT, and through a global start/stop signal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	_ "github.com/nerrad567/finger/migrations"

	"github.com/nerrad567/finger/internal/agent"
	"github.com/nerrad567/finger/internal/agent/luart"
	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/hotkey"
	"github.com/nerrad567/finger/internal/infrastructure/config"
	"github.com/nerrad567/finger/internal/infrastructure/database"
	"github.com/nerrad567/finger/internal/infrastructure/influxdb"
	"github.com/nerrad567/finger/internal/infrastructure/logging"
	"github.com/nerrad567/finger/internal/infrastructure/mqtt"
	"github.com/nerrad567/finger/internal/orchestrator"
	"github.com/nerrad567/finger/internal/platform"
	"github.com/nerrad567/finger/internal/remote"
	"github.com/nerrad567/finger/internal/settings"
	"github.com/nerrad567/finger/internal/telemetry"
	"github.com/nerrad567/finger/internal/tui"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "finger.yaml"

	// commandQueueSize bounds pending control commands.
	commandQueueSize = 64

	// historyRetention is how long tick history rows are kept.
	historyRetention = 30 * 24 * time.Hour
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds the parsed command line.
type flags struct {
	configPath string
	stub       bool
	headless   bool
	start      bool
	botsDir    string
	version    bool
}

func parseFlags(args []string, out io.Writer) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("finger", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&f.configPath, "config", "c", "", "configuration file (default $FINGER_CONFIG or "+defaultConfigPath+")")
	fs.BoolVar(&f.stub, "stub", false, "use the stub platform instead of real windows")
	fs.BoolVar(&f.headless, "headless", false, "run without the terminal UI")
	fs.BoolVar(&f.start, "start", false, "start the enabled bots immediately")
	fs.StringVar(&f.botsDir, "bots", "", "directory scanned for bot scripts")
	fs.BoolVarP(&f.version, "version", "v", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: finger [flags]\n\n%s", fs.FlagUsages())
	}
	err := fs.Parse(args)
	return f, err
}

// run is the application, separated from main for testability.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, err := parseFlags(args, stdout)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if f.version {
		fmt.Fprintf(stdout, "finger %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	configPath := f.configPath
	if configPath == "" {
		configPath = getConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	mode := uiMode(cfg.UI.Mode, isTerminal())
	if mode == "tui" && (cfg.Logging.Output == "stdout" || cfg.Logging.Output == "stderr") {
		// The terminal belongs to the UI.
		cfg.Logging.Output = "file"
	}

	logs, err := logging.NewService(cfg.Logging, version, logging.Options{Sink: mode == "tui"})
	if err != nil {
		return fmt.Errorf("initialising logging: %w", err)
	}
	defer logs.Close()
	log := logs.Logger()
	log.Info("starting finger",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
		"ui", mode,
	)

	var db *database.DB
	if cfg.UsesDatabase() {
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", db.Path())
	}

	store := newSettingsStore(cfg.Settings, db)

	logs.RegisterPrefix("platform", logging.ColorGray)
	plat, err := platform.New(platform.Options{
		Kind:          platform.Kind(cfg.Platform.Kind),
		XdotoolBinary: cfg.Platform.XdotoolBinary,
		ImportBinary:  cfg.Platform.ImportBinary,
		Logger:        logs.Prefixed("platform"),
	})
	if err != nil {
		return fmt.Errorf("initialising platform: %w", err)
	}
	log.Info("platform ready", "kind", cfg.Platform.Kind)

	runtime := luart.New(luart.Options{
		Logger: log,
		Tagged: func(tag string) agent.Logger {
			logs.RegisterPrefix(tag, logging.ColorBlue)
			return logs.Prefixed(tag)
		},
	})

	registry := bot.NewRegistry(bot.Discover(cfg.Bots.Dir, cfg.Bots.EntryFile, runtime, log))
	registry.SetLogger(log)
	if saved, loadErr := store.Load(ctx); loadErr != nil {
		log.Warn("could not load settings, starting with every bot disabled", "error", loadErr)
	} else {
		registry.ApplyEnabled(saved.EnabledBots)
	}

	state := &bot.StateCell{}
	commands := make(chan bot.Command, commandQueueSize)

	sessionID := uuid.NewString()
	var observers orchestrator.Observers

	if db != nil && cfg.Database.TickHistory {
		history := telemetry.NewHistory(db.DB, log)
		sessionID = history.SessionID()
		if n, pruneErr := history.Prune(ctx, time.Now(), historyRetention); pruneErr != nil {
			log.Warn("pruning tick history failed", "error", pruneErr)
		} else if n > 0 {
			log.Info("tick history pruned", "rows", n)
		}
		observers = append(observers, history)
	}

	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		observers = append(observers, telemetry.NewMetrics(influxClient, nil))
	}

	var bridge *remote.Bridge
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })

		bridge = remote.New(remote.Options{
			Broker:    mqttClient,
			Registry:  registry,
			Commands:  commands,
			SessionID: sessionID,
			Logger:    log,
		})
		if startErr := bridge.Start(); startErr != nil {
			return fmt.Errorf("starting remote control: %w", startErr)
		}
		observers = append(observers, bridge)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"prefix", mqttClient.Topics().Prefix(),
		)
	}

	var trigger *hotkey.Listener
	if cfg.Hotkey.Enabled {
		trigger, err = hotkey.New(cfg.Hotkey.Signal, log)
		if err != nil {
			log.Warn("global hotkey unavailable", "error", err)
		}
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Registry: registry,
		State:    state,
		Platform: plat,
		Runtime:  runtime,
		Commands: commands,
		Settings: store,
		Logger:   logs.Prefixed("orchestrator"),
		Observer: observers,
		Config: orchestrator.Config{
			SettleDelay:     cfg.Scheduler.SettleDelay,
			PassInterval:    cfg.Scheduler.PassInterval,
			DefaultCooldown: cfg.Scheduler.DefaultCooldown,
			RescanInterval:  cfg.Scheduler.RescanInterval,
		},
	})
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}
	logs.RegisterPrefix("orchestrator", logging.ColorGray)

	if f.start {
		commands <- bot.StartStop()
	}

	g, gctx := errgroup.WithContext(ctx)
	// Surfaces end together with the orchestrator.
	surfaceCtx, stopSurfaces := context.WithCancel(gctx)
	defer stopSurfaces()

	g.Go(func() error {
		defer stopSurfaces()
		return orch.Run(gctx)
	})

	if bridge != nil {
		g.Go(func() error { return bridge.Run(surfaceCtx) })
	}
	if trigger != nil {
		g.Go(func() error { return trigger.Run(surfaceCtx) })
	}

	switch mode {
	case "tui":
		opts := tui.Options{
			Registry: registry,
			State:    state,
			Commands: commands,
			Records:  logs.Records(),
		}
		if trigger != nil {
			opts.Hotkey = trigger
		}
		g.Go(func() error { return tui.Run(surfaceCtx, opts) })
	default:
		if trigger != nil {
			g.Go(func() error { return trigger.Forward(surfaceCtx, state, commands) })
		}
		log.Info("running headless, interrupt to quit", "bots", registry.Len())
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if dropped := logs.Dropped(); dropped > 0 {
		log.Debug("log records dropped by the display", "count", dropped)
	}
	log.Info("finger stopped")
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("FINGER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config, f flags) {
	if f.stub {
		cfg.Platform.Kind = string(platform.KindStub)
	}
	if f.headless {
		cfg.UI.Mode = "headless"
	}
	if f.botsDir != "" {
		cfg.Bots.Dir = f.botsDir
	}
}

// uiMode resolves "auto" against whether a terminal is attached.
func uiMode(configured string, tty bool) string {
	if configured != "auto" {
		return configured
	}
	if tty {
		return "tui"
	}
	return "headless"
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}
	return db, nil
}

func newSettingsStore(cfg config.SettingsConfig, db *database.DB) settings.Store {
	if cfg.Backend == "sqlite" && db != nil {
		return settings.NewSQLiteStore(db)
	}
	return settings.NewFileStore(cfg.Path)
}
