package orchestrator

import (
	"context"

	"github.com/nerrad567/finger/internal/bot"
)

// processCommands drains the command channel without blocking. It reports
// false after Quit, a closed channel or a cancelled context.
func (o *Orchestrator) processCommands(ctx context.Context) bool {
	for {
		if ctx.Err() != nil {
			o.quit()
			return false
		}
		select {
		case cmd, ok := <-o.commands:
			if !ok {
				o.quit()
				return false
			}
			o.logger.Debug("command received", "command", cmd.String())
			if !o.handle(ctx, cmd) {
				return false
			}
		default:
			return true
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, cmd bot.Command) bool {
	switch cmd.Kind {
	case bot.CmdQuit:
		o.quit()
		return false
	case bot.CmdToggle:
		o.toggle(ctx, cmd.Index)
	case bot.CmdStartStop:
		o.startStop()
	case bot.CmdRestart:
		o.restart(cmd.Index)
	case bot.CmdRescan:
		o.rescan()
	default:
		o.logger.Warn("unknown command", "command", cmd.String())
	}
	return true
}

func (o *Orchestrator) quit() {
	o.logger.Info("shutting down")
	o.stopAll()
	o.setState(bot.Stopped)
}

func (o *Orchestrator) toggle(ctx context.Context, index int) {
	o.reconcileAll()

	enabled, err := o.registry.Toggle(index)
	if err != nil {
		o.logger.Warn("toggle ignored", "index", index, "error", err)
		return
	}
	o.persist(ctx)
	defer o.observer.RegistryChanged()

	entry, err := o.registry.Get(index)
	if err != nil {
		return
	}
	o.logger.Info("bot toggled", "bot", entry.Name, "enabled", enabled)

	if !enabled {
		for _, inst := range entry.Instances {
			o.stopAgent(inst.ID)
		}
		return
	}
	if o.state.Get() != bot.Running {
		return
	}
	for _, inst := range entry.Instances {
		if a, ok := o.agents[inst.ID]; ok {
			if err := a.Reset(); err != nil {
				o.logger.Warn("agent reset failed", "instance", inst.ID, "error", err)
			}
			continue
		}
		o.spawn(entry, inst)
	}
}

func (o *Orchestrator) startStop() {
	switch o.state.Get() {
	case bot.Stopped:
		o.setState(bot.Running)
		o.logger.Info("orchestrator started")
		o.spawnMissing()
	case bot.Running:
		o.setState(bot.Stopping)
		o.logger.Info("orchestrator stopping")
	case bot.Stopping:
		o.logger.Debug("start/stop ignored while stopping")
	}
}

func (o *Orchestrator) restart(index int) {
	if o.state.Get() != bot.Running {
		return
	}
	entry, err := o.registry.Get(index)
	if err != nil {
		o.logger.Warn("restart ignored", "index", index, "error", err)
		return
	}
	if !entry.Enabled {
		return
	}

	o.logger.Info("restarting bot", "bot", entry.Name)
	for _, inst := range entry.Instances {
		o.stopAgent(inst.ID)
		o.spawn(entry, inst)
	}
}

func (o *Orchestrator) rescan() {
	o.reconcileAll()
	if o.state.Get() == bot.Running {
		o.spawnMissing()
	}
	o.observer.RegistryChanged()
}
