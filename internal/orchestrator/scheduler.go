package orchestrator

import (
	"context"

	"github.com/nerrad567/finger/internal/agent"
	"github.com/nerrad567/finger/internal/bot"
)

type readyInstance struct {
	bot string
	id  string
}

// readyInstances lists instances of enabled entries with a live agent whose
// cooldown has elapsed or was never set.
func (o *Orchestrator) readyInstances() []readyInstance {
	now := o.clock.Now()
	var ready []readyInstance
	for _, entry := range o.registry.Snapshot() {
		if !entry.Enabled {
			continue
		}
		for _, inst := range entry.Instances {
			if _, ok := o.agents[inst.ID]; !ok {
				continue
			}
			if deadline, ok := o.cooldowns[inst.ID]; ok && now.Before(deadline) {
				continue
			}
			ready = append(ready, readyInstance{bot: entry.Name, id: inst.ID})
		}
	}
	return ready
}

// schedulePass ticks every ready instance once. Commands are drained before
// each tick; the pass stops early when the state leaves Running.
func (o *Orchestrator) schedulePass(ctx context.Context) bool {
	for _, r := range o.readyInstances() {
		if !o.processCommands(ctx) {
			return false
		}
		if o.state.Get() != bot.Running {
			break
		}
		a, ok := o.agents[r.id]
		if !ok {
			continue
		}
		o.dispatch(r, a)
	}

	o.clock.Sleep(o.cfg.PassInterval)
	return true
}

func (o *Orchestrator) dispatch(r readyInstance, a agent.Agent) {
	a.SetActive(true)
	a.Activate()
	o.clock.Sleep(o.cfg.SettleDelay)

	started := o.clock.Now()
	cooldown, ok, err := a.Tick()
	elapsed := o.clock.Now().Sub(started)

	var (
		status   string
		statusOK bool
		errMsg   *string
	)
	if err != nil {
		o.logger.Error("tick error", "instance", r.id, "error", err)
		msg := err.Error()
		errMsg = &msg
		cooldown = o.cfg.DefaultCooldown
	} else {
		if !ok {
			cooldown = o.cfg.DefaultCooldown
		}
		if s, serr := a.Status(); serr == nil {
			status, statusOK = s, true
		} else {
			o.logger.Debug("status unavailable", "instance", r.id, "error", serr)
		}
	}

	o.cooldowns[r.id] = o.clock.Now().Add(cooldown)

	// The previous status stays when none was fetched.
	write := func() error { return o.registry.SetInstanceError(r.id, errMsg) }
	if statusOK {
		write = func() error { return o.registry.UpdateInstance(r.id, status, errMsg) }
	}
	if err := write(); err != nil {
		o.logger.Warn("tick result dropped", "instance", r.id, "error", err)
	}
	a.SetActive(false)

	o.observer.TickCompleted(TickResult{
		Bot:        r.bot,
		InstanceID: r.id,
		Started:    started,
		Duration:   elapsed,
		Cooldown:   cooldown,
		Status:     status,
		Err:        err,
	})
}
