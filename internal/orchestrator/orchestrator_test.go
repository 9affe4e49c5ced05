package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/clock"
)

type harness struct {
	o        *Orchestrator
	cmds     chan bot.Command
	reg      *bot.Registry
	state    *bot.StateCell
	plat     *fakePlatform
	rt       *fakeRuntime
	store    *memStore
	clk      *clock.Fake
	observer *recordingObserver
}

// newHarness builds an orchestrator over two definitions: "wow" with
// windows 1 and 2, and "other" with window 9. Instances are reconciled.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cmds:     make(chan bot.Command, 16),
		state:    &bot.StateCell{},
		plat:     newFakePlatform(),
		rt:       newFakeRuntime(),
		store:    &memStore{},
		clk:      clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		observer: &recordingObserver{},
	}
	h.reg = bot.NewRegistry([]bot.Entry{
		{Definition: bot.Definition{Name: "wow", WindowPattern: "wow", ScriptPath: "bots/wow/main.lua"}},
		{Definition: bot.Definition{Name: "other", WindowPattern: "other", ScriptPath: "bots/other/main.lua"}},
	})
	h.plat.set("wow", 1, 2)
	h.plat.set("other", 9)

	o, err := New(Options{
		Registry: h.reg,
		State:    h.state,
		Platform: h.plat,
		Runtime:  h.rt,
		Commands: h.cmds,
		Settings: h.store,
		Clock:    h.clk,
		Observer: h.observer,
		Config:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.o = o
	o.reconcileAll()
	return h
}

// send queues cmds and drains them.
func (h *harness) send(t *testing.T, cmds ...bot.Command) bool {
	t.Helper()
	for _, c := range cmds {
		h.cmds <- c
	}
	return h.o.processCommands(context.Background())
}

func (h *harness) agentIDs() []string {
	ids := make([]string, 0, len(h.o.agents))
	for id := range h.o.agents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func TestNew_MissingDependency(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("New() error = %v, want ErrMissingDependency", err)
	}
}

func TestScenario_ToggleAndWindowLoss(t *testing.T) {
	h := newHarness(t)

	h.send(t, bot.StartStop())
	if h.state.Get() != bot.Running {
		t.Fatalf("state = %v, want running", h.state.Get())
	}
	if len(h.o.agents) != 0 {
		t.Fatalf("agents = %v, want none while disabled", h.agentIDs())
	}

	h.send(t, bot.Toggle(0))
	if got := h.agentIDs(); !reflect.DeepEqual(got, []string{"wow-1", "wow-2"}) {
		t.Fatalf("agents = %v, want [wow-1 wow-2]", got)
	}

	if err := h.reg.UpdateInstance("wow-2", "farming", nil); err != nil {
		t.Fatalf("UpdateInstance() error = %v", err)
	}
	survivor := h.rt.latest("wow-2")

	h.plat.set("wow", 2)
	h.send(t, bot.Toggle(1))

	if got := h.agentIDs(); !reflect.DeepEqual(got, []string{"other-9", "wow-2"}) {
		t.Errorf("agents = %v, want [other-9 wow-2]", got)
	}
	if !h.rt.latest("wow-1").stopped {
		t.Error("agent of vanished window was not stopped")
	}
	if h.o.agents["wow-2"] != survivor || survivor.stopped || survivor.resets != 0 {
		t.Error("surviving agent was replaced, stopped or reset")
	}
	entry, _ := h.reg.Get(0)
	if len(entry.Instances) != 1 || entry.Instances[0].Status != "farming" {
		t.Errorf("survivor instance = %+v, want status farming", entry.Instances)
	}
}

func TestQuit_ClearsEverything(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop(), bot.Toggle(0), bot.Toggle(1))
	if len(h.o.agents) != 3 {
		t.Fatalf("agents = %v, want 3", h.agentIDs())
	}

	if h.send(t, bot.Quit()) {
		t.Fatal("processCommands() = true after Quit")
	}
	if len(h.o.agents) != 0 || len(h.o.cooldowns) != 0 {
		t.Errorf("after Quit agents = %v cooldowns = %v", h.agentIDs(), h.o.cooldowns)
	}
	if h.state.Get() != bot.Stopped {
		t.Errorf("state = %v, want stopped", h.state.Get())
	}
	if h.rt.running() != 0 {
		t.Errorf("%d agents still running after Quit", h.rt.running())
	}
}

func TestQuit_CommandsAfterQuitAreNotProcessed(t *testing.T) {
	h := newHarness(t)
	if h.send(t, bot.Quit(), bot.StartStop()) {
		t.Fatal("processCommands() = true after Quit")
	}
	if h.state.Get() != bot.Stopped {
		t.Errorf("state = %v, want stopped", h.state.Get())
	}
}

func TestToggleOffOn_NeverDuplicates(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop())

	for range 5 {
		h.send(t, bot.Toggle(0))
		if h.rt.running() != len(h.o.agents) {
			t.Fatalf("running agents = %d, table = %d", h.rt.running(), len(h.o.agents))
		}
	}
	// Odd number of toggles leaves the entry enabled.
	if got := h.agentIDs(); !reflect.DeepEqual(got, []string{"wow-1", "wow-2"}) {
		t.Errorf("agents = %v", got)
	}
	if n := len(h.rt.made["wow-1"]); n != 3 {
		t.Errorf("wow-1 instantiated %d times, want 3", n)
	}
}

func TestToggle_PersistsSettings(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.Toggle(1))
	h.send(t, bot.Toggle(0))

	got, _ := h.store.Load(context.Background())
	if want := []string{"wow", "other"}; !reflect.DeepEqual(got.EnabledBots, want) {
		t.Errorf("saved = %v, want %v", got.EnabledBots, want)
	}
	if len(h.o.agents) != 0 {
		t.Error("agents created while stopped")
	}
}

func TestToggle_OutOfRangeStillReconciles(t *testing.T) {
	h := newHarness(t)
	h.plat.set("other", 9, 10)

	h.send(t, bot.Toggle(7))

	entry, _ := h.reg.Get(1)
	if len(entry.Instances) != 2 {
		t.Errorf("instances = %+v, want reconcile to add window 10", entry.Instances)
	}
	if names := h.reg.EnabledNames(); len(names) != 0 {
		t.Errorf("enabled = %v, want none", names)
	}
	if len(h.store.saved) != 0 {
		t.Error("settings saved for ignored toggle")
	}
}

func TestToggle_EnableResetsExistingAgent(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop(), bot.Toggle(0))
	a := h.rt.latest("wow-1")

	// Disable in the registry without going through the orchestrator so the
	// agent survives, then enable via Toggle.
	h.reg.ApplyEnabled(nil)
	h.send(t, bot.Toggle(0))

	if a.resets != 1 || a.stopped {
		t.Errorf("existing agent resets = %d stopped = %v, want reset once", a.resets, a.stopped)
	}
	if len(h.rt.made["wow-1"]) != 1 {
		t.Error("existing agent was replaced instead of reset")
	}
}

func TestStartStop_Transitions(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.Toggle(0))
	if len(h.o.agents) != 0 {
		t.Fatal("agents created while stopped")
	}

	h.send(t, bot.StartStop())
	if len(h.o.agents) != 2 {
		t.Fatalf("agents = %v after start, want 2", h.agentIDs())
	}

	h.send(t, bot.StartStop())
	if h.state.Get() != bot.Stopping {
		t.Fatalf("state = %v, want stopping", h.state.Get())
	}
	h.send(t, bot.StartStop())
	if h.state.Get() != bot.Stopping {
		t.Errorf("StartStop while stopping changed state to %v", h.state.Get())
	}

	if !h.o.step(context.Background()) {
		t.Fatal("step() = false")
	}
	if h.state.Get() != bot.Stopped || len(h.o.agents) != 0 || h.rt.running() != 0 {
		t.Errorf("after stop: state = %v agents = %v running = %d", h.state.Get(), h.agentIDs(), h.rt.running())
	}

	want := []bot.RunState{bot.Running, bot.Stopping, bot.Stopped}
	if !reflect.DeepEqual(h.observer.states, want) {
		t.Errorf("observed states = %v, want %v", h.observer.states, want)
	}
}

func TestRestart(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop(), bot.Toggle(0))
	old := h.rt.latest("wow-1")
	h.o.cooldowns["wow-1"] = h.clk.Now().Add(time.Hour)

	h.send(t, bot.Restart(0))

	if !old.stopped {
		t.Error("old agent not stopped on restart")
	}
	if h.o.agents["wow-1"] == old || len(h.rt.made["wow-1"]) != 2 {
		t.Error("agent not recreated on restart")
	}
	if _, ok := h.o.cooldowns["wow-1"]; ok {
		t.Error("cooldown survived restart")
	}

	// Disabled entries and out-of-range indices are ignored.
	h.send(t, bot.Restart(1), bot.Restart(42))
	if len(h.rt.made["other-9"]) != 0 {
		t.Error("restart created agent for disabled entry")
	}
}

func TestRestart_IgnoredWhenStopped(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.Toggle(0), bot.Restart(0))
	if len(h.o.agents) != 0 {
		t.Errorf("agents = %v, want none", h.agentIDs())
	}
}

func TestRescan_AddsAgentsForNewWindows(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop(), bot.Toggle(0))

	h.plat.set("wow", 1, 2, 3)
	h.send(t, bot.Rescan())

	if got := h.agentIDs(); !reflect.DeepEqual(got, []string{"wow-1", "wow-2", "wow-3"}) {
		t.Errorf("agents = %v", got)
	}
}

func TestPeriodicRescan(t *testing.T) {
	h := newHarness(t)
	h.o.cfg.RescanInterval = time.Minute
	h.o.lastRescan = h.clk.Now()
	h.plat.set("other", 9, 11)

	h.o.step(context.Background())
	if e, _ := h.reg.Get(1); len(e.Instances) != 1 {
		t.Fatalf("rescanned before interval elapsed")
	}

	h.clk.Advance(time.Minute)
	h.o.step(context.Background())
	if e, _ := h.reg.Get(1); len(e.Instances) != 2 {
		t.Errorf("instances = %+v, want periodic rescan to add window 11", e.Instances)
	}
}

func TestInstantiateFailure_RecordedOnInstance(t *testing.T) {
	h := newHarness(t)
	h.rt.fail["wow-2"] = true
	h.send(t, bot.StartStop(), bot.Toggle(0))

	if got := h.agentIDs(); !reflect.DeepEqual(got, []string{"wow-1"}) {
		t.Errorf("agents = %v, want [wow-1]", got)
	}
	entry, _ := h.reg.Get(0)
	inst, _ := entry.Instance("wow-2")
	if inst.Error == nil || !strings.Contains(*inst.Error, "exploded") {
		t.Errorf("instance error = %v, want instantiate failure", inst.Error)
	}

	// Retried on restart once the script is fixed; the error clears.
	delete(h.rt.fail, "wow-2")
	h.send(t, bot.Restart(0))
	entry, _ = h.reg.Get(0)
	inst, _ = entry.Instance("wow-2")
	if _, ok := h.o.agents["wow-2"]; !ok || inst.Error != nil {
		t.Errorf("retry: agent present = %v, error = %v", ok, inst.Error)
	}
}

func TestClosedChannelActsAsQuit(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop(), bot.Toggle(0))
	close(h.cmds)

	if h.o.processCommands(context.Background()) {
		t.Fatal("processCommands() = true on closed channel")
	}
	if len(h.o.agents) != 0 || h.state.Get() != bot.Stopped {
		t.Errorf("agents = %v state = %v", h.agentIDs(), h.state.Get())
	}
}

func TestRun_ReturnsOnCancelledContext(t *testing.T) {
	h := newHarness(t)
	h.send(t, bot.StartStop(), bot.Toggle(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.o.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(h.o.agents) != 0 || h.state.Get() != bot.Stopped {
		t.Errorf("agents = %v state = %v", h.agentIDs(), h.state.Get())
	}
}

func TestRun_QuitQueued(t *testing.T) {
	h := newHarness(t)
	h.cmds <- bot.StartStop()
	h.cmds <- bot.Toggle(0)
	h.cmds <- bot.Quit()

	done := make(chan error, 1)
	go func() { done <- h.o.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after Quit")
	}
	if h.rt.running() != 0 {
		t.Errorf("%d agents still running", h.rt.running())
	}
}

func TestRegistryChanged_NotifiedWhileStopped(t *testing.T) {
	h := newHarness(t)

	h.send(t, bot.Toggle(0))
	if h.observer.changes != 1 {
		t.Errorf("changes after toggle = %d, want 1", h.observer.changes)
	}
	if len(h.observer.states) != 0 {
		t.Errorf("state changes = %v, want none while stopped", h.observer.states)
	}

	h.send(t, bot.Toggle(7))
	if h.observer.changes != 1 {
		t.Errorf("out-of-range toggle notified observers")
	}

	h.send(t, bot.Rescan())
	if h.observer.changes != 2 {
		t.Errorf("changes after rescan = %d, want 2", h.observer.changes)
	}
}
