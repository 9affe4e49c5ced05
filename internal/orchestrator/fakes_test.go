package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/finger/internal/agent"
	"github.com/nerrad567/finger/internal/bot"
	"github.com/nerrad567/finger/internal/platform"
	"github.com/nerrad567/finger/internal/settings"
)

// fakePlatform serves a mutable window table keyed by pattern.
type fakePlatform struct {
	windows map[string][]platform.WindowInfo
	created []platform.WindowID
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{windows: map[string][]platform.WindowInfo{}}
}

func (p *fakePlatform) set(pattern string, ids ...platform.WindowID) {
	var ws []platform.WindowInfo
	for _, id := range ids {
		ws = append(ws, platform.WindowInfo{ID: id, Title: fmt.Sprintf("%s #%d", pattern, id)})
	}
	p.windows[pattern] = ws
}

func (p *fakePlatform) Instances(pattern string) []platform.WindowInfo {
	return p.windows[pattern]
}

func (p *fakePlatform) CreateWindow(pattern string, id platform.WindowID) platform.Window {
	p.created = append(p.created, id)
	return platform.NewStub(nil).CreateWindow(pattern, id)
}

// fakeAgent records its lifecycle and answers ticks from fields.
type fakeAgent struct {
	id       string
	events   *[]string
	cooldown time.Duration
	hasCD    bool
	tickErr  error
	status   string
	statErr  error
	ticks    int
	resets   int
	stopped  bool
	active   bool
}

func (a *fakeAgent) log(ev string) {
	if a.events != nil {
		*a.events = append(*a.events, a.id+":"+ev)
	}
}

func (a *fakeAgent) Tick() (time.Duration, bool, error) {
	a.ticks++
	a.log(fmt.Sprintf("tick(active=%v)", a.active))
	return a.cooldown, a.hasCD, a.tickErr
}

func (a *fakeAgent) Status() (string, error) { return a.status, a.statErr }
func (a *fakeAgent) Reset() error            { a.resets++; a.log("reset"); return nil }
func (a *fakeAgent) Activate()               { a.log("activate") }

func (a *fakeAgent) Stop() error {
	a.stopped = true
	a.log("stop")
	return nil
}

func (a *fakeAgent) SetActive(active bool) {
	a.active = active
	a.log(fmt.Sprintf("active=%v", active))
}

// fakeRuntime creates fakeAgents and remembers every one it made.
type fakeRuntime struct {
	made    map[string][]*fakeAgent
	fail    map[string]bool
	events  []string
	prepare func(a *fakeAgent)
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{made: map[string][]*fakeAgent{}, fail: map[string]bool{}}
}

func (r *fakeRuntime) LoadMetadata(string) (agent.Metadata, error) {
	return agent.Metadata{}, nil
}

func (r *fakeRuntime) Instantiate(_ string, instanceID string, _ platform.Window) (agent.Agent, error) {
	if r.fail[instanceID] {
		return nil, errors.New("script exploded")
	}
	a := &fakeAgent{id: instanceID, events: &r.events}
	if r.prepare != nil {
		r.prepare(a)
	}
	r.made[instanceID] = append(r.made[instanceID], a)
	return a, nil
}

// latest returns the most recent agent made for id.
func (r *fakeRuntime) latest(id string) *fakeAgent {
	list := r.made[id]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// running counts agents made and not yet stopped.
func (r *fakeRuntime) running() int {
	n := 0
	for _, list := range r.made {
		for _, a := range list {
			if !a.stopped {
				n++
			}
		}
	}
	return n
}

type memStore struct {
	mu    sync.Mutex
	saved []settings.Settings
}

func (m *memStore) Load(context.Context) (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return settings.Settings{}, nil
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memStore) Save(_ context.Context, s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	return nil
}

type recordingObserver struct {
	states  []bot.RunState
	ticks   []TickResult
	changes int
}

func (r *recordingObserver) RunStateChanged(s bot.RunState) { r.states = append(r.states, s) }
func (r *recordingObserver) TickCompleted(t TickResult)     { r.ticks = append(r.ticks, t) }
func (r *recordingObserver) RegistryChanged()               { r.changes++ }
