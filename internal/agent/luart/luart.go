// Package luart runs agent scripts written in Lua.
//
// A script is a Lua file that returns a table:
//
//	return {
//	  window_pattern = "World of Warcraft",
//	  description    = "keeps the character awake",
//	  start      = function(win) w = win end,    -- optional
//	  tick       = function() w:tap("space"); return 30000 end,
//	  get_status = function() return "idle" end, -- optional
//	  reset      = function() end,               -- optional
//	  stop       = function() end,               -- optional
//	}
//
// Scripts see a global F table with F.sleep(secs) and F.log(msg), and the
// window userdata passed to start with activate, click, tap, type and
// decodev2 methods. Every agent owns a private Lua state.
package luart

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/nerrad567/finger/internal/agent"
	"github.com/nerrad567/finger/internal/clock"
	"github.com/nerrad567/finger/internal/platform"
)

const windowTypeName = "finger.window"

// Options configures a Runtime.
type Options struct {
	// Logger receives runtime diagnostics and untagged F.log output.
	Logger agent.Logger

	// Tagged returns the logger used for F.log of scripts whose parent
	// directory is tag. Nil means Logger is used with a "tag" attribute.
	Tagged func(tag string) agent.Logger

	Clock clock.Clock

	// Rand overrides the jitter source; tests pin it.
	Rand func() float64
}

// Runtime is the Lua implementation of agent.Runtime.
type Runtime struct {
	logger agent.Logger
	tagged func(string) agent.Logger
	sleep  agent.Sleeper
}

// New creates a Lua runtime.
func New(opts Options) *Runtime {
	if opts.Logger == nil {
		opts.Logger = agent.NoopLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	r := &Runtime{
		logger: opts.Logger,
		tagged: opts.Tagged,
		sleep:  agent.Sleeper{Clock: opts.Clock, Rand: opts.Rand},
	}
	if r.tagged == nil {
		base := opts.Logger
		r.tagged = func(tag string) agent.Logger {
			return taggedLogger{base: base, tag: tag}
		}
	}
	return r
}

// LoadMetadata evaluates the script in a throwaway state without calling
// start.
func (r *Runtime) LoadMetadata(path string) (agent.Metadata, error) {
	L := lua.NewState()
	defer L.Close()
	r.registerGlobals(L, agent.NoopLogger{})

	tbl, err := loadScript(L, path)
	if err != nil {
		return agent.Metadata{}, err
	}

	pattern, ok := tbl.RawGetString("window_pattern").(lua.LString)
	if !ok {
		return agent.Metadata{}, fmt.Errorf("%s: %w: window_pattern", path, agent.ErrMissingField)
	}
	description, ok := tbl.RawGetString("description").(lua.LString)
	if !ok {
		return agent.Metadata{}, fmt.Errorf("%s: %w: description", path, agent.ErrMissingField)
	}
	if _, ok := tbl.RawGetString("tick").(*lua.LFunction); !ok {
		return agent.Metadata{}, fmt.Errorf("%s: %w", path, agent.ErrMissingTick)
	}

	return agent.Metadata{WindowPattern: string(pattern), Description: string(description)}, nil
}

// Instantiate evaluates the script in a fresh state and calls start(win).
func (r *Runtime) Instantiate(path, instanceID string, win platform.Window) (agent.Agent, error) {
	L := lua.NewState()

	tag := filepath.Base(filepath.Dir(path))
	r.registerGlobals(L, r.tagged(tag))

	tbl, err := loadScript(L, path)
	if err != nil {
		L.Close()
		return nil, err
	}
	if _, ok := tbl.RawGetString("tick").(*lua.LFunction); !ok {
		L.Close()
		return nil, fmt.Errorf("%s: %w", path, agent.ErrMissingTick)
	}

	gated := agent.NewGatedWindow(win, instanceID, r.logger)
	ud := L.NewUserData()
	ud.Value = gated
	L.SetMetatable(ud, L.GetTypeMetatable(windowTypeName))

	if start, ok := tbl.RawGetString("start").(*lua.LFunction); ok {
		if err := L.CallByParam(lua.P{Fn: start, NRet: 0, Protect: true}, ud); err != nil {
			L.Close()
			return nil, fmt.Errorf("%s: start: %w", path, err)
		}
	}

	return &luaAgent{L: L, script: tbl, win: gated, path: path}, nil
}

func loadScript(L *lua.LState, path string) (*lua.LTable, error) {
	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if L.GetTop() == 0 {
		return nil, fmt.Errorf("%s: %w", path, agent.ErrInvalidScript)
	}
	ret := L.Get(-1)
	L.Pop(L.GetTop())
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s: %w, got %s", path, agent.ErrInvalidScript, ret.Type())
	}
	return tbl, nil
}

// registerGlobals installs the F table and the window metatable.
func (r *Runtime) registerGlobals(L *lua.LState, logTo agent.Logger) {
	f := L.NewTable()
	L.SetField(f, "sleep", L.NewFunction(func(L *lua.LState) int {
		secs := float64(L.CheckNumber(1))
		r.sleep.Sleep(secs)
		return 0
	}))
	L.SetField(f, "log", L.NewFunction(func(L *lua.LState) int {
		logTo.Info(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("F", f)

	mt := L.NewTypeMetatable(windowTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), windowMethods))
}

var windowMethods = map[string]lua.LGFunction{
	"activate": func(L *lua.LState) int {
		checkWindow(L).Activate()
		return 0
	},
	"click": func(L *lua.LState) int {
		w := checkWindow(L)
		w.Click(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
		return 0
	},
	"tap": func(L *lua.LState) int {
		w := checkWindow(L)
		w.Tap(L.CheckString(2))
		return 0
	},
	"type": func(L *lua.LState) int {
		w := checkWindow(L)
		w.Type(L.CheckString(2))
		return 0
	},
	"decodev2": func(L *lua.LState) int {
		if s, ok := checkWindow(L).DecodeHint(); ok {
			L.Push(lua.LString(s))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	},
}

func checkWindow(L *lua.LState) *agent.GatedWindow {
	ud := L.CheckUserData(1)
	if w, ok := ud.Value.(*agent.GatedWindow); ok {
		return w
	}
	L.ArgError(1, "window expected")
	return nil
}

// luaAgent is one running script.
type luaAgent struct {
	L       *lua.LState
	script  *lua.LTable
	win     *agent.GatedWindow
	path    string
	stopped bool
}

// call invokes the optional function name. It reports false when the script
// does not define it.
func (a *luaAgent) call(name string, nret int) (lua.LValue, bool, error) {
	if a.stopped {
		return lua.LNil, false, agent.ErrStopped
	}
	fn, ok := a.script.RawGetString(name).(*lua.LFunction)
	if !ok {
		return lua.LNil, false, nil
	}
	if err := a.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}); err != nil {
		return lua.LNil, true, fmt.Errorf("%s: %s: %w", a.path, name, err)
	}
	if nret == 0 {
		return lua.LNil, true, nil
	}
	ret := a.L.Get(-1)
	a.L.Pop(1)
	return ret, true, nil
}

func (a *luaAgent) Tick() (time.Duration, bool, error) {
	ret, found, err := a.call("tick", 1)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, fmt.Errorf("%s: %w", a.path, agent.ErrMissingTick)
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, false, nil
	}
	return cooldownFromMillis(float64(n))
}

// maxCooldownMillis is the largest millisecond count a time.Duration holds.
const maxCooldownMillis = math.MaxInt64 / int64(time.Millisecond)

// cooldownFromMillis saturates at both ends. NaN counts as no cooldown.
func cooldownFromMillis(ms float64) (time.Duration, bool, error) {
	switch {
	case math.IsNaN(ms):
		return 0, false, nil
	case ms <= 0:
		return 0, true, nil
	case ms >= float64(maxCooldownMillis):
		return time.Duration(maxCooldownMillis) * time.Millisecond, true, nil
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

func (a *luaAgent) Status() (string, error) {
	ret, found, err := a.call("get_status", 1)
	if err != nil || !found {
		return "", err
	}
	switch v := ret.(type) {
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		return v.String(), nil
	default:
		if ret == lua.LNil {
			return "", nil
		}
		return "", fmt.Errorf("%s: get_status: %w: %s", a.path, agent.ErrBadReturn, ret.Type())
	}
}

func (a *luaAgent) Reset() error {
	_, _, err := a.call("reset", 0)
	return err
}

func (a *luaAgent) Stop() error {
	if a.stopped {
		return nil
	}
	_, _, err := a.call("stop", 0)
	a.stopped = true
	a.win.SetActive(false)
	a.L.Close()
	return err
}

func (a *luaAgent) Activate() { a.win.Activate() }

func (a *luaAgent) SetActive(active bool) { a.win.SetActive(active) }

type taggedLogger struct {
	base agent.Logger
	tag  string
}

func (l taggedLogger) Info(msg string, args ...any) {
	l.base.Info(msg, append([]any{"prefix", l.tag}, args...)...)
}
func (l taggedLogger) Debug(msg string, args ...any) {
	l.base.Debug(msg, append([]any{"prefix", l.tag}, args...)...)
}
func (l taggedLogger) Warn(msg string, args ...any) {
	l.base.Warn(msg, append([]any{"prefix", l.tag}, args...)...)
}
func (l taggedLogger) Error(msg string, args ...any) {
	l.base.Error(msg, append([]any{"prefix", l.tag}, args...)...)
}
