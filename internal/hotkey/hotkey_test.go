//go:build unix

package hotkey

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/nerrad567/finger/internal/bot"
)

func TestNew_Signals(t *testing.T) {
	tests := []struct {
		name    string
		want    syscall.Signal
		wantErr bool
	}{
		{name: "SIGUSR1", want: syscall.SIGUSR1},
		{name: "usr2", want: syscall.SIGUSR2},
		{name: " SIGHUP ", want: syscall.SIGHUP},
		{name: "SIGBOGUS", wantErr: true},
		{name: "", wantErr: true},
		{name: "SIGKILL", wantErr: true},
		{name: "SIGINT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.name, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSignal) {
					t.Errorf("New(%q) error = %v, want ErrUnknownSignal", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.name, err)
			}
			if l.sig != tt.want {
				t.Errorf("signal = %v, want %v", l.sig, tt.want)
			}
		})
	}
}

func TestTake_Latches(t *testing.T) {
	l, err := New("SIGUSR1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Take() {
		t.Fatal("Take() before Trigger = true")
	}
	l.Trigger()
	l.Trigger()
	if !l.Take() {
		t.Fatal("Take() after Trigger = false")
	}
	if l.Take() {
		t.Error("second Take() = true, want cleared")
	}
}

func TestConsume(t *testing.T) {
	tests := []struct {
		name     string
		state    bot.RunState
		fire     bool
		wantSent bool
	}{
		{name: "running sends start stop", state: bot.Running, fire: true, wantSent: true},
		{name: "stopped discards", state: bot.Stopped, fire: true},
		{name: "stopping discards", state: bot.Stopping, fire: true},
		{name: "not fired", state: bot.Running},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := New("SIGUSR1", nil)
			var state bot.StateCell
			state.Set(tt.state)
			cmds := make(chan bot.Command, 1)
			if tt.fire {
				l.Trigger()
			}

			if got := l.Consume(&state, cmds); got != tt.wantSent {
				t.Errorf("Consume() = %v, want %v", got, tt.wantSent)
			}
			if tt.wantSent {
				if cmd := <-cmds; cmd != bot.StartStop() {
					t.Errorf("command = %v, want start_stop", cmd)
				}
			}
			if l.Take() {
				t.Error("flag not cleared by Consume")
			}
		})
	}
}

func TestConsume_FullQueue(t *testing.T) {
	l, _ := New("SIGUSR1", nil)
	var state bot.StateCell
	state.Set(bot.Running)
	cmds := make(chan bot.Command)

	l.Trigger()
	if l.Consume(&state, cmds) {
		t.Error("Consume() on a full queue = true")
	}
}

func TestRun_DeliversSignal(t *testing.T) {
	l, err := New("SIGUSR2", nil)
	if err != nil {
		t.Fatal(err)
	}
	var state bot.StateCell
	state.Set(bot.Running)
	cmds := make(chan bot.Command, 1)

	// Keep the default action (terminate) away while Run registers.
	guard := make(chan os.Signal, 16)
	signal.Notify(guard, syscall.SIGUSR2)
	defer signal.Stop(guard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- l.Run(ctx) }()
	fwdDone := make(chan error, 1)
	go func() { fwdDone <- l.Forward(ctx, &state, cmds) }()

	// Run registers asynchronously; resend until seen.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
			t.Fatal(err)
		}
		select {
		case cmd := <-cmds:
			if cmd != bot.StartStop() {
				t.Errorf("command = %v, want start_stop", cmd)
			}
			cancel()
			if err := <-runDone; err != nil {
				t.Errorf("Run() error = %v", err)
			}
			if err := <-fwdDone; err != nil {
				t.Errorf("Forward() error = %v", err)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("signal never forwarded")
		}
	}
}
