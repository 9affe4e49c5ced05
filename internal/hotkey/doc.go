// Package hotkey provides the global start/stop trigger.
//
// The trigger is a process signal (SIGUSR1 by default) so it can be bound
// to a desktop-wide shortcut with any hotkey daemon:
//
//	pkill -USR1 finger
//
// The listener only raises a flag. The active control surface consumes the
// flag and, when the orchestrator is Running, sends StartStop so the
// running agents wind down. A trigger while Stopped is discarded.
package hotkey
