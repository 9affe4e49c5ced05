// Package tui is the terminal control surface.
//
// The left pane lists every discovered bot with its enabled marker and,
// for enabled bots, one line per bound window showing the last status or
// error. A banner shows the orchestrator run state. The right pane shows
// the log stream with colored prefixes.
//
// The model never mutates the registry. Every action becomes a
// bot.Command on the orchestrator channel, and the view re-reads the
// registry snapshot on each refresh tick.
package tui
