// Package orchestrator runs finger's control loop.
//
// One goroutine owns every live agent. It drains control commands, keeps the
// registry's instances aligned with the windows on screen, and ticks ready
// agents one at a time:
//
//	┌────────────────────────── Run loop ───────────────────────────┐
//	│ 1. drain commands (Toggle, StartStop, Restart, Rescan, Quit)  │
//	│ 2. Stopping? stop every agent, clear cooldowns, -> Stopped    │
//	│ 3. Running?  snapshot ready ids, then for each id:            │
//	│      drain commands again, abort if no longer Running         │
//	│      SetActive(true), Activate, settle, Tick                  │
//	│      write status/error to registry, SetActive(false)         │
//	│ 4. sleep the pass interval                                    │
//	└───────────────────────────────────────────────────────────────┘
//
// # Invariants
//
//   - An agent exists for an instance only while its entry is enabled and
//     the state is Running.
//   - At most one agent exists per instance ID.
//   - Agents of vanished windows are stopped before their instance is
//     removed from the registry.
//
// The registry lock is never held across platform or agent calls.
package orchestrator
