// Package bot holds the shared model of discovered automation bots.
//
// A Definition is one script found under the bots directory. Each live
// window matching the definition's pattern becomes an Instance. An Entry
// pairs a Definition with its enabled flag and current Instances.
//
// Architecture:
//
//	┌──────────────┐  commands   ┌──────────────────┐
//	│ control      │────────────▶│  orchestrator     │
//	│ surfaces     │             │  (sole mutator)   │
//	└──────┬───────┘             └────────┬─────────┘
//	       │ Snapshot / Get               │ Reconcile / Toggle / UpdateInstance
//	       ▼                              ▼
//	┌─────────────────────────────────────────────────┐
//	│  Registry (RWMutex)        StateCell (RWMutex)   │
//	└─────────────────────────────────────────────────┘
//
// # Thread Safety
//
// Registry and StateCell are safe for concurrent use. Control surfaces only
// read them; all mutation happens on the orchestrator goroutine. Locks are
// never held across platform or agent calls.
package bot
