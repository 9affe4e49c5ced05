package bot

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nerrad567/finger/internal/platform"
)

// Logger defines the logging interface used by the Registry and discovery.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the ordered list of entries shared between the orchestrator
// and the control surfaces. Entry indices are stable for the lifetime of
// the registry.
//
// All public methods are thread-safe. Reads return deep copies.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	logger  Logger
}

// NewRegistry creates a registry over entries in discovery order.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{
		entries: make([]Entry, len(entries)),
		logger:  noopLogger{},
	}
	for i := range entries {
		r.entries[i] = *entries[i].DeepCopy()
	}
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns deep copies of all entries.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	for i := range r.entries {
		out[i] = *r.entries[i].DeepCopy()
	}
	return out
}

// Get returns a deep copy of entry index.
func (r *Registry) Get(index int) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.entries) {
		return Entry{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return *r.entries[index].DeepCopy(), nil
}

// Patterns returns the window pattern of every entry, by index.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.entries))
	for i := range r.entries {
		out[i] = r.entries[i].WindowPattern
	}
	return out
}

// Dead returns the IDs of instances whose window is absent from live, where
// live[i] holds the windows of entry i.
func (r *Registry) Dead(live [][]platform.WindowInfo) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for i := range r.entries {
		if i >= len(live) {
			break
		}
		ids = append(ids, Dead(&r.entries[i], live[i])...)
	}
	return ids
}

// ApplyWindows reconciles every entry against live and returns the removed
// instances.
func (r *Registry) ApplyWindows(live [][]platform.WindowInfo) []Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []Instance
	for i := range r.entries {
		if i >= len(live) {
			break
		}
		before := len(r.entries[i].Instances)
		gone := Reconcile(&r.entries[i], live[i])
		removed = append(removed, gone...)
		if len(gone) > 0 || len(r.entries[i].Instances) != before {
			r.logger.Debug("instances reconciled",
				"bot", r.entries[i].Name,
				"removed", len(gone),
				"count", len(r.entries[i].Instances),
			)
		}
	}
	return removed
}

// Toggle flips the enabled flag of entry index and returns the new value.
func (r *Registry) Toggle(index int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.entries) {
		return false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	r.entries[index].Enabled = !r.entries[index].Enabled
	return r.entries[index].Enabled, nil
}

// ApplyEnabled enables exactly the entries whose name is in names. Unknown
// names are ignored.
func (r *Registry) ApplyEnabled(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		r.entries[i].Enabled = slices.Contains(names, r.entries[i].Name)
	}
}

// EnabledNames returns the names of enabled entries in registry order.
func (r *Registry) EnabledNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := []string{}
	for i := range r.entries {
		if r.entries[i].Enabled {
			names = append(names, r.entries[i].Name)
		}
	}
	return names
}

// UpdateInstance writes the outcome of a tick to instance id.
func (r *Registry) UpdateInstance(id, status string, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst := r.find(id)
	if inst == nil {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	inst.Status = status
	inst.Error = cloneStringPtr(errMsg)
	return nil
}

// SetInstanceError records err on instance id, leaving status untouched.
// A nil err clears it.
func (r *Registry) SetInstanceError(id string, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst := r.find(id)
	if inst == nil {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	inst.Error = cloneStringPtr(errMsg)
	return nil
}

// find must be called with r.mu held.
func (r *Registry) find(id string) *Instance {
	for i := range r.entries {
		for j := range r.entries[i].Instances {
			if r.entries[i].Instances[j].ID == id {
				return &r.entries[i].Instances[j]
			}
		}
	}
	return nil
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
