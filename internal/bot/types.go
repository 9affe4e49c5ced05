package bot

import (
	"strconv"

	"github.com/nerrad567/finger/internal/platform"
)

// Definition is a discovered bot script. It is immutable after discovery.
type Definition struct {
	// Name is the script directory relative to the bots root, '/'-separated.
	Name          string
	WindowPattern string
	Description   string
	ScriptPath    string
}

// Instance is a definition bound to one live window.
type Instance struct {
	ID          string
	WindowID    platform.WindowID
	WindowTitle string
	Status      string
	Error       *string
}

// InstanceID returns the stable identifier of name bound to window id.
func InstanceID(name string, id platform.WindowID) string {
	return name + "-" + strconv.FormatUint(uint64(id), 10)
}

// NewInstance creates a fresh instance with an empty status.
func NewInstance(name string, w platform.WindowInfo) Instance {
	return Instance{
		ID:          InstanceID(name, w.ID),
		WindowID:    w.ID,
		WindowTitle: w.Title,
	}
}

// DeepCopy returns a copy that shares no pointers with i.
func (i Instance) DeepCopy() Instance {
	cpy := i
	if i.Error != nil {
		e := *i.Error
		cpy.Error = &e
	}
	return cpy
}

// Entry is a definition plus its runtime state.
type Entry struct {
	Definition
	Enabled   bool
	Instances []Instance
}

// DeepCopy returns a copy that shares no slices or pointers with e.
func (e *Entry) DeepCopy() *Entry {
	if e == nil {
		return nil
	}
	cpy := *e
	if e.Instances != nil {
		cpy.Instances = make([]Instance, len(e.Instances))
		for i, inst := range e.Instances {
			cpy.Instances[i] = inst.DeepCopy()
		}
	}
	return &cpy
}

// Instance returns the instance with id.
func (e *Entry) Instance(id string) (Instance, bool) {
	for _, inst := range e.Instances {
		if inst.ID == id {
			return inst, true
		}
	}
	return Instance{}, false
}
