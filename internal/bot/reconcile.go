package bot

import "github.com/nerrad567/finger/internal/platform"

// Reconcile aligns e.Instances with the live windows. Instances whose window
// is gone are removed and returned; surviving instances keep their status
// and error; new windows are appended in the order given. Applying the same
// live list twice is a no-op.
func Reconcile(e *Entry, live []platform.WindowInfo) []Instance {
	alive := make(map[platform.WindowID]bool, len(live))
	for _, w := range live {
		alive[w.ID] = true
	}

	var removed []Instance
	kept := make([]Instance, 0, len(e.Instances)+len(live))
	known := make(map[platform.WindowID]bool, len(e.Instances))
	for _, inst := range e.Instances {
		if !alive[inst.WindowID] {
			removed = append(removed, inst)
			continue
		}
		kept = append(kept, inst)
		known[inst.WindowID] = true
	}

	for _, w := range live {
		if known[w.ID] {
			continue
		}
		kept = append(kept, NewInstance(e.Name, w))
		known[w.ID] = true
	}

	e.Instances = kept
	return removed
}

// Dead returns the IDs of instances in e whose window is not in live.
func Dead(e *Entry, live []platform.WindowInfo) []string {
	alive := make(map[platform.WindowID]bool, len(live))
	for _, w := range live {
		alive[w.ID] = true
	}
	var ids []string
	for _, inst := range e.Instances {
		if !alive[inst.WindowID] {
			ids = append(ids, inst.ID)
		}
	}
	return ids
}
