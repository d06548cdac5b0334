package watcher

// Registry is the ordered set of watched entries. It is not safe for
// concurrent use; a Session confines it to its dispatcher.
type Registry struct {
	entries []Entry
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Refresh replaces every entry with one unmonitored entry per resource.
// Earlier monitor selections are discarded. Resources without a path are
// skipped and a repeated path keeps its first slot.
func (r *Registry) Refresh(resources []Resource) {
	r.entries = make([]Entry, 0, len(resources))
	r.index = make(map[string]int, len(resources))
	for _, resource := range resources {
		if resource.Path == "" {
			continue
		}
		if _, exists := r.index[resource.Path]; exists {
			continue
		}
		r.index[resource.Path] = len(r.entries)
		r.entries = append(r.entries, Entry{
			ID:          resource.Path,
			DisplayName: resource.Name,
			Path:        resource.Path,
		})
	}
}

// SetMonitored updates the monitor flag for id. It reports whether id exists.
func (r *Registry) SetMonitored(id string, monitored bool) bool {
	position, ok := r.index[id]
	if !ok {
		return false
	}
	r.entries[position].Monitored = monitored
	return true
}

// ListMonitored returns monitored entries in registry order.
func (r *Registry) ListMonitored() []Entry {
	var monitored []Entry
	for _, entry := range r.entries {
		if entry.Monitored {
			monitored = append(monitored, entry)
		}
	}
	return monitored
}

func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Lookup(id string) (Entry, bool) {
	position, ok := r.index[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[position], true
}

// Find resolves key as an entry ID first and then as a display name.
func (r *Registry) Find(key string) (Entry, bool) {
	if entry, ok := r.Lookup(key); ok {
		return entry, true
	}
	for _, entry := range r.entries {
		if entry.DisplayName == key {
			return entry, true
		}
	}
	return Entry{}, false
}

func (r *Registry) Len() int {
	return len(r.entries)
}
