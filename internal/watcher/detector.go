package watcher

import "time"

// Detector compares fresh modification times against the last observed ones.
// Observations are never pruned, so paths dropped from the registry keep their
// baseline for the lifetime of the detector.
type Detector struct {
	stat         StatFunc
	lastObserved map[string]time.Time
}

func NewDetector(stat StatFunc) *Detector {
	if stat == nil {
		stat = ModTime
	}
	return &Detector{
		stat:         stat,
		lastObserved: make(map[string]time.Time),
	}
}

// Poll checks every entry once. A path is reported as changed only when a
// baseline exists and differs from the fresh time; the first sighting just
// records the baseline. Failed reads leave the stored time untouched and do
// not stop the remaining entries.
func (d *Detector) Poll(entries []Entry) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		modTime, err := d.stat(entry.Path)
		if err != nil {
			results = append(results, Result{Path: entry.Path, Err: err})
			continue
		}
		previous, seen := d.lastObserved[entry.Path]
		d.lastObserved[entry.Path] = modTime
		results = append(results, Result{
			Path:    entry.Path,
			Changed: seen && !previous.Equal(modTime),
			ModTime: modTime,
		})
	}
	return results
}

func (d *Detector) LastObserved(path string) (time.Time, bool) {
	modTime, ok := d.lastObserved[path]
	return modTime, ok
}

// Observed is the number of paths with a recorded baseline.
func (d *Detector) Observed() int {
	return len(d.lastObserved)
}
