package newsfeed

import (
	"sync"

	"github.com/pulseworks/marketpulse/pkg/utils"
)

// DedupStore tracks normalized article titles seen within a run so that
// enrichment cost is paid at most once per unique title. Safe for concurrent
// use by enrichment workers.
type DedupStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupStore creates an empty dedup store.
func NewDedupStore() *DedupStore {
	return &DedupStore{seen: make(map[string]struct{})}
}

// Seen marks the title as seen and reports whether it had been seen before.
// Marking and checking are one atomic step so two workers processing the
// same title cannot both observe it as new.
func (d *DedupStore) Seen(title string) bool {
	key := utils.NormalizeTitle(title)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Len returns the number of distinct titles recorded.
func (d *DedupStore) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Reset clears the store for a new run.
func (d *DedupStore) Reset() {
	d.mu.Lock()
	d.seen = make(map[string]struct{})
	d.mu.Unlock()
}
