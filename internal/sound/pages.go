package sound

import (
	"slices"
	"sync"

	"github.com/udisondev/soundscape/internal/paging"
)

// NamePages caches the sorted sound catalogue split into pages, one split
// per page size. Clear must be called when the catalogue changes.
type NamePages struct {
	mu     sync.Mutex
	names  []string
	bySize map[int][][]string
}

// NewNamePages creates a cache over names (copied, sorted, deduplicated).
func NewNamePages(names []string) *NamePages {
	np := &NamePages{}
	np.Reset(names)
	return np
}

// Reset replaces the catalogue and drops cached pages.
func (np *NamePages) Reset(names []string) {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	np.mu.Lock()
	np.names = sorted
	np.bySize = make(map[int][][]string)
	np.mu.Unlock()
}

// Clear drops cached pages; the catalogue stays.
func (np *NamePages) Clear() {
	np.mu.Lock()
	np.bySize = make(map[int][][]string)
	np.mu.Unlock()
}

// Page returns page number of the catalogue with perPage names per page.
func (np *NamePages) Page(perPage, number int) (paging.Page[string], error) {
	if perPage < 1 {
		perPage = 1
	}

	np.mu.Lock()
	pages, ok := np.bySize[perPage]
	if !ok {
		pages = paging.Split(np.names, perPage)
		np.bySize[perPage] = pages
	}
	np.mu.Unlock()

	return paging.FromPages(pages, number)
}

// cached reports how many page sizes are cached.
func (np *NamePages) cached() int {
	np.mu.Lock()
	defer np.mu.Unlock()
	return len(np.bySize)
}
