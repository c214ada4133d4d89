package queue

import (
	"sync"

	"github.com/go-scripts/imagegrab/internal/types"
)

// Queue is an ordered set of locators. The first occurrence of a locator
// fixes its position; later duplicates are dropped.
type Queue struct {
	items []types.Locator
	seen  map[types.Locator]bool
	mu    sync.Mutex
}

// New creates a new Queue instance
func New() *Queue {
	return &Queue{
		items: make([]types.Locator, 0),
		seen:  make(map[types.Locator]bool),
	}
}

// Add appends loc unless it was added before. It reports whether loc was new.
func (q *Queue) Add(loc types.Locator) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.seen[loc] {
		return false
	}
	q.seen[loc] = true
	q.items = append(q.items, loc)
	return true
}

// Items returns a copy of the locators in insertion order
func (q *Queue) Items() []types.Locator {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]types.Locator, len(q.items))
	copy(out, q.items)
	return out
}
