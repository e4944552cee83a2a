package utils

import "sync"

// Tracker remembers strings it has already seen (unit keys, probed URLs)
type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewTracker creates a new tracker
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Add returns true if s is new, false if it was already tracked
func (t *Tracker) Add(s string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.seen[s]; exists {
		return false
	}
	t.seen[s] = struct{}{}
	return true
}

// Count returns the number of tracked strings
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
