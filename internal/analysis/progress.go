package analysis

import (
	"sync"
	"time"
)

const progressTTL = 5 * time.Minute

// ProgressTracker is an in-memory map of upload progress percentages polled
// by the UI while a file uploads. Entries for finished uploads are evicted
// after five minutes. Per-process state only; a multi-instance deployment
// needs a shared store instead.
type ProgressTracker struct {
	mu      sync.Mutex
	entries map[string]int
}

// NewProgressTracker constructs an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{entries: make(map[string]int)}
}

// Set records progress for an upload, clamped to 0-100. Reaching 100
// schedules eviction.
func (t *ProgressTracker) Set(uploadID string, progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	t.mu.Lock()
	t.entries[uploadID] = progress
	t.mu.Unlock()

	if progress >= 100 {
		time.AfterFunc(progressTTL, func() {
			t.Delete(uploadID)
		})
	}
}

// Get returns the recorded progress, zero when unknown.
func (t *ProgressTracker) Get(uploadID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[uploadID]
}

// Delete removes an upload's entry.
func (t *ProgressTracker) Delete(uploadID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, uploadID)
}
