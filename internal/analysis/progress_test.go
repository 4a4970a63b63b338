package analysis

import "testing"

func TestProgressTrackerClampsAndReads(t *testing.T) {
	tracker := NewProgressTracker()

	tracker.Set("u1", -5)
	if got := tracker.Get("u1"); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	tracker.Set("u1", 42)
	if got := tracker.Get("u1"); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	tracker.Set("u1", 150)
	if got := tracker.Get("u1"); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestProgressTrackerUnknownIsZero(t *testing.T) {
	tracker := NewProgressTracker()
	if got := tracker.Get("never-seen"); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestProgressTrackerDelete(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Set("u1", 80)
	tracker.Delete("u1")
	if got := tracker.Get("u1"); got != 0 {
		t.Fatalf("got %d after delete, want 0", got)
	}
}
