package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// loadTracker hands out increasing sequence numbers per challenge so results
// of superseded loads can be recognized and dropped.
type loadTracker struct {
	mu      sync.Mutex
	last    int64
	current map[string]int64
}

func newLoadTracker() *loadTracker {
	return &loadTracker{current: make(map[string]int64)}
}

// begin registers a new load for key. Sequences are wall-clock based so they
// keep increasing across restarts.
func (t *loadTracker) begin(key string) (int64, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seq := time.Now().UnixNano()
	if seq <= t.last {
		seq = t.last + 1
	}
	t.last = seq
	t.current[key] = seq
	return seq, uuid.NewString()
}

func (t *loadTracker) isCurrent(key string, seq int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[key] == seq
}

func (t *loadTracker) finish(key string, seq int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current[key] == seq {
		delete(t.current, key)
	}
}
