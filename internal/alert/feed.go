package alert

import (
	"time"

	"github.com/google/uuid"

	"budgetbuddy/internal/cache"
)

// DefaultTTL is how long a notice stays in the feed.
const DefaultTTL = 5 * time.Second

// Notice is one entry in the alert feed.
type Notice struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed holds recent notices, newest first. Entries expire after the TTL.
type Feed struct {
	entries *cache.LRUCache[Notice]
	now     func() time.Time
}

func NewFeed(ttl time.Duration, capacity int) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{entries: cache.NewLRUCache[Notice](capacity, ttl), now: time.Now}
}

// WithClock replaces the time source. Tests only.
func (f *Feed) WithClock(now func() time.Time) *Feed {
	f.now = now
	f.entries.WithClock(now)
	return f
}

// Push adds messages in order; the last one ends up on top.
func (f *Feed) Push(messages ...string) []Notice {
	out := make([]Notice, 0, len(messages))
	for _, m := range messages {
		n := Notice{ID: uuid.NewString(), Message: m, CreatedAt: f.now()}
		f.entries.Set(n.ID, n)
		out = append(out, n)
	}
	return out
}

// Snapshot returns live notices, newest first.
func (f *Feed) Snapshot() []Notice {
	return f.entries.Values()
}

// Cleaner exposes the backing cache for a cache.Manager.
func (f *Feed) Cleaner() cache.Cleaner {
	return f.entries
}
