// Package notify owns the admin inbox: a bounded, in-process store of
// advisory notifications plus the emitter that builds them.
package notify

import (
	"sync"
	"time"

	"github.com/civix/backend/internal/models"
)

const DefaultCapacity = 100

// Inbox is a capped, mutex-guarded notification store. When the cap is
// reached the oldest entry is evicted; notifications are advisory, so
// eviction is a policy, not a correctness concern.
type Inbox struct {
	mu    sync.Mutex
	items []models.Notification
	cap   int
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inbox{cap: capacity}
}

func (b *Inbox) Append(n models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	if len(b.items) > b.cap {
		b.items = b.items[len(b.items)-b.cap:]
	}
}

// ListFilter narrows List results. Nil pointer fields and empty strings
// mean "any".
type ListFilter struct {
	Read       *bool
	Type       string
	Priority   string
	Actionable *bool
}

// List returns matching notifications, newest first.
func (b *Inbox) List(f ListFilter) []models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Notification, 0, len(b.items))
	for i := len(b.items) - 1; i >= 0; i-- {
		n := b.items[i]
		if f.Read != nil && n.Read != *f.Read {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		if f.Actionable != nil && n.Actionable != *f.Actionable {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (b *Inbox) MarkRead(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Read = true
			b.items[i].UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

func (b *Inbox) MarkAllRead() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now().UTC()
	marked := 0
	for i := range b.items {
		if !b.items[i].Read {
			b.items[i].Read = true
			b.items[i].UpdatedAt = now
			marked++
		}
	}
	return marked
}

func (b *Inbox) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Sweep drops notifications older than maxAge and returns how many were
// removed. Intended for the scheduled retention job.
func (b *Inbox) Sweep(maxAge time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := time.Now().UTC().Add(-maxAge)
	kept := b.items[:0]
	removed := 0
	for _, n := range b.items {
		if n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	b.items = kept
	return removed
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
