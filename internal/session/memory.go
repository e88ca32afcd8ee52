package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/metrics"
)

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryDirectory keeps sessions in a mutex guarded map. A positive TTL starts a
// janitor goroutine that prunes expired entries until Close is called.
type MemoryDirectory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	closed  bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryDirectory creates an in-memory directory. ttl <= 0 disables expiry.
func NewMemoryDirectory(ttl time.Duration) *MemoryDirectory {
	d := &MemoryDirectory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if ttl > 0 {
		interval := ttl / 2
		if interval > time.Minute {
			interval = time.Minute
		}
		if interval < time.Second {
			interval = time.Second
		}
		go d.janitor(interval)
	} else {
		close(d.done)
	}

	return d
}

// WithClock overrides the time source, mainly for tests.
func (d *MemoryDirectory) WithClock(now func() time.Time) *MemoryDirectory {
	if now == nil {
		return d
	}
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
	return d
}

// Bind stores or replaces the user bound to token.
func (d *MemoryDirectory) Bind(_ context.Context, token string, userID uint) error {
	key := strings.TrimSpace(token)
	if key == "" {
		return ErrEmptyToken
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDirectoryClosed
	}

	entry := memoryEntry{userID: userID}
	if d.ttl > 0 {
		entry.expiresAt = d.now().Add(d.ttl)
	}
	d.entries[key] = entry
	metrics.ActiveSessions.Set(float64(len(d.entries)))
	return nil
}

// Resolve returns the user bound to token, ignoring expired entries.
func (d *MemoryDirectory) Resolve(_ context.Context, token string) (uint, bool, error) {
	key := strings.TrimSpace(token)
	if key == "" {
		return 0, false, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return 0, false, ErrDirectoryClosed
	}

	entry, ok := d.entries[key]
	if !ok {
		return 0, false, nil
	}
	if !entry.expiresAt.IsZero() && !d.now().Before(entry.expiresAt) {
		return 0, false, nil
	}
	return entry.userID, true, nil
}

// Revoke drops token. Unknown tokens are ignored.
func (d *MemoryDirectory) Revoke(_ context.Context, token string) error {
	key := strings.TrimSpace(token)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDirectoryClosed
	}

	delete(d.entries, key)
	metrics.ActiveSessions.Set(float64(len(d.entries)))
	return nil
}

// Len reports the number of stored entries, expired ones included until pruned.
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Close stops the janitor and drops every session.
func (d *MemoryDirectory) Close() error {
	d.closeOnce.Do(func() {
		close(d.stop)
		<-d.done

		d.mu.Lock()
		d.closed = true
		d.entries = make(map[string]memoryEntry)
		d.mu.Unlock()
		metrics.ActiveSessions.Set(0)
	})
	return nil
}

func (d *MemoryDirectory) prune() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for key, entry := range d.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(d.entries, key)
		}
	}
	metrics.ActiveSessions.Set(float64(len(d.entries)))
}

func (d *MemoryDirectory) janitor(interval time.Duration) {
	defer close(d.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.prune()
		}
	}
}
