package presence

import (
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/realtime"
	"collaborative-presentation-server/internal/worker"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// HeartbeatPatch carries the fields a heartbeat may update. Nil fields
// leave the previous value in place.
type HeartbeatPatch struct {
	Cursor         *domain.CursorPosition `json:"cursor,omitempty"`
	CurrentSlideID *string                `json:"current_slide_id,omitempty"`
}

// Tracker maintains ephemeral per-user liveness for open presentations.
// Records live in Redis under a TTL equal to the liveness window, so a
// user whose heartbeats stop simply ages out; no background sweep runs.
// Writes go through the worker pool and coalesce: a heartbeat superseded
// before its write runs is absorbed into the newer one.
type Tracker struct {
	client *redis.Client
	pool   *worker.WorkerPool
	bus    realtime.Bus
	window time.Duration

	mu    sync.Mutex
	local map[string]*localEntry
}

type localEntry struct {
	record   domain.UserPresence
	inflight bool
	dirty    bool
}

func NewTracker(client *redis.Client, pool *worker.WorkerPool, bus realtime.Bus, window time.Duration) *Tracker {
	return &Tracker{
		client: client,
		pool:   pool,
		bus:    bus,
		window: window,
		local:  make(map[string]*localEntry),
	}
}

func presenceKey(presentationID uint64, userID uint64) string {
	return fmt.Sprintf("presence:%d:%d", presentationID, userID)
}

// Heartbeat merges the patch into the user's presence record, marks it
// online and refreshes lastActivity. Safe to call at pointer-movement
// frequency: the caller never waits on Redis.
func (t *Tracker) Heartbeat(presentationID uint64, userID uint64, patch HeartbeatPatch) {
	key := presenceKey(presentationID, userID)
	now := time.Now().UTC()

	t.mu.Lock()
	entry, ok := t.local[key]
	if !ok {
		entry = &localEntry{
			record: domain.UserPresence{
				UserID:         userID,
				PresentationID: presentationID,
			},
		}
		t.local[key] = entry
	}

	entry.record.IsOnline = true
	if patch.Cursor != nil {
		entry.record.Cursor = patch.Cursor
	}
	if patch.CurrentSlideID != nil {
		entry.record.CurrentSlideID = patch.CurrentSlideID
	}
	// lastActivity only moves forward
	if now.After(entry.record.LastActivity) {
		entry.record.LastActivity = now
	}

	entry.dirty = true
	needFlush := !entry.inflight
	entry.inflight = true
	t.mu.Unlock()

	if needFlush {
		t.pool.Submit(func(ctx context.Context) error {
			return t.flush(ctx, key)
		})
	}
}

// flush writes the entry's latest record and keeps it marked in flight
// until the write commits. A heartbeat landing mid-write marks the entry
// dirty and the same worker writes again, so two flushes for one key
// never run concurrently and an older write cannot land over a newer one.
func (t *Tracker) flush(ctx context.Context, key string) error {
	for {
		t.mu.Lock()
		entry, ok := t.local[key]
		if !ok {
			t.mu.Unlock()
			return nil
		}
		record := entry.record
		entry.dirty = false
		t.mu.Unlock()

		if t.client != nil {
			raw, err := json.Marshal(record)
			if err != nil {
				t.clearInflight(key)
				return err
			}
			if err := t.client.Set(ctx, key, raw, t.window).Err(); err != nil {
				t.clearInflight(key)
				return err
			}
		}

		t.bus.Publish(record.PresentationID, realtime.EventPresenceUpdated, record)

		t.mu.Lock()
		entry, ok = t.local[key]
		if !ok || !entry.dirty {
			if ok {
				entry.inflight = false
			}
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()
	}
}

func (t *Tracker) clearInflight(key string) {
	t.mu.Lock()
	if entry, ok := t.local[key]; ok {
		entry.inflight = false
	}
	t.mu.Unlock()
}

// MarkOffline drops the user's presence record and clears the cursor.
// Called once when a session ends; readers already treat a silent record
// as offline after the window, so a missed call self-corrects.
func (t *Tracker) MarkOffline(ctx context.Context, presentationID uint64, userID uint64) error {
	key := presenceKey(presentationID, userID)

	t.mu.Lock()
	delete(t.local, key)
	t.mu.Unlock()

	if t.client != nil {
		if err := t.client.Del(ctx, key).Err(); err != nil {
			return err
		}
	}

	t.bus.Publish(presentationID, realtime.EventPresenceOffline, domain.UserPresence{
		UserID:         userID,
		PresentationID: presentationID,
		IsOnline:       false,
		LastActivity:   time.Now().UTC(),
	})
	return nil
}

// ListOnline returns the presentation's live presence records ordered by
// lastActivity descending. Records older than the liveness window are
// excluded even when Redis has not expired them yet.
func (t *Tracker) ListOnline(ctx context.Context, presentationID uint64) ([]domain.UserPresence, error) {
	if t.client == nil {
		return []domain.UserPresence{}, nil
	}

	pattern := fmt.Sprintf("presence:%d:*", presentationID)
	var records []domain.UserPresence
	cutoff := time.Now().UTC().Add(-t.window)

	iter := t.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		raw, err := t.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, err
		}

		var record domain.UserPresence
		if err := json.Unmarshal(raw, &record); err != nil {
			log.Printf("[PRESENCE] dropping malformed record %s: %v", iter.Val(), err)
			continue
		}
		if !record.IsOnline || record.LastActivity.Before(cutoff) {
			continue
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastActivity.After(records[j].LastActivity)
	})

	if records == nil {
		records = []domain.UserPresence{}
	}
	return records, nil
}
