package realtime

import (
	"collaborative-presentation-server/internal/worker"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Bus is the session event channel the engine publishes to and clients
// subscribe from. Publish is fire-and-forget; Subscribe delivers events
// for one presentation in the order Redis committed them until the
// context is cancelled.
type Bus interface {
	Publish(presentationID uint64, eventType string, payload any)
	Subscribe(ctx context.Context, presentationID uint64) (<-chan Event, error)
}

// RedisBus implements Bus over one Redis pub/sub topic per presentation.
type RedisBus struct {
	client *redis.Client
	pool   *worker.WorkerPool
}

func NewRedisBus(client *redis.Client, pool *worker.WorkerPool) *RedisBus {
	return &RedisBus{client: client, pool: pool}
}

func channelFor(presentationID uint64) string {
	return fmt.Sprintf("presentation:%d:events", presentationID)
}

// Publish serializes the event and hands it to the worker pool so the
// request path never blocks on Redis.
func (b *RedisBus) Publish(presentationID uint64, eventType string, payload any) {
	if b.client == nil {
		return
	}

	event := Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		PresentationID: presentationID,
		Payload:        payload,
		Timestamp:      time.Now().UTC(),
	}

	b.pool.Submit(func(ctx context.Context) error {
		raw, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return b.client.Publish(ctx, channelFor(presentationID), raw).Err()
	})
}

// Subscribe opens the presentation's topic and forwards decoded events.
// Events with an already-seen id are dropped, making replays from an
// at-least-once transport no-ops. The subscription closes when ctx does.
func (b *RedisBus) Subscribe(ctx context.Context, presentationID uint64) (<-chan Event, error) {
	if b.client == nil {
		return nil, fmt.Errorf("realtime channel unavailable")
	}

	sub := b.client.Subscribe(ctx, channelFor(presentationID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer sub.Close()

		seen := make(map[string]struct{})
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("[REALTIME] dropping malformed event: %v", err)
					continue
				}
				if _, dup := seen[event.ID]; dup {
					continue
				}
				seen[event.ID] = struct{}{}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
