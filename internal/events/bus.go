// Package events fans out record changes so open admin views can refetch.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying change events.
const Channel = "haulzy:events"

// Event types.
const (
	ItemStatusChanged = "item.status_changed"
	ItemScanned       = "item.scanned"
	UserRoleChanged   = "user.role_changed"
	UserDeleted       = "user.deleted"
	UserCreated       = "user.created"
	PlanPurchased     = "user.plan_purchased"
	SnapshotTaken     = "dashboard.snapshot"
)

type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection,omitempty"`
	ID         string    `json:"id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher is implemented by Bus and Nop.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus publishes and subscribes over Redis.
type Bus struct {
	client *redis.Client
	log    *zap.Logger
}

func NewBus(client *redis.Client, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{client: client, log: log}
}

// Publish never fails the caller; delivery problems are logged.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		b.log.Warn("event encode failed", zap.String("type", e.Type), zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, Channel, data).Err(); err != nil {
		b.log.Warn("event publish failed", zap.String("type", e.Type), zap.Error(err))
	}
}

// Subscription is a live feed of events. Close it to stop delivery.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
	done   chan struct{}
}

// Subscribe starts listening on Channel. The returned subscription is ready
// once Subscribe returns.
func (b *Bus) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go sub.pump(b.log)
	return sub, nil
}

func (s *Subscription) pump(log *zap.Logger) {
	defer close(s.done)
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			log.Warn("dropping malformed event", zap.Error(err))
			continue
		}
		select {
		case s.events <- e:
		default:
			log.Warn("subscriber too slow, dropping event", zap.String("type", e.Type))
		}
	}
}

// Events returns the channel of received events. It is closed after Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() error {
	err := s.pubsub.Close()
	<-s.done
	return err
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
