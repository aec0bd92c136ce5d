// Package redis relays task events between server instances over Redis
// pub/sub, so websocket clients connected to any instance see every mutation.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/redact"
	goredis "github.com/redis/go-redis/v9"
)

// message is the form published on the channel. Origin lets an instance skip
// its own events, which it has already delivered locally.
type message struct {
	Origin   string          `json:"origin"`
	Envelope events.Envelope `json:"envelope"`
}

// Relay publishes local envelopes to a Redis channel and re-delivers
// envelopes published by other instances to a local subscriber.
type Relay struct {
	client     *goredis.Client
	channel    string
	instanceID string
	local      events.Subscriber
	logger     *slog.Logger
}

var _ events.Subscriber = (*Relay)(nil)

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %s", redact.String(err.Error()))
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRelay creates a Relay on channel that hands remote envelopes to local.
func NewRelay(client *goredis.Client, channel string, local events.Subscriber, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Relay{
		client:     client,
		channel:    channel,
		instanceID: id,
		local:      local,
		logger: logger.With(
			slog.String("component", "redis_relay"),
			slog.String("instance_id", id)),
	}
}

// InstanceID identifies this process on the channel.
func (r *Relay) InstanceID() string {
	return r.instanceID
}

// Deliver publishes env to the channel.
func (r *Relay) Deliver(ctx context.Context, env events.Envelope) error {
	payload, err := json.Marshal(message{Origin: r.instanceID, Envelope: env})
	if err != nil {
		return fmt.Errorf("failed to marshal relay message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", env.Event, err)
	}
	return nil
}

// Run subscribes to the channel and forwards envelopes from other instances
// until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			r.logger.Warn("failed to close redis subscription", slog.String("error", err.Error()))
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("redis relay subscribed", slog.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("redis relay stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

func (r *Relay) handle(ctx context.Context, payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		r.logger.Warn("discarding malformed relay message", slog.String("error", err.Error()))
		return
	}
	if m.Origin == r.instanceID {
		return
	}
	if err := r.local.Deliver(ctx, m.Envelope); err != nil {
		r.logger.Error("failed to deliver relayed event",
			slog.String("event", m.Envelope.Event),
			slog.String("origin", m.Origin),
			slog.String("error", err.Error()))
	}
}
