package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SettlementNotifier implements settlement.Notifier over redis pub/sub.
// The webhook ingest publishes the session id on ChannelSettlements when
// an order record lands.
type SettlementNotifier struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewSettlementNotifier creates a redis-backed settlement notifier.
func NewSettlementNotifier(client *redis.Client, logger zerolog.Logger) *SettlementNotifier {
	return &SettlementNotifier{
		client: client,
		logger: logger.With().Str("component", "settlement-notifier").Logger(),
	}
}

// Subscribe returns a channel of session ids. The release func must be
// called to free the underlying subscription.
func (n *SettlementNotifier) Subscribe(ctx context.Context) (<-chan string, func(), error) {
	pubsub := n.client.Subscribe(ctx, ChannelSettlements)

	// Surface subscription failures before handing out the channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelSettlements, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	release := func() {
		if err := pubsub.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("failed to close settlement subscription")
		}
	}

	return out, release, nil
}

// Publish announces a settled session id to all watchers.
func (n *SettlementNotifier) Publish(ctx context.Context, sessionID string) error {
	return n.client.Publish(ctx, ChannelSettlements, sessionID).Err()
}

// SettlementDeduper implements settlement.Deduper with SETNX, so a
// restarted process never repeats confirmation side effects.
type SettlementDeduper struct {
	client *redis.Client
}

// NewSettlementDeduper creates a redis-backed deduper.
func NewSettlementDeduper(client *redis.Client) *SettlementDeduper {
	return &SettlementDeduper{client: client}
}

// MarkConfirmed returns true only for the first caller per session id.
func (d *SettlementDeduper) MarkConfirmed(ctx context.Context, sessionID string) (bool, error) {
	key := fmt.Sprintf(KeyDedupSettlement, sessionID)
	first, err := d.client.SetNX(ctx, key, "1", TTLDedup).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark settlement confirmed: %w", err)
	}
	return first, nil
}
