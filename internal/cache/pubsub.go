package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/models"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type PubSubManager struct {
	client redis.UniversalClient
	logger *logrus.Logger
}

func NewPubSubManager(client redis.UniversalClient, logger *logrus.Logger) *PubSubManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PubSubManager{client: client, logger: logger}
}

// ExecutionChannels returns the channels an execution event is published to.
func ExecutionChannels(ev *models.ExecutionEvent) []string {
	return []string{
		constants.PubSubChannelExecutions,
		constants.PubSubPairPrefix + ev.Pair,
	}
}

// PublishExecution publishes ev to the global and pair-specific channels in one pipeline.
func (p *PubSubManager) PublishExecution(ctx context.Context, ev *models.ExecutionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	for _, channel := range ExecutionChannels(ev) {
		pipe.Publish(ctx, channel, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish execution %s: %w", ev.Signature, err)
	}
	return nil
}

// Subscribe delivers events from channels matching pattern (e.g. "swaps:pair:*")
// until ctx is cancelled.
func (p *PubSubManager) Subscribe(ctx context.Context, pattern string, handler storage.ExecutionHandler) error {
	pubsub := p.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
	}

	p.logger.WithField("pattern", pattern).Info("Subscribed to execution events")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev models.ExecutionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.logger.WithError(err).WithField("channel", msg.Channel).Warn("Dropping malformed execution event")
				continue
			}
			handler(&ev)
		}
	}
}
