package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisPublisher broadcasts reservation events over Redis Pub/Sub. Messages
// are fire-and-forget: subscribers that are not connected miss them.
type RedisPublisher struct {
	client redis.Cmdable
}

// NewRedisPublisher creates a publisher on an open Redis connection
func NewRedisPublisher(client redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends body to channel
func (p *RedisPublisher) Publish(ctx context.Context, channel string, body []byte) error {
	receivers, err := p.client.Publish(ctx, channel, body).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Int64("receivers", receivers).Msg("published event")
	return nil
}
