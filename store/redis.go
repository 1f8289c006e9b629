package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBackend stores each collection as a JSON string value.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, key, value, 0).Err()
}

func (b *RedisBackend) Del(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// RedisNotifier publishes change signals on redis pub/sub channels so
// independently running views can refresh derived counts.
type RedisNotifier struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisNotifier(client *redis.Client, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

func (n *RedisNotifier) Notify(ctx context.Context, event string, payload any) {
	msg := []byte("{}")
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			n.log.Warn("notify payload marshal failed", zap.String("event", event), zap.Error(err))
		} else {
			msg = data
		}
	}
	if err := n.client.Publish(ctx, event, msg).Err(); err != nil {
		n.log.Warn("notify publish failed", zap.String("event", event), zap.Error(err))
	}
}
