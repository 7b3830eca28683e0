// Package redis keeps the presence registry in a Redis sorted set scored by
// the last ping time, so every server replica sees the same online set.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultPresenceKey = "presence:online"

type PresenceRegistry struct {
	client *redis.Client
	key    string
}

func Open(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewPresenceRegistry(client *redis.Client, key string) *PresenceRegistry {
	if key == "" {
		key = DefaultPresenceKey
	}
	return &PresenceRegistry{client: client, key: key}
}

// Touch records a ping. GT keeps an out-of-order older ping from rewinding
// the member's score.
func (r *PresenceRegistry) Touch(ctx context.Context, userID string, at time.Time) error {
	err := r.client.ZAddArgs(ctx, r.key, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: float64(at.UnixMilli()), Member: userID}},
	}).Err()
	if err != nil {
		return fmt.Errorf("touch presence: %w", err)
	}
	return nil
}

// Online prunes pings older than since and returns the remaining members.
func (r *PresenceRegistry) Online(ctx context.Context, since time.Time) ([]string, error) {
	cutoff := strconv.FormatInt(since.UnixMilli(), 10)

	var members *redis.StringSliceCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, r.key, "-inf", "("+cutoff)
		members = pipe.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{Min: cutoff, Max: "+inf"})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	return members.Val(), nil
}

func (r *PresenceRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
