package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore shares a fixed window across replicas. Keys expire with
// the window, so abandoned clients cost nothing.
type RedisWindowStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisWindowStore(rdb *redis.Client, prefix string) *RedisWindowStore {
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RedisWindowStore{rdb: rdb, prefix: prefix}
}

func (s *RedisWindowStore) Incr(key string, window time.Duration) (int, time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	k := s.prefix + ":" + key

	count, err := s.rdb.Incr(ctx, k).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		// first hit opens the window
		err = s.rdb.Expire(ctx, k, window).Err()

		if err != nil {
			return 0, 0, err
		}
		return int(count), window, nil
	}

	ttl, err := s.rdb.TTL(ctx, k).Result()

	if err != nil || ttl < 0 {
		ttl = window
	}

	return int(count), ttl, nil
}
