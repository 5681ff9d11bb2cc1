package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix    = "studio:run:"
	digestKeyPrefix = "studio:digest:"
	runIndexKey     = "studio:runs"
)

// RedisStore keeps runs as JSON with a TTL and indexes them by creation time.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// OpenRedis parses url, connects and pings.
func OpenRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) Save(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, runKeyPrefix+r.ID, b, s.ttl)
	if r.Digest != "" {
		pipe.Set(ctx, digestKeyPrefix+r.Digest, r.ID, s.ttl)
	}
	pipe.ZAdd(ctx, runIndexKey, redis.Z{Score: float64(r.CreatedAt.UnixNano()), Member: r.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Run, error) {
	b, err := s.rdb.Get(ctx, runKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &r, nil
}

func (s *RedisStore) ByDigest(ctx context.Context, digest string) (*Run, error) {
	id, err := s.rdb.Get(ctx, digestKeyPrefix+digest).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup digest: %w", err)
	}
	return s.Get(ctx, id)
}

// List skips index entries whose run has expired and prunes them.
func (s *RedisStore) List(ctx context.Context) ([]RunInfo, error) {
	ids, err := s.rdb.ZRevRange(ctx, runIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]RunInfo, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			s.rdb.ZRem(ctx, runIndexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r.Info())
	}
	return out, nil
}
