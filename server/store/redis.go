package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// tieSlots orders up to this many runs sharing one millisecond. Scores stay
// exact in a float64 until the 23rd century.
const tieSlots = 1000

// RedisStore keeps each run as a JSON string with a sorted-set index
// scored by timestamp, then by an add counter.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix for runs.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL expires runs after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore connects using a redis:// URL.
func NewRedisStore(ctx context.Context, url string, opts ...RedisOption) (*RedisStore, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := backend.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreFromClient(client, opts...), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "ragdemo:run:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) seqKey() string {
	return s.prefix + "seq"
}

func (s *RedisStore) Add(ctx context.Context, r RunRecord) error {
	r.Passages = nonNil(r.Passages)
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("next run seq: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(r.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(r.Timestamp)*tieSlots + float64(seq%tieSlots),
		Member: r.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (RunRecord, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}

	var r RunRecord
	if err := json.Unmarshal(val, &r); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal run: %w", err)
	}
	return r, nil
}

// List walks the index newest first and drops ids whose value has expired.
func (s *RedisStore) List(ctx context.Context, limit int) ([]RunRecord, error) {
	limit = normalizeLimit(limit)
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := []RunRecord{}
	var stale []any
	for _, id := range ids {
		if len(runs) == limit {
			break
		}
		r, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune index: %w", err)
		}
	}
	return runs, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

func (s *RedisStore) Summary(ctx context.Context) (Summary, error) {
	runs, err := s.List(ctx, math.MaxInt)
	if err != nil {
		return Summary{}, err
	}
	m := make(map[string]RunRecord, len(runs))
	for _, r := range runs {
		m[r.ID] = r
	}
	return summarize(m), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
