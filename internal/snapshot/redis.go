package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geocoder89/agendahub/internal/domain/event"
)

const snapshotKey = "agendahub:events:snapshot:v1"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis keeps the snapshot in a single JSON value. No TTL: a stale snapshot
// is still a better first paint than an empty calendar, and the first
// successful re-fetch replaces it anyway.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Redis{rdb: rdb}
}

// Ping checks redis connectivity.
func (s *Redis) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Redis) Close() error {
	return s.rdb.Close()
}

func (s *Redis) Save(ctx context.Context, records []event.Event) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.rdb.Set(ctx, snapshotKey, b, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context) ([]event.Event, error) {
	b, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var records []event.Event
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}
