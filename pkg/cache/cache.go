// Package cache holds the short-lived Redis state of the order flow: the
// transaction status cache and the webhook dedup markers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ppob:trx_status:{ref_id} -> {"ref_id": "...", "user_id": "...", "status": "...", "sn": "...", "updated_at": "..."}
	keyStatus = "ppob:trx_status:%s"
	// ppob:dedup:{key}
	keyDedup = "ppob:dedup:%s"
)

var (
	TTLStatus = 5 * time.Minute
	TTLDedup  = 48 * time.Hour
)

type Status struct {
	RefID     string    `json:"ref_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	SN        string    `json:"sn,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StatusCache interface {
	SetStatus(ctx context.Context, s Status) error
	// GetStatus returns nil, nil on a cache miss.
	GetStatus(ctx context.Context, refID string) (*Status, error)
	DeleteStatus(ctx context.Context, refID string) error
}

type Deduper interface {
	// Seen marks key and reports whether it was already marked.
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Redis struct {
	rdb *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	return &Redis{rdb: redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) SetStatus(ctx context.Context, s Status) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, fmt.Sprintf(keyStatus, s.RefID), b, TTLStatus).Err()
}

func (r *Redis) GetStatus(ctx context.Context, refID string) (*Status, error) {
	b, err := r.rdb.Get(ctx, fmt.Sprintf(keyStatus, refID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Status
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode cached status: %w", err)
	}
	return &s, nil
}

func (r *Redis) DeleteStatus(ctx context.Context, refID string) error {
	return r.rdb.Del(ctx, fmt.Sprintf(keyStatus, refID)).Err()
}

func (r *Redis) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, fmt.Sprintf(keyDedup, key), 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (r *Redis) Forget(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, fmt.Sprintf(keyDedup, key)).Err()
}

// Noop is used when Redis is not configured: every lookup misses and no key
// is ever considered seen.
type Noop struct{}

func (Noop) SetStatus(context.Context, Status) error                   { return nil }
func (Noop) GetStatus(context.Context, string) (*Status, error)        { return nil, nil }
func (Noop) DeleteStatus(context.Context, string) error                { return nil }
func (Noop) Seen(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (Noop) Forget(context.Context, string) error                      { return nil }
