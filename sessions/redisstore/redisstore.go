// Package redisstore keeps session keys in a Redis hash, one hash per profile,
// so a headless service can share a portal identity across processes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-college-portal/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Store = (*Store)(nil)

const keyPrefix = "college-portal:session:"

// Config holds Redis connection configuration
type Config struct {
	Addr        string
	Password    string
	DB          int
	Profile     string
	DialTimeout time.Duration
}

type Store struct {
	client redis.UniversalClient
	key    string
}

// New wraps an existing client. profile selects the hash holding the session.
func New(client redis.UniversalClient, profile string) (*Store, error) {
	if client == nil {
		return nil, errors.New("[redisstore.New] client is required")
	}
	if profile == "" {
		profile = "default"
	}
	return &Store{client: client, key: keyPrefix + profile}, nil
}

// Open connects using cfg and verifies the connection with PING
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[redisstore.Open] ping %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.Profile)
}

// Key returns the Redis hash name backing this store
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[redisstore] hget %s: %w", field, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, field, value string) error {
	if err := s.client.HSet(ctx, s.key, field, value).Err(); err != nil {
		return fmt.Errorf("[redisstore] hset %s: %w", field, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, field string) error {
	if err := s.client.HDel(ctx, s.key, field).Err(); err != nil {
		return fmt.Errorf("[redisstore] hdel %s: %w", field, err)
	}
	return nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
