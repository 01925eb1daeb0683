// Package redis implements repository.KeyValueStore on a Redis server, for
// deployments where several dashboard processes share the same slots.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

// Every persisted slot name starts with this prefix; Keys only scans it.
const keyPattern = "bonvan*"

var _ repository.KeyValueStore = (*Store)(nil)

// Options are the connection settings, copied from config.Redis.
type Options struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

type Store struct {
	db *redis.Client
}

// New connects and pings the server. A server that does not answer the ping
// fails New rather than the first request.
func New(ctx context.Context, opts Options) (*Store, error) {
	const op = "redis.New"

	db := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   opts.MaxRetries,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "redis.Get"
	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: %w", op, key, err)
	}
	return val, true, nil
}

// Set stores value without expiry. Slots live until deleted.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const op = "redis.Set"
	if err := s.db.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s %s: %w", op, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "redis.Delete"
	if err := s.db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s %s: %w", op, key, err)
	}
	return nil
}

// Keys walks the keyspace with SCAN so a large database is never blocked
// the way KEYS would block it.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	const op = "redis.Keys"
	var keys []string
	iter := s.db.Scan(ctx, 0, keyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
