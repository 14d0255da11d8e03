package prefs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vbonduro/roomplants/internal/domain"
)

const keyPrefix = "roomplants:prefs:"

const (
	fieldCity        = "city"
	fieldEnvironment = "environment"
)

// RedisStore keeps each chat's preferences in a hash that expires ttl after
// the last write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func key(chatID string) string {
	return keyPrefix + chatID
}

func (s *RedisStore) Get(ctx context.Context, chatID string) (Preferences, error) {
	if err := checkChatID(chatID); err != nil {
		return Preferences{}, err
	}
	values, err := s.client.HGetAll(ctx, key(chatID)).Result()
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	p := Preferences{City: values[fieldCity]}
	if env, ok := values[fieldEnvironment]; ok {
		p.Environment = domain.ParseEnvironment(env)
	}
	return p, nil
}

func (s *RedisStore) SetCity(ctx context.Context, chatID, city string) error {
	return s.set(ctx, chatID, fieldCity, city)
}

func (s *RedisStore) SetEnvironment(ctx context.Context, chatID string, env domain.Environment) error {
	return s.set(ctx, chatID, fieldEnvironment, string(env))
}

func (s *RedisStore) set(ctx context.Context, chatID, field, value string) error {
	if err := checkChatID(chatID); err != nil {
		return err
	}
	k := key(chatID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, field, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %s preference: %w", field, err)
	}
	return nil
}
