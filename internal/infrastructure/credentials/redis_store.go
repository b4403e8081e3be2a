package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
)

const redisKeyPrefix = "portal:credentials:"

// RedisStore keeps credentials in Redis so multiple terminal processes can
// share one session. terminalID scopes the key per workstation.
type RedisStore struct {
	client     *redis.Client
	terminalID string
}

func NewRedisStore(client *redis.Client, terminalID string) *RedisStore {
	return &RedisStore{client: client, terminalID: terminalID}
}

func (s *RedisStore) key() string {
	return redisKeyPrefix + s.terminalID
}

func (s *RedisStore) Load(ctx context.Context) (*ports.Credentials, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoCredentials
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	var creds ports.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.AccessToken == "" {
		return nil, domain.ErrNoCredentials
	}
	return &creds, nil
}

func (s *RedisStore) Save(ctx context.Context, creds ports.Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), raw, 0).Err(); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Clear deletes the key. Deleting a missing key is not an error, which keeps
// the operation idempotent.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
