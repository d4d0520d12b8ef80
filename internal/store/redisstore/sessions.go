package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"llamachat/internal/models"
)

const sessionKeyPrefix = "session:"

// Store caches session rows in Redis. Entries expire together with the
// session itself, so a cache hit can never outlive the row's expires_at.
type Store struct {
	client *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

func (s *Store) SaveSession(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, raw, ttl).Err()
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}
