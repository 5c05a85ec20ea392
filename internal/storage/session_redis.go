package storage

import (
	"context"
	stderrors "errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/models"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions as JSON documents under session:<id>.
// Every write refreshes the TTL.
type RedisSessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisSessionStore(client redis.UniversalClient, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionStore) Create(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewInternalError(err)
	}

	created, err := r.client.SetNX(ctx, sessionKey(s.ID), data, r.ttl).Result()
	if err != nil {
		return errors.NewStoreFailedError("create_session", err)
	}
	if !created {
		return errors.NewSessionConflictError(s.ID, 0, -1)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewStoreFailedError("get_session", err)
	}
	return decodeSession(raw)
}

// Update writes s only if the stored version is s.Version-1. The read and
// the write run inside WATCH/MULTI, so a concurrent writer aborts this one.
func (r *RedisSessionStore) Update(ctx context.Context, s *models.Session) error {
	key := sessionKey(s.ID)
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewInternalError(err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if stderrors.Is(err, redis.Nil) {
			return errors.NewSessionNotFoundError(s.ID)
		}
		if err != nil {
			return errors.NewStoreFailedError("update_session", err)
		}

		stored, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if stored.Version != s.Version-1 {
			return errors.NewSessionConflictError(s.ID, s.Version-1, stored.Version)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, redis.TxFailedErr):
		return errors.NewSessionConflictError(s.ID, s.Version-1, -1)
	}
	if _, ok := errors.AsStandardError(err); ok {
		return err
	}
	return errors.NewStoreFailedError("update_session", err)
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return errors.NewStoreFailedError("delete_session", err)
	}
	return nil
}

func decodeSession(raw []byte) (*models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.NewStoreFailedError("decode_session", err)
	}
	for i := range s.Responses {
		s.Responses[i].Value = models.NormalizeValue(s.Responses[i].Value)
	}
	return &s, nil
}
