package access

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerificationStore holds the set of contest IDs a session has verified.
// The set grows monotonically within a session's lifetime and disappears with
// the session; it is never written to durable storage.
type VerificationStore interface {
	IsVerified(ctx context.Context, sessionID string, contestID int64) (bool, error)
	MarkVerified(ctx context.Context, sessionID string, contestID int64) error
	Clear(ctx context.Context, sessionID string) error
}

type redisVerificationStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisVerificationStore keys one Redis set per session. ttl should match
// the token lifetime so the set dies with the session it belongs to.
func NewRedisVerificationStore(rdb *redis.Client, ttl time.Duration) VerificationStore {
	return &redisVerificationStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID + ":verified"
}

func (s *redisVerificationStore) IsVerified(ctx context.Context, sessionID string, contestID int64) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, sessionKey(sessionID), strconv.FormatInt(contestID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("redisVerificationStore.IsVerified: %w", err)
	}
	return ok, nil
}

func (s *redisVerificationStore) MarkVerified(ctx context.Context, sessionID string, contestID int64) error {
	key := sessionKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key, strconv.FormatInt(contestID, 10))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisVerificationStore.MarkVerified: %w", err)
	}
	return nil
}

func (s *redisVerificationStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redisVerificationStore.Clear: %w", err)
	}
	return nil
}
