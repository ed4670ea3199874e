package clarifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "vetter:clarification:"

// Redis is a Ledger shared across instances. Expiry is enforced by key TTL and
// Take uses GETDEL so concurrent responders cannot both consume a session.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Open(ctx context.Context, fingerprint string, questions []string, catalogVersion string) (Session, error) {
	s := newSession(fingerprint, questions, catalogVersion, time.Now(), r.ttl)

	data, err := json.Marshal(s)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, key(s.ID), data, r.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (r *Redis) Find(ctx context.Context, id uuid.UUID) (Session, error) {
	return decode(id, r.client.Get(ctx, key(id)))
}

func (r *Redis) Take(ctx context.Context, id uuid.UUID) (Session, error) {
	return decode(id, r.client.GetDel(ctx, key(id)))
}

func decode(id uuid.UUID, cmd *redis.StringCmd) (Session, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}
