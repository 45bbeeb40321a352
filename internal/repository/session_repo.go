package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/juhum/We-Go-Jim/internal/models"
)

const sessionKeyPrefix = "sess"

// ErrSessionNotFound covers both a token that never existed and one whose
// TTL expired; the two are indistinguishable by design.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps server-side sessions in Redis, keyed by an opaque
// token and expired by TTL.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) key(token string) string {
	return sessionKeyPrefix + ":" + token
}

func (r *SessionRepository) Create(ctx context.Context, userID, role string) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(session.Token), payload, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

func (r *SessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.Token = token
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
