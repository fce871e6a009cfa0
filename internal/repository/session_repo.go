package repository

import (
	"context"
	"time"
)

const (
	sessionKeyPrefix          = "algotutor:session:"
	principalSessionKeyPrefix = "algotutor:principal-sessions:"
)

// SessionRepository stores the serialised principal of each browsing
// session and indexes sessions per principal.
type SessionRepository interface {
	Save(ctx context.Context, sessionID, principalID string, record []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Refresh(ctx context.Context, sessionID string, record []byte) (bool, error)
	Delete(ctx context.Context, sessionID string) error
	Forget(ctx context.Context, principalID string, sessionIDs ...string) error
	SessionsOf(ctx context.Context, principalID string) ([]string, error)
}

type sessionRepository struct {
	kv  KeyValueStore
	ttl time.Duration
}

// NewSessionRepository constructs a session repository whose records expire
// after ttl.
func NewSessionRepository(kv KeyValueStore, ttl time.Duration) SessionRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &sessionRepository{kv: kv, ttl: ttl}
}

func (r *sessionRepository) Save(ctx context.Context, sessionID, principalID string, record []byte) error {
	if err := r.kv.Set(ctx, sessionKeyPrefix+sessionID, string(record), r.ttl); err != nil {
		return err
	}
	return r.kv.AddMember(ctx, principalSessionKeyPrefix+principalID, sessionID, r.ttl)
}

func (r *sessionRepository) Load(ctx context.Context, sessionID string) ([]byte, error) {
	value, err := r.kv.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Refresh rewrites a live session record without extending its lifetime.
func (r *sessionRepository) Refresh(ctx context.Context, sessionID string, record []byte) (bool, error) {
	return r.kv.Replace(ctx, sessionKeyPrefix+sessionID, string(record))
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx, sessionKeyPrefix+sessionID)
}

func (r *sessionRepository) Forget(ctx context.Context, principalID string, sessionIDs ...string) error {
	return r.kv.RemoveMembers(ctx, principalSessionKeyPrefix+principalID, sessionIDs...)
}

func (r *sessionRepository) SessionsOf(ctx context.Context, principalID string) ([]string, error) {
	return r.kv.Members(ctx, principalSessionKeyPrefix+principalID)
}
