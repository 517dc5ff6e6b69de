package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"quiz-runner/internal/cache"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/logger"

	"go.uber.org/zap"
)

const (
	sessionCacheService = "session"
	sessionCacheType    = "player"
)

// MemorySessionStore keeps player sessions in process memory. Sessions older than
// ttl (measured from their last Put) are treated as gone; a zero ttl disables expiry.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	session   *domain.PlayerSession
	touchedAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*domain.PlayerSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	if s.ttl > 0 && s.now().Sub(entry.touchedAt) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, domain.NewSessionNotFoundError(id)
	}
	return entry.session, nil
}

func (s *MemorySessionStore) Put(ctx context.Context, session *domain.PlayerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = memoryEntry{session: session, touchedAt: s.now()}
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// CacheSessionStore keeps player sessions as JSON documents in a domain.Cache,
// each with a time to live of ttl that is renewed on every Get and Put.
type CacheSessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewCacheSessionStore(c domain.Cache, ttl time.Duration) *CacheSessionStore {
	return &CacheSessionStore{cache: c, ttl: ttl}
}

func sessionKey(id string) string {
	return cache.GenerateCacheKey(sessionCacheService, sessionCacheType, id)
}

func (s *CacheSessionStore) Get(ctx context.Context, id string) (*domain.PlayerSession, error) {
	raw, err := s.cache.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewSessionNotFoundError(id)
		}
		return nil, domain.NewInternalError("failed to read player session", err)
	}

	var session domain.PlayerSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("player session %s is corrupt", id), err)
	}

	// reading a session counts as activity
	if s.ttl > 0 {
		if err := s.cache.Expire(ctx, sessionKey(id), s.ttl); err != nil {
			logger.Get().Warn("Failed to refresh player session ttl", zap.String("session_id", id), zap.Error(err))
		}
	}
	return &session, nil
}

func (s *CacheSessionStore) Put(ctx context.Context, session *domain.PlayerSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return domain.NewInternalError("failed to encode player session", err)
	}
	if err := s.cache.Set(ctx, sessionKey(session.ID), string(raw), s.ttl); err != nil {
		return domain.NewInternalError("failed to store player session", err)
	}
	return nil
}

func (s *CacheSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, sessionKey(id)); err != nil {
		return domain.NewInternalError("failed to delete player session", err)
	}
	return nil
}

var (
	_ domain.SessionStore = (*MemorySessionStore)(nil)
	_ domain.SessionStore = (*CacheSessionStore)(nil)
)
