package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

type expiring struct {
	value     string
	expiresAt time.Time
}

func (e expiring) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// SessionStore 进程内会话存储，redis.enabled=false时使用
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uint]map[string]interface{}
	blacklist map[string]expiring
	states    map[string]expiring
	now       func() time.Time
}

var _ user.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[uint]map[string]interface{}),
		blacklist: make(map[string]expiring),
		states:    make(map[string]expiring),
		now:       time.Now,
	}
}

func (s *SessionStore) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = data
	return nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = expiring{value: "revoked", expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.blacklist[token]
	if !ok {
		return false, nil
	}
	if e.expired(s.now()) {
		delete(s.blacklist, token)
		return false, nil
	}
	return true, nil
}

func (s *SessionStore) SaveOAuthState(_ context.Context, state, callbackURL string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = expiring{value: callbackURL, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) ConsumeOAuthState(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.states[state]
	delete(s.states, state)
	if !ok || e.expired(s.now()) {
		return "", apperrors.ErrInvalidParams
	}
	return e.value, nil
}
