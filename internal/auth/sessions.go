package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Sessions is an in-memory session table mapping opaque tokens to usernames.
// Tokens expire after the configured TTL; expired entries are swept lazily
// on every Create.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	active map[string]session
}

type session struct {
	user      string
	expiresAt time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:    ttl,
		active: make(map[string]session),
	}
}

// Create issues a fresh token for the given user.
func (s *Sessions) Create(user string) (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(bytes)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for t, sess := range s.active {
		if now.After(sess.expiresAt) {
			delete(s.active, t)
		}
	}
	s.active[token] = session{user: user, expiresAt: now.Add(s.ttl)}
	return token, nil
}

// User resolves a token to its username. An expired or unknown token
// returns false.
func (s *Sessions) User(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[token]
	if !ok {
		return "", false
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.active, token)
		return "", false
	}
	return sess.user, true
}

// Destroy invalidates a token. Destroying an unknown token is a no-op.
func (s *Sessions) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, token)
}

// TTL returns the configured session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
