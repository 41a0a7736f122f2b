package auth

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSessions(time.Hour)

	token, err := s.Create("admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(token) != 32 {
		t.Fatalf("token length = %d, want 32", len(token))
	}

	user, ok := s.User(token)
	if !ok || user != "admin" {
		t.Fatalf("resolve = %q, %v", user, ok)
	}

	s.Destroy(token)
	if _, ok := s.User(token); ok {
		t.Fatalf("destroyed token still resolves")
	}
}

func TestSessionExpiry(t *testing.T) {
	s := NewSessions(time.Millisecond)
	token, err := s.Create("admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := s.User(token); ok {
		t.Fatalf("expired token still resolves")
	}
}

func TestSessionTokensUnique(t *testing.T) {
	s := NewSessions(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := s.Create("admin")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[token] {
			t.Fatalf("duplicate token at iteration %d", i)
		}
		seen[token] = true
	}
}
