package identity

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisSessions(t *testing.T, ttl time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	return NewRedisSessionStore(srv.Addr(), "", ttl), srv
}

func TestRedisSessionRoundtrip(t *testing.T) {
	s, _ := newRedisSessions(t, time.Hour)
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	userID, ok, err := s.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if !ok || userID != "user-1" {
		t.Fatalf("expected user-1, got %q ok=%v", userID, ok)
	}
}

func TestRedisSessionDelete(t *testing.T) {
	s, _ := newRedisSessions(t, time.Hour)
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatal("expected deleted session to resolve to no user")
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("expected double delete to succeed, got %v", err)
	}
}

func TestRedisSessionExpires(t *testing.T) {
	s, srv := newRedisSessions(t, time.Minute)
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	srv.FastForward(2 * time.Minute)
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatal("expected expired session to resolve to no user")
	}
}
