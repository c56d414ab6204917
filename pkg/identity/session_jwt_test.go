package identity

import (
	"testing"
	"time"
)

func TestJWTSessionRoundtrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
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

func TestJWTSessionRejectsForeignSecret(t *testing.T) {
	signer := NewJWTSessionStore("secret-a", time.Hour)
	verifier := NewJWTSessionStore("secret-b", time.Hour)

	token, err := signer.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := verifier.GetUserIDByToken(token); ok {
		t.Fatal("expected token signed with another secret to resolve to no session")
	}
}

func TestJWTSessionExpires(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatal("expected expired token to resolve to no session")
	}
}

func TestJWTSessionRejectsGarbage(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
	if _, ok, _ := s.GetUserIDByToken("not-a-token"); ok {
		t.Fatal("expected malformed token to resolve to no session")
	}
}

func TestSessionProviderTracksToken(t *testing.T) {
	store := NewJWTSessionStore("test-secret", time.Hour)
	p := NewSessionProvider(store)

	if _, ok := p.CurrentUserID(); ok {
		t.Fatal("expected no identity without a token")
	}

	token, err := store.NewSession("user-7")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	p.SetToken(token)
	userID, ok := p.CurrentUserID()
	if !ok || userID != "user-7" {
		t.Fatalf("expected user-7, got %q ok=%v", userID, ok)
	}

	p.ClearToken()
	if _, ok := p.CurrentUserID(); ok {
		t.Fatal("expected no identity after logout")
	}
}

func TestStaticProvider(t *testing.T) {
	if _, ok := Static("").CurrentUserID(); ok {
		t.Fatal("expected empty static identity to be unauthenticated")
	}
	userID, ok := Static("u1").CurrentUserID()
	if !ok || userID != "u1" {
		t.Fatalf("expected u1, got %q ok=%v", userID, ok)
	}
}
