package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `logLevel: debug
postgresDSN: postgres://localhost/bookshelf
redisAddr: localhost:6379
blobDir: /tmp/blobs
blobBaseURL: http://localhost:9000/blobs
sessionSecret: s3cret
sessionTTL: 12h
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	ttl, err := ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		t.Fatalf("parse ttl: %v", err)
	}
	if ttl != 12*time.Hour {
		t.Fatalf("expected 12h ttl, got %v", ttl)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SHELF_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("SHELF_SESSION_TOKEN", "tok-123")
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RedisAddr != "redis.internal:6380" {
		t.Fatalf("expected env override, got %q", cfg.RedisAddr)
	}
	if cfg.SessionToken != "tok-123" {
		t.Fatalf("expected session token from env, got %q", cfg.SessionToken)
	}
}

func TestLoadRejectsMissingBackends(t *testing.T) {
	cases := map[string]string{
		"no document store": `redisAddr: localhost:6379
blobDir: /tmp/blobs
sessionSecret: x
`,
		"no change feed": `postgresDSN: postgres://localhost/bookshelf
blobDir: /tmp/blobs
sessionSecret: x
`,
		"no blob store": `postgresDSN: postgres://localhost/bookshelf
redisAddr: localhost:6379
sessionSecret: x
`,
		"no session secret": `postgresDSN: postgres://localhost/bookshelf
redisAddr: localhost:6379
blobDir: /tmp/blobs
`,
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestParseDurationsDefaultAndReject(t *testing.T) {
	ttl, err := ParseSessionTTL("")
	if err != nil || ttl != 24*time.Hour {
		t.Fatalf("expected 24h default, got %v err=%v", ttl, err)
	}
	expiry, err := ParseMinioURLExpiry("")
	if err != nil || expiry != 7*24*time.Hour {
		t.Fatalf("expected 7d default, got %v err=%v", expiry, err)
	}
	if _, err := ParseSessionTTL("yesterday"); err == nil {
		t.Fatal("expected error for malformed duration")
	}
	if _, err := ParseSessionTTL("-5m"); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
