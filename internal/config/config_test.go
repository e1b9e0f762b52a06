package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
chat:
  max_message_length: 512
  presence_ttl: 90s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Chat.MaxMessageLength != 512 {
		t.Fatalf("unexpected max message length: %d", cfg.Chat.MaxMessageLength)
	}
	if cfg.Chat.PresenceTTL.String() != "1m30s" {
		t.Fatalf("unexpected presence ttl: %s", cfg.Chat.PresenceTTL.String())
	}

	if cfg.Chat.HistoryLimit != 200 {
		t.Fatalf("history_limit default should stay 200, got %d", cfg.Chat.HistoryLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level default should stay debug, got %s", cfg.Log.Level)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Chat.MaxMessageLength != 4000 {
		t.Fatalf("unexpected default max message length: %d", cfg.Chat.MaxMessageLength)
	}
	if cfg.Chat.PresenceTTL.String() != "5m0s" {
		t.Fatalf("unexpected default presence ttl: %s", cfg.Chat.PresenceTTL.String())
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected default redis addr: %s", cfg.Redis.Addr)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "2048")
	t.Setenv("CHAT_PRESENCE_TTL", "2m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("env override for http addr not applied: %s", cfg.HTTP.Addr)
	}
	if cfg.Chat.MaxMessageLength != 2048 {
		t.Fatalf("env override for max message length not applied: %d", cfg.Chat.MaxMessageLength)
	}
	if cfg.Chat.PresenceTTL.String() != "2m0s" {
		t.Fatalf("env override for presence ttl not applied: %s", cfg.Chat.PresenceTTL.String())
	}
}

func TestLoadRejectsMalformedEnvInt(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed CHAT_MAX_MESSAGE_LENGTH")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"CHAT_MAX_MESSAGE_LENGTH",
		"CHAT_HISTORY_LIMIT",
		"CHAT_PRESENCE_TTL",
	} {
		t.Setenv(key, "")
	}
}
