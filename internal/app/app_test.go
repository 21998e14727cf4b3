package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"courtside-mm-bot/internal/config"

	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	content := strings.Join([]string{
		"engine:",
		"  instrument: HOME_WIN_LAL_BOS",
		"state:",
		"  sqlite_path: " + filepath.Join(dir, "audit.db"),
		"",
	}, "\n")
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("COURTSIDE_API_KEY", "")
	t.Setenv("COURTSIDE_API_SECRET", "")
	if _, err := New(testConfig(t), zap.NewNop()); err == nil {
		t.Fatalf("expected error without api credentials")
	}

	t.Setenv("COURTSIDE_API_KEY", "key")
	if _, err := New(testConfig(t), zap.NewNop()); err == nil {
		t.Fatalf("expected error without api secret")
	}
}

func TestNewWiresComponents(t *testing.T) {
	t.Setenv("COURTSIDE_API_KEY", "key")
	t.Setenv("COURTSIDE_API_SECRET", "secret")

	a, err := New(testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.store.Close()

	if a.engine == nil || a.gateway == nil || a.feed == nil {
		t.Fatalf("expected core components wired")
	}
	if a.prom != nil {
		t.Fatalf("expected no prometheus registry with metrics disabled")
	}
	if snap := a.engine.Snapshot(); snap.Capital != 100000 {
		t.Fatalf("expected engine seeded with default capital, got %v", snap.Capital)
	}
}
