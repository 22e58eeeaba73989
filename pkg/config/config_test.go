package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Name    string        `envconfig:"NAME" required:"true"`
	Count   int           `envconfig:"COUNT" default:"1"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

func TestNewReadsEnvFileWithoutOverridingProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "SLOTCFG_NAME=from-file\nSLOTCFG_COUNT=3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("ENV_FILE", path)
	t.Setenv("SLOTCFG_COUNT", "5")
	t.Cleanup(func() { _ = os.Unsetenv("SLOTCFG_NAME") })

	cfg, err := New[testConfig]("SLOTCFG")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Name != "from-file" {
		t.Fatalf("Name = %q, want from-file", cfg.Name)
	}
	if cfg.Count != 5 {
		t.Fatalf("Count = %d, want process env value 5", cfg.Count)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
}

func TestNewMissingRequired(t *testing.T) {
	t.Setenv("ENV_FILE", "")

	if _, err := New[testConfig]("SLOTCFG_MISSING"); err == nil {
		t.Fatal("expected error for missing required field")
	}
}
