package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorustyt/gorvo/rvo"
)

func TestLoadPriority(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(env, []byte("RVO_AGENTS=12\nRVO_SPEED=3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RVO_ALGORITHM", "gradient")
	t.Setenv("RVO_DURATION", "5s")
	// godotenv does not override variables that are already set.
	t.Setenv("RVO_AGENTS", "20")
	t.Cleanup(func() { os.Unsetenv("RVO_SPEED") })

	cfg, err := Load(env, []string{"-workers", "3"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agents != 20 {
		t.Errorf("agents %d, want the environment value 20", cfg.Agents)
	}
	if cfg.Speed != 3.5 {
		t.Errorf("speed %v, want 3.5 from .env", cfg.Speed)
	}
	if cfg.Sim.Algorithm != rvo.GradientDescent {
		t.Errorf("algorithm %v", cfg.Sim.Algorithm)
	}
	if cfg.Duration != 5*time.Second {
		t.Errorf("duration %v", cfg.Duration)
	}
	if cfg.Sim.Workers != 3 {
		t.Errorf("workers %d, want flag value 3", cfg.Sim.Workers)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agents != Default().Agents {
		t.Errorf("agents %d", cfg.Agents)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("RVO_DT", "0")
	if _, err := Load("", nil); !errors.Is(err, rvo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	t.Setenv("RVO_DT", "fast")
	if _, err := Load("", nil); err == nil {
		t.Error("expected parse error")
	}
}
