package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rvo.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Level = "debug"
	log, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("tick done")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tick done") {
		t.Errorf("log file does not contain message: %q", data)
	}
}

func TestNewRejectsLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
