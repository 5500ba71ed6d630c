package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupLogging(t *testing.T) {
	t.Setenv("TABLESCHEMA_LOG_LEVEL", "")
	if l := SetupLogging(""); l.Level != logrus.InfoLevel {
		t.Errorf("expected info by default, got %s", l.Level)
	}
	if l := SetupLogging("debug"); l.Level != logrus.DebugLevel {
		t.Errorf("expected debug, got %s", l.Level)
	}
	if l := SetupLogging("bogus"); l.Level != logrus.InfoLevel {
		t.Errorf("expected info for invalid input, got %s", l.Level)
	}
	t.Setenv("TABLESCHEMA_LOG_LEVEL", "warn")
	if l := SetupLogging(""); l.Level != logrus.WarnLevel {
		t.Errorf("expected warn from environment, got %s", l.Level)
	}
}

func TestEnvLookups(t *testing.T) {
	t.Setenv("TABLESCHEMA_ROW_LIMIT", "42")
	t.Setenv("TABLESCHEMA_BAD_INT", "x")
	t.Setenv("TABLESCHEMA_LENIENT", "true")
	if got := Int("ROW_LIMIT", 10); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := Int("BAD_INT", 10); got != 10 {
		t.Errorf("expected default for malformed value, got %d", got)
	}
	if got := Int("UNSET_INT", 7); got != 7 {
		t.Errorf("expected default for unset value, got %d", got)
	}
	if !Bool("LENIENT", false) {
		t.Error("expected true")
	}
	if got := String("UNSET_STRING", "json"); got != "json" {
		t.Errorf("expected default, got %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if LoadEnv(filepath.Join(t.TempDir(), "missing.env"), logger) {
		t.Fatal("missing file should not load")
	}
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("TABLESCHEMA_FROM_FILE=yes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TABLESCHEMA_FROM_FILE", "")
	os.Unsetenv("TABLESCHEMA_FROM_FILE")
	if !LoadEnv(path, logger) {
		t.Fatal("expected file to load")
	}
	if got := String("FROM_FILE", ""); got != "yes" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
