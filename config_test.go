package mp3meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Write = SaveFlags{Current: true, Legacy: true}
	cfg.StrictOffsets = true
	cfg.BackupSuffix = ".orig"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if *got != *cfg {
		t.Errorf("loaded %+v, want %+v", got, cfg)
	}

	if n := len(got.OpenOptions()); n != 2 {
		t.Errorf("OpenOptions() has %d options, want 2", n)
	}
	opts := defaultSaveOptions()
	for _, opt := range got.SaveOptions() {
		opt(opts)
	}
	if opts.flags != cfg.Write || opts.backupSuffix != ".orig" {
		t.Errorf("save options = %+v", opts)
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"strict_offsets": true}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !cfg.StrictOffsets || cfg.Write != AllRegions || cfg.Load != LoadAll {
		t.Errorf("config = %+v", cfg)
	}

	if err := os.WriteFile(path, []byte(`{`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if filepath.Base(path) != "config.json" || !filepath.IsAbs(path) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestConfig_ApplyLogLevel(t *testing.T) {
	logger := logrus.New()
	cfg := DefaultConfig()

	t.Setenv("LOG_LEVEL", "")
	cfg.LogLevel = "warn"
	cfg.ApplyLogLevel(logger)
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s, want warn", logger.GetLevel())
	}

	t.Setenv("LOG_LEVEL", "debug")
	cfg.ApplyLogLevel(logger)
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s, want debug from LOG_LEVEL", logger.GetLevel())
	}

	t.Setenv("LOG_LEVEL", "nonsense")
	cfg.ApplyLogLevel(logger)
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %s, want info for unknown name", logger.GetLevel())
	}
}
