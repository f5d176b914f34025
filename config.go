package mp3meta

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
)

// Config holds the persistent settings of a program built on this package.
type Config struct {
	// Regions rewritten by Save
	Write SaveFlags `json:"save"`

	// Tag formats read by Open
	Load LoadFlags `json:"load"`

	// Fail Open when the leading tag size and the audio start disagree
	StrictOffsets bool `json:"strict_offsets"`

	// Backup suffix for Save, empty for no backup
	BackupSuffix string `json:"backup_suffix,omitempty"`

	// logrus level name; the LOG_LEVEL environment variable takes precedence
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Write:    AllRegions,
		Load:     LoadAll,
		LogLevel: "info",
	}
}

// DefaultConfigPath returns the config file location in the user's home
// directory.
func DefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mp3meta", "config.json"), nil
}

// LoadConfig reads a config from a JSON file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a JSON file, creating its directory.
func (c *Config) Save(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OpenOptions returns the Open options the config selects.
func (c *Config) OpenOptions() []Option {
	opts := []Option{WithLoad(c.Load)}
	if c.StrictOffsets {
		opts = append(opts, WithStrictOffsets())
	}
	return opts
}

// SaveOptions returns the Save options the config selects.
func (c *Config) SaveOptions() []SaveOption {
	opts := []SaveOption{WithSaveFlags(c.Write)}
	if c.BackupSuffix != "" {
		opts = append(opts, WithBackup(c.BackupSuffix))
	}
	return opts
}

// ApplyLogLevel sets logger's level from LOG_LEVEL, else from LogLevel.
// Unknown names select info.
func (c *Config) ApplyLogLevel(logger *logrus.Logger) {
	name := os.Getenv("LOG_LEVEL")
	if name == "" {
		name = c.LogLevel
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}
