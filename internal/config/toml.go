// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Extract ExtractConfig `toml:"extract"`
	Filter  FilterConfig  `toml:"filter"`
	Log     LogConfig     `toml:"log"`
}

// ExtractConfig maps extraction settings.
type ExtractConfig struct {
	KeystrokeDir *string `toml:"keystroke-dir"`
	Pattern      *string `toml:"pattern"`
	Out          *string `toml:"out"`
	MinInterval  *int64  `toml:"min-interval"`
	MaxInterval  *int64  `toml:"max-interval"`
	Workers      *int    `toml:"workers"`
	NoStore      *bool   `toml:"no-store"`
	DB           *string `toml:"db"`
}

// FilterConfig maps participant filter criteria. Nil lists are unset.
type FilterConfig struct {
	Layouts       []string `toml:"layouts"`
	Fingers       []string `toml:"fingers"`
	KeyboardTypes []string `toml:"keyboard-types"`
	MaxErrorRate  *float64 `toml:"max-error-rate"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level      *string `toml:"level"`
	Format     *string `toml:"format"`
	File       *string `toml:"file"`
	MaxSizeMB  *int    `toml:"max-size-mb"`
	MaxBackups *int    `toml:"max-backups"`
	MaxAgeDays *int    `toml:"max-age-days"`
	Compress   *bool   `toml:"compress"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
// Unknown keys are rejected.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return FileConfig{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	for _, p := range []*string{cfg.Extract.KeystrokeDir, cfg.Extract.Out, cfg.Extract.DB, cfg.Log.File} {
		if p == nil {
			continue
		}
		expanded, err := ExpandPath(*p)
		if err != nil {
			return FileConfig{}, err
		}
		*p = expanded
	}
	return cfg, nil
}
