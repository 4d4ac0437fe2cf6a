package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the CLI-facing settings for obsidian-export. The core driver
// is configured programmatically; this layer only feeds it.
type Config struct {
	Vault  VaultConfig  `mapstructure:"vault"`
	Export ExportConfig `mapstructure:"export"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// VaultConfig contains source-tree traversal settings.
type VaultConfig struct {
	Path           string `mapstructure:"path"`
	IgnoreFilename string `mapstructure:"ignore_filename"`
	FollowSymlinks bool   `mapstructure:"follow_symlinks"`
	IncludeHidden  bool   `mapstructure:"include_hidden"`
}

// ExportConfig contains output and reference-resolution settings.
type ExportConfig struct {
	OutputPath          string `mapstructure:"output_path"`
	FrontmatterStrategy string `mapstructure:"frontmatter_strategy"`
	RecursiveEmbeds     bool   `mapstructure:"recursive_embeds"`
	EmbedDepth          int    `mapstructure:"embed_depth"`
	Strict              bool   `mapstructure:"strict"`
	Workers             int    `mapstructure:"workers"`
}

// WatchConfig contains settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load reads configuration from the given file, or from
// .obsidian-export.yaml on the default search path when path is empty.
// OBSIDIAN_EXPORT_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".obsidian-export")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	v.SetEnvPrefix("OBSIDIAN_EXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("vault.ignore_filename", ".export-ignore")
	v.SetDefault("export.frontmatter_strategy", "auto")
	v.SetDefault("export.recursive_embeds", true)
	v.SetDefault("export.embed_depth", 10)
	v.SetDefault("export.workers", 0)
	v.SetDefault("watch.debounce", 2*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file on the search path: defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded settings for values the exporter would reject.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Export.FrontmatterStrategy) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid frontmatter strategy %q (want auto, always or never)", c.Export.FrontmatterStrategy)
	}
	if c.Export.EmbedDepth < 1 {
		return fmt.Errorf("embed depth must be at least 1, got %d", c.Export.EmbedDepth)
	}
	if c.Export.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Export.Workers)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}
