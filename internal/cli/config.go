package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fragmentgrid/pkg/cache"
	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
	"github.com/matzehuels/fragmentgrid/pkg/pipeline"
	"github.com/matzehuels/fragmentgrid/pkg/store"
)

// configFileName is the config file looked up in configDir.
const configFileName = "config.toml"

// defaultAddr is the listen address of "serve".
const defaultAddr = "127.0.0.1:8080"

// Config is the TOML configuration file. Flags override its values.
type Config struct {
	Grid   layout.Config `toml:"grid"`
	Layout LayoutConfig  `toml:"layout"`
	Store  store.Config  `toml:"store"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// LayoutConfig selects how directions are decided.
type LayoutConfig struct {
	Decider string `toml:"decider"`
	Seed    uint64 `toml:"seed"`
}

// CacheConfig selects the layout cache.
type CacheConfig struct {
	// Backend is file, memory, redis, or none.
	Backend string `toml:"backend"`

	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`

	// Namespace prefixes every cache key, for sharing one Redis.
	Namespace string `toml:"namespace"`

	Redis cache.RedisConfig `toml:"redis"`
}

// ServerConfig configures "serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Grid:   layout.DefaultConfig(),
		Layout: LayoutConfig{Decider: pipeline.DefaultDecider, Seed: pipeline.DefaultSeed},
		Store:  store.Config{Backend: store.BackendFile},
		Cache:  CacheConfig{Backend: cacheFile},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// LoadConfig reads the config at path over DefaultConfig. An empty path
// means the default location. A missing file is an error only when
// explicit is set. Unknown keys are rejected.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Grid.WithDefaults().Validate(); err != nil {
		return cfg, err
	}
	if cfg.Layout.Decider != "" {
		if err := pipeline.ValidateDecider(cfg.Layout.Decider); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// =============================================================================
// config command
// =============================================================================

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.Config)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			if err := writeDefaultConfig(path, force); err != nil {
				return err
			}
			printSuccess("Config written")
			printFile(path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return defaultConfigPath()
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(DefaultConfig())
}
