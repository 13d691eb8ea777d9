package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager loads configuration from defaults, a config file and the
// environment, in increasing order of precedence.
type Manager struct {
	v      *viper.Viper
	config *Config
}

// NewManager creates a config manager and loads the config. cfgFile may
// be empty, in which case ./config.yaml and then homeDir/config.yaml are
// tried; a missing file is not an error.
func NewManager(cfgFile, homeDir string) (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.initViper(cfgFile, homeDir); err != nil {
		return nil, err
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

// initViper sets up viper with defaults and config file.
func (m *Manager) initViper(cfgFile, homeDir string) error {
	for _, e := range DefaultEntries() {
		m.v.SetDefault(e.Key, e.Value)
	}

	// Environment variables with TAMER_ prefix, e.g. TAMER_PROVIDER_MODEL
	m.v.SetEnvPrefix("TAMER")
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		m.v.SetConfigFile(cfgFile)
	} else {
		m.v.SetConfigName("config")
		m.v.SetConfigType("yaml")
		m.v.AddConfigPath(".")
		if homeDir != "" {
			m.v.AddConfigPath(homeDir)
		}
	}

	// Try to read config file (not required unless named explicitly)
	if err := m.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// load parses the current viper state into a Config struct.
func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
func (m *Manager) Get() *Config {
	return m.config
}

// ConfigFile returns the file the config was read from, or "" when only
// defaults and the environment were used.
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// LoadEnvFiles loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped and variables that are
// already set are never overridden. It returns the files that were loaded.
func LoadEnvFiles(logger *slog.Logger, paths ...string) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat env file %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("load env file %s: %w", p, err)
		}
		logger.Debug("loaded env file", "path", p)
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// WriteDefault writes the default configuration to the specified path.
// An existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	header := []byte(`# Tamer configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set GROQ_API_KEY in your shell or in a .env file next to this one

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
