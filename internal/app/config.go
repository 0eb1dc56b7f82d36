// Package app wires plans, stores and probes into a running orchestrator for
// the CLI, TUI and MCP hosts.
package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/stepwise/internal/adapters/hostprobe"
	"github.com/felixgeelhaar/stepwise/internal/adapters/prefstore"
	"github.com/felixgeelhaar/stepwise/internal/ports"
	"github.com/felixgeelhaar/stepwise/internal/validation"
)

// Configuration keys.
const (
	KeyPlan         = "plan"
	KeyNamespace    = "namespace"
	KeyStateDir     = "state_dir"
	KeyStoreBackend = "store.backend"
	KeyStorePath    = "store.path"
	KeyStoreAddr    = "store.addr"
	KeyStorePrefix  = "store.prefix"
	KeyPollInterval = "poll_interval"
	KeyBusyGlobs    = "busy_globs"
	KeyLogLevel     = "log.level"
	KeyLogJSON      = "log.json"
)

// DefaultPollInterval is the host frame period.
const DefaultPollInterval = 200 * time.Millisecond

// Config is the resolved runtime configuration.
type Config struct {
	Plan         string
	Namespace    string
	StateDir     string
	Store        prefstore.Config
	PollInterval time.Duration
	BusyGlobs    []string
	Log          LogConfig
}

// LogConfig selects the console logger's level and format.
type LogConfig struct {
	Level string
	JSON  bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPlan, "stepwise.yaml")
	v.SetDefault(KeyStateDir, ".stepwise")
	v.SetDefault(KeyStoreBackend, string(prefstore.BackendYAML))
	v.SetDefault(KeyStorePrefix, "")
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
	v.SetDefault(KeyBusyGlobs, hostprobe.DefaultBusyGlobs)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
}

// ConfigureEnv binds STEPWISE_* environment variables; STEPWISE_STORE_BACKEND
// sets store.backend.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix("STEPWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig resolves and validates configuration from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Plan:      v.GetString(KeyPlan),
		Namespace: strings.TrimSpace(v.GetString(KeyNamespace)),
		StateDir:  v.GetString(KeyStateDir),
		Store: prefstore.Config{
			Backend: prefstore.Backend(strings.ToLower(v.GetString(KeyStoreBackend))),
			Path:    v.GetString(KeyStorePath),
			Addr:    v.GetString(KeyStoreAddr),
			Prefix:  v.GetString(KeyStorePrefix),
		},
		PollInterval: v.GetDuration(KeyPollInterval),
		BusyGlobs:    v.GetStringSlice(KeyBusyGlobs),
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			JSON:  v.GetBool(KeyLogJSON),
		},
	}

	if cfg.Plan == "" {
		return cfg, fmt.Errorf("%s must not be empty", KeyPlan)
	}
	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("%s must be positive, got %s", KeyPollInterval, cfg.PollInterval)
	}
	if _, err := ports.ParseLevel(cfg.Log.Level); err != nil {
		return cfg, err
	}
	if err := validation.ValidateNamespace(cfg.Namespace); err != nil {
		return cfg, fmt.Errorf("%s: %w", KeyNamespace, err)
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = prefstore.BackendYAML
	}
	if cfg.Store.Path == "" && cfg.Store.Backend != prefstore.BackendRedis && cfg.Store.Backend != prefstore.BackendMemory {
		cfg.Store.Path = prefstore.DefaultPath(cfg.StateDir, cfg.Store.Backend)
	}

	return cfg, nil
}

// PlanDir returns the directory relative step paths resolve against.
func (c Config) PlanDir() string {
	return filepath.Dir(c.Plan)
}
