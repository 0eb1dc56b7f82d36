package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/adapters/hostprobe"
	"github.com/felixgeelhaar/stepwise/internal/adapters/prefstore"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(newViper())
	require.NoError(t, err)

	assert.Equal(t, "stepwise.yaml", cfg.Plan)
	assert.Equal(t, ".", cfg.PlanDir())
	assert.Equal(t, prefstore.BackendYAML, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(".stepwise", "state.yaml"), cfg.Store.Path)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, hostprobe.DefaultBusyGlobs, cfg.BusyGlobs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
plan: setup/stepwise.yaml
namespace: ml
poll_interval: 50ms
busy_globs: ["*.lock"]
store:
  backend: SQLite
log:
  level: debug
  json: true
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "setup", cfg.PlanDir())
	assert.Equal(t, "ml", cfg.Namespace)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, []string{"*.lock"}, cfg.BusyGlobs)
	assert.Equal(t, prefstore.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(".stepwise", "state.db"), cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("STEPWISE_STORE_BACKEND", "redis")
	t.Setenv("STEPWISE_STORE_ADDR", "localhost:6379")
	t.Setenv("STEPWISE_NAMESPACE", "ci")

	v := newViper()
	ConfigureEnv(v)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, prefstore.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.Addr)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "ci", cfg.Namespace)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{name: "empty plan", key: KeyPlan, val: ""},
		{name: "zero interval", key: KeyPollInterval, val: "0s"},
		{name: "bad level", key: KeyLogLevel, val: "loud"},
		{name: "bad namespace", key: KeyNamespace, val: "my setup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.val)
			_, err := LoadConfig(v)
			assert.Error(t, err)
		})
	}
}
