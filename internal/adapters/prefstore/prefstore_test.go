package prefstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/adapters/filesystem"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/ports"
	"github.com/felixgeelhaar/stepwise/internal/testutil/mocks"
)

func openAll(t *testing.T) map[Backend]Store {
	t.Helper()

	dir := t.TempDir()
	fs := filesystem.NewRealFileSystem()
	mr := miniredis.RunT(t)

	stores := map[Backend]Store{}
	for _, cfg := range []Config{
		{Backend: BackendMemory},
		{Backend: BackendYAML, Path: filepath.Join(dir, "y", "state.yaml")},
		{Backend: BackendTOML, Path: filepath.Join(dir, "state.toml")},
		{Backend: BackendINI, Path: filepath.Join(dir, "state.ini")},
		{Backend: BackendSQLite, Path: filepath.Join(dir, "db", "state.db")},
		{Backend: BackendRedis, Addr: mr.Addr(), Prefix: "test:"},
	} {
		store, err := Open(cfg, fs)
		require.NoError(t, err, cfg.Backend)
		t.Cleanup(func() { _ = store.Close() })
		stores[cfg.Backend] = store
	}
	return stores
}

func TestStores_Contract(t *testing.T) {
	ctx := context.Background()

	for backend, store := range openAll(t) {
		t.Run(string(backend), func(t *testing.T) {
			v, err := store.GetInt(ctx, "stepwise.cursor", sequence.Sentinel)
			require.NoError(t, err)
			assert.Equal(t, sequence.Sentinel, v, "default for missing key")

			require.NoError(t, store.SetInt(ctx, "stepwise.cursor", 2))
			require.NoError(t, store.SetInt(ctx, "stepwise.started", 1))
			require.NoError(t, store.SetInt(ctx, "stepwise.cursor", -1))

			v, err = store.GetInt(ctx, "stepwise.cursor", 99)
			require.NoError(t, err)
			assert.Equal(t, -1, v)

			v, err = store.GetInt(ctx, "stepwise.started", 0)
			require.NoError(t, err)
			assert.Equal(t, 1, v)
		})
	}
}

func TestStores_Persist(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := filesystem.NewRealFileSystem()

	for _, backend := range []Backend{BackendYAML, BackendTOML, BackendINI, BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := Config{Backend: backend, Path: DefaultPath(dir, backend)}

			first, err := Open(cfg, fs)
			require.NoError(t, err)
			require.NoError(t, first.SetInt(ctx, "ml.cursor", 3))
			require.NoError(t, first.Close())

			second, err := Open(cfg, fs)
			require.NoError(t, err)
			defer func() { _ = second.Close() }()

			v, err := second.GetInt(ctx, "ml.cursor", sequence.Sentinel)
			require.NoError(t, err)
			assert.Equal(t, 3, v)
		})
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cursor: [nope"), 0o644))

	store, err := NewFileStore(path, BackendYAML, filesystem.NewRealFileSystem())
	require.NoError(t, err)

	v, err := store.GetInt(context.Background(), "cursor", 7)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, 7, v)
	assert.Error(t, store.SetInt(context.Background(), "cursor", 1))
}

func TestFileStore_WritesThroughFileSystem(t *testing.T) {
	fs := mocks.NewFileSystem()
	store, err := NewFileStore("/state.yaml", BackendYAML, fs)
	require.NoError(t, err)

	require.NoError(t, store.SetInt(context.Background(), "a", 1))
	assert.Equal(t, "a: 1\n", fs.Content("/state.yaml"))
}

func TestRedis_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedis(mr.Addr(), "")
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	require.NoError(t, store.SetInt(ctx, "k", 5))
	assert.Equal(t, "5", mustGet(t, mr, "k"))

	mr.Close()
	v, err := store.GetInt(ctx, "k", -1)
	require.Error(t, err)
	assert.Equal(t, -1, v)
	assert.Error(t, store.SetInt(ctx, "k", 6))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestOrchestrator_PersistenceFailureThroughStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedis(mr.Addr(), "")
	defer func() { _ = store.Close() }()

	o, err := sequence.New(store, []sequence.Step{mocks.NewStep("a"), mocks.NewStep("b")})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, o.Start(ctx))

	mr.Close()
	_, err = o.Poll(ctx, false)
	require.ErrorIs(t, err, sequence.ErrPersistenceUnavailable)
	assert.Equal(t, 1, o.Cursor(), "in-memory progress kept")
}

func TestOpen_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()

	_, err := Open(Config{Backend: "etcd"}, fs)
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(Config{Backend: BackendYAML}, fs)
	assert.Error(t, err)
	_, err = Open(Config{Backend: BackendSQLite}, fs)
	assert.Error(t, err)
	_, err = Open(Config{Backend: BackendRedis}, fs)
	assert.Error(t, err)

	_, err = NewFileStore("x", BackendRedis, fs)
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpen_DefaultsToYAML(t *testing.T) {
	store, err := Open(Config{Path: "/state.yaml"}, mocks.NewFileSystem())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "state.yaml"), DefaultPath("s", BackendYAML))
	assert.Equal(t, filepath.Join("s", "state.toml"), DefaultPath("s", BackendTOML))
	assert.Equal(t, filepath.Join("s", "state.ini"), DefaultPath("s", BackendINI))
	assert.Equal(t, filepath.Join("s", "state.db"), DefaultPath("s", BackendSQLite))
}

var _ ports.PreferenceStore = (*Memory)(nil)
