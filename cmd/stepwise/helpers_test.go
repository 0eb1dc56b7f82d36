package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/adapters/filesystem"
	"github.com/felixgeelhaar/stepwise/internal/adapters/prefstore"
)

const testPlan = `name: demo
namespace: demo
steps:
  - name: ignore
    kind: file
    path: .gitignore
    content: "bin/\n"
    required: true
  - name: tabs
    kind: setting
    file: settings.yaml
    key: editor.tabSize
    value: 2
`

// workspace is a temp directory holding a plan and its config.
type workspace struct {
	dir    string
	plan   string
	config string
}

func newWorkspace(t *testing.T, plan string) *workspace {
	t.Helper()

	dir := t.TempDir()
	w := &workspace{
		dir:    dir,
		plan:   filepath.Join(dir, "stepwise.yaml"),
		config: filepath.Join(dir, "config.yaml"),
	}
	require.NoError(t, os.WriteFile(w.plan, []byte(plan), 0o644))

	cfg := "state_dir: " + filepath.Join(dir, ".stepwise") + "\npoll_interval: 1ms\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(w.config, []byte(cfg), 0o644))
	return w
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(w.path(name))
	require.NoError(t, err)
	return string(data)
}

func (w *workspace) exists(name string) bool {
	_, err := os.Stat(w.path(name))
	return err == nil
}

// setState writes a preference into the workspace's yaml store.
func (w *workspace) setState(t *testing.T, key string, value int) {
	t.Helper()
	store, err := prefstore.NewFileStore(
		prefstore.DefaultPath(filepath.Join(w.dir, ".stepwise"), prefstore.BackendYAML),
		prefstore.BackendYAML,
		filesystem.NewRealFileSystem(),
	)
	require.NoError(t, err)
	require.NoError(t, store.SetInt(context.Background(), key, value))
}

// run executes the root command against the workspace with stdin.
func (w *workspace) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeCommand(t, stdin, append([]string{"--config", w.config, "--plan", w.plan}, args...)...)
}

// executeCommand runs rootCmd with fresh global flag values.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cfgFile, planPath, verbose, yesFlag = "", "", false, false
	statusJSON, applyTUI, mcpHTTP = false, false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
