package hostprobe

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

func TestGlob(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"web/node_modules/.staging/x": {Data: []byte("x")},
		"README.md":                   {Data: []byte("hi")},
	}

	probe, err := NewGlobFS(fsys, []string{"**/node_modules/.staging"}, nil)
	require.NoError(t, err)
	assert.True(t, probe.Busy(ctx))

	probe, err = NewGlobFS(fsys, []string{".git/index.lock", "*.lock"}, nil)
	require.NoError(t, err)
	assert.False(t, probe.Busy(ctx))
}

func TestGlob_Dir(t *testing.T) {
	dir := t.TempDir()
	probe, err := NewGlob(dir, DefaultBusyGlobs, nil)
	require.NoError(t, err)
	assert.False(t, probe.Busy(context.Background()))
}

func TestGlob_InvalidPattern(t *testing.T) {
	_, err := NewGlobFS(fstest.MapFS{}, []string{"[unclosed"}, nil)
	assert.ErrorContains(t, err, "invalid busy glob")
}

func TestStatic(t *testing.T) {
	var s Static
	assert.False(t, s.Busy(context.Background()))
	s.Set(true)
	assert.True(t, s.Busy(context.Background()))
}

func TestAny(t *testing.T) {
	ctx := context.Background()
	var s Static
	probe := Any{nil, ports.BusyFunc(func(context.Context) bool { return false }), &s}

	assert.False(t, probe.Busy(ctx))
	s.Set(true)
	assert.True(t, probe.Busy(ctx))
	assert.False(t, Any(nil).Busy(ctx))
}
