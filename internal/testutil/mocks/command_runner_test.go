package mocks

import (
	"context"
	"sync"
	"testing"

	"github.com/felixgeelhaar/stepwise/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRunner_AddResult(t *testing.T) {
	runner := NewCommandRunner()
	runner.AddResult("go", []string{"version"}, ports.CommandResult{Stdout: "go version go1.24.0 linux/amd64"})

	result, err := runner.Run(context.Background(), "go", "version")
	require.NoError(t, err)
	assert.Equal(t, "go version go1.24.0 linux/amd64", result.Stdout)
	assert.Equal(t, 1, runner.CallCount("go", "version"))
}

func TestCommandRunner_NotFound(t *testing.T) {
	runner := NewCommandRunner()

	_, err := runner.Run(context.Background(), "unknown", "command")
	require.Error(t, err)
}

func TestCommandRunner_Hook(t *testing.T) {
	runner := NewCommandRunner()
	release := make(chan struct{})
	runner.AddHook("sleep", []string{"1"}, func() { <-release })
	runner.AddResult("sleep", []string{"1"}, ports.CommandResult{})

	done := make(chan struct{})
	go func() {
		_, _ = runner.Run(context.Background(), "sleep", "1")
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Run returned before hook released")
	default:
	}

	close(release)
	<-done
}

func TestCommandRunner_ThreadSafety(t *testing.T) {
	runner := NewCommandRunner()
	runner.AddResult("true", nil, ports.CommandResult{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = runner.Run(context.Background(), "true")
		}()
	}
	wg.Wait()

	assert.Len(t, runner.Calls(), 20)
	runner.Reset()
	assert.Empty(t, runner.Calls())
}

func TestPreferenceStore_Fail(t *testing.T) {
	store := NewPreferenceStore()
	ctx := context.Background()

	require.NoError(t, store.SetInt(ctx, "k", 2))
	store.Fail()
	_, err := store.GetInt(ctx, "k", 0)
	require.ErrorIs(t, err, ErrStoreDown)
	require.ErrorIs(t, store.SetInt(ctx, "k", 3), ErrStoreDown)

	store.Recover()
	v, err := store.GetInt(ctx, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
