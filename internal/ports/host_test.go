package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusyFunc(t *testing.T) {
	t.Parallel()

	calls := 0
	probe := BusyFunc(func(_ context.Context) bool {
		calls++
		return calls > 1
	})

	var _ BusyProbe = probe
	assert.False(t, probe.Busy(context.Background()))
	assert.True(t, probe.Busy(context.Background()))
	assert.Equal(t, 2, calls)
}
