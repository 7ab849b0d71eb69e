package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(context.Background(), "org_x|10.0.0.1")
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i+1)
	}

	res, err := l.Allow(context.Background(), "org_x|10.0.0.1")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Greater(t, res.RetryAfter, time.Duration(0))

	// Otra key no comparte la ventana.
	res, err = l.Allow(context.Background(), "org_y|10.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
