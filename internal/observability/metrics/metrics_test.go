package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInitializesLazily(t *testing.T) {
	m := Get()
	require.NotNil(t, m)
	assert.Same(t, m, Get())

	// With no meter provider configured the global no-op meter backs the
	// instruments; recording must still be safe.
	m.HTTPRequestsTotal.Add(context.Background(), 1)
	m.ProviderRequestDuration.Record(context.Background(), 0.1)
	RecordDBError(context.Background(), "users")
}
