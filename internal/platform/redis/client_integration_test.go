//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"intentions/internal/platform/config"
	"intentions/pkg/testutil/containers"
)

func TestConnectPings(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := Connect(ctx, config.RedisConfig{URL: rc.URL, PoolSize: 2})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Health(ctx))
}
