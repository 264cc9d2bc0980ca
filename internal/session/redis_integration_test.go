//go:build integration

package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"trafficledger/internal/storage"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err, "redis connection string")
	return url
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, err := Dial(ctx, startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Minute)

	fresh, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, New("abc"), fresh)

	fresh.Select(2)
	fresh.Record(sampleTable(), nil)
	require.NoError(t, store.Save(ctx, fresh))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Selected)
	require.True(t, got.HasResult())
	assert.Equal(t, []string{"violation", "total"}, got.Result.Columns)
	// Numbers come back as their literal text rather than float64.
	total, ok := got.Result.Value(0, "total")
	require.True(t, ok)
	assert.Equal(t, json.Number("2"), total)

	big := New("big")
	big.Record(&storage.Table{Columns: []string{"n"}, Rows: []storage.Row{{int64(9007199254740993)}}}, nil)
	require.NoError(t, store.Save(ctx, big))
	gotBig, err := store.Get(ctx, "big")
	require.NoError(t, err)
	n, ok := gotBig.Result.Value(0, "n")
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), n)

	got.Record(nil, errors.New("boom"))
	require.NoError(t, store.Save(ctx, got))

	failed, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, failed.HasResult())
	assert.Equal(t, "boom", failed.Error)

	ttl, err := client.TTL(ctx, keyPrefix+"abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
