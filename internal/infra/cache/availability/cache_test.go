package availability

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Noop

	require.NoError(t, c.SetAreas(ctx, []domain.LocationAvailability{{Location: "DowntownLot"}}))

	areas, found, err := c.GetAreas(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, areas)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestCache_UnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	c := New(rdb, time.Second)
	ctx := context.Background()

	_, found, err := c.GetAreas(ctx)
	assert.ErrorIs(t, err, ErrCache)
	assert.False(t, found)

	assert.ErrorIs(t, c.SetAreas(ctx, nil), ErrCache)
	assert.ErrorIs(t, c.Invalidate(ctx), ErrCache)
}

func TestNewClient_PingFails(t *testing.T) {
	_, err := NewClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.ErrorIs(t, err, ErrCache)
}
