//go:build integration

package worker

// Runs the Redis queue end to end against a real Redis via testcontainers.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	c, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestQueue_AlertDelivered(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan dto.StockAlert, 1)
	pool := NewPool(rdb, map[string]Handler{
		JobStockAlert: handlerFunc(func(_ context.Context, payload json.RawMessage) error {
			var a dto.StockAlert
			if err := json.Unmarshal(payload, &a); err != nil {
				return err
			}
			delivered <- a
			return nil
		}),
	})
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EnqueueStockAlert(ctx, dto.StockAlert{
		DisplayName: "Ribbon", OnHand: decimal.NewFromInt(1), MinimumStock: decimal.NewFromInt(4),
	}))

	select {
	case a := <-delivered:
		assert.Equal(t, "Ribbon", a.DisplayName)
	case <-time.After(10 * time.Second):
		t.Fatal("alert was not processed")
	}
	cancel()
	pool.Wait()
}

func TestQueue_FailingJobEndsInDLQ(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	pool := NewPool(rdb, map[string]Handler{
		JobStockAlert: handlerFunc(func(context.Context, json.RawMessage) error {
			calls.Add(1)
			return errors.New("smtp down")
		}),
	})
	pool.Start(ctx, 1)
	require.NoError(t, NewDispatcher(rdb).EnqueueStockAlert(ctx, dto.StockAlert{DisplayName: "Box"}))

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueStockAlert)
		return err == nil && n == 1
	}, 20*time.Second, 100*time.Millisecond)
	assert.EqualValues(t, MaxAttempts, calls.Load())

	entries, err := PeekDLQ(ctx, rdb, QueueStockAlert, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, JobStockAlert, entries[0].JobType)
	assert.Equal(t, MaxAttempts, entries[0].Attempts)
	assert.Contains(t, entries[0].Reason, "smtp down")

	cancel()
	pool.Wait()
}

func TestQueue_MalformedJobDeadLettered(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	p := NewPool(rdb, nil)

	p.processJob(ctx, QueueStockAlert, "not json")
	entries, err := PeekDLQ(ctx, rdb, QueueStockAlert, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "unknown", entries[0].JobType)
	assert.JSONEq(t, `"not json"`, string(entries[0].Payload))
}
