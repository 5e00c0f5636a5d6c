package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallel2(t *testing.T) {
	t.Run("both succeed", func(t *testing.T) {
		n, s, err := Parallel2(context.Background(),
			func(context.Context) (int, error) { return 42, nil },
			func(context.Context) (string, error) { return "up", nil },
		)

		require.NoError(t, err)
		assert.Equal(t, 42, n)
		assert.Equal(t, "up", s)
	})

	t.Run("failure cancels the sibling and zeroes results", func(t *testing.T) {
		boom := errors.New("store down")

		n, ok, err := Parallel2(context.Background(),
			func(context.Context) (int, error) { return 7, boom },
			func(ctx context.Context) (bool, error) {
				select {
				case <-ctx.Done():
					return true, ctx.Err()
				case <-time.After(2 * time.Second):
					return true, nil
				}
			},
		)

		require.ErrorIs(t, err, boom)
		assert.Zero(t, n)
		assert.False(t, ok)
	})
}

func TestFanOut(t *testing.T) {
	t.Run("visits every item within the worker limit", func(t *testing.T) {
		var (
			visited  atomic.Int32
			inFlight atomic.Int32
			peak     atomic.Int32
		)

		items := make([]int, 20)

		err := FanOut(context.Background(), 3, items, func(context.Context, int) error {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}

			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			visited.Add(1)

			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, int32(20), visited.Load())
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("first error is returned", func(t *testing.T) {
		boom := errors.New("sync failed")

		err := FanOut(context.Background(), 2, []int{1, 2, 3}, func(_ context.Context, i int) error {
			if i == 2 {
				return boom
			}

			return nil
		})

		require.ErrorIs(t, err, boom)
	})

	t.Run("canceled parent", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32

		err := FanOut(ctx, 0, []int{1, 2}, func(context.Context, int) error {
			calls.Add(1)
			return nil
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls.Load())
	})
}
