package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name     string
	err      error
	optional bool
	delay    time.Duration
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Optional() bool { return s.optional }

func (s *stubChecker) Check(ctx context.Context) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return s.err
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry(0)

	require.NoError(t, registry.Register(&stubChecker{name: "store"}))

	err := registry.Register(&stubChecker{name: "store"})

	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "store")
}

func TestCheckAll(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		checkers []*stubChecker
		want     HealthStatus
	}{
		{
			name: "no checkers",
			want: HealthStatusHealthy,
		},
		{
			name:     "all healthy",
			checkers: []*stubChecker{{name: "store"}, {name: "assistant", optional: true}},
			want:     HealthStatusHealthy,
		},
		{
			name:     "optional failure degrades",
			checkers: []*stubChecker{{name: "store"}, {name: "assistant", optional: true, err: boom}},
			want:     HealthStatusDegraded,
		},
		{
			name:     "required failure is unhealthy",
			checkers: []*stubChecker{{name: "store", err: boom}, {name: "assistant", optional: true, err: boom}},
			want:     HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry(time.Second)
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			assert.Len(t, result.Checks, len(tt.checkers))
			assert.False(t, result.Timestamp.IsZero())
		})
	}
}

func TestCheckAll_PerCheckTimeout(t *testing.T) {
	registry := NewHealthRegistry(20 * time.Millisecond)
	require.NoError(t, registry.Register(&stubChecker{name: "slow", delay: time.Second}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), result.Checks["slow"].Message)
}
