package decorators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/repository/memory"
)

type countingLocation struct {
	*memory.SubscriberRepository
	prepares int
	inserts  int
}

func (c *countingLocation) Prepare(ctx context.Context) error {
	c.prepares++
	return c.SubscriberRepository.Prepare(ctx)
}

func (c *countingLocation) Insert(ctx context.Context, email string, createdAt time.Time) error {
	c.inserts++
	return c.SubscriberRepository.Insert(ctx, email, createdAt)
}

func TestBreakerLocation_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &countingLocation{SubscriberRepository: memory.NewSubscriberRepository("primary")}
	inner.PrepareErr = errors.New("permission denied")
	m := metrics.NewMetrics("breaker_test")

	b := newBreakerLocation(inner, m, zerolog.Nop(), time.Hour)
	ctx := context.Background()

	for range repeatNumber {
		require.Error(t, b.Prepare(ctx))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationBreakerOpen.WithLabelValues("primary")))

	err := b.Prepare(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "primary unavailable")
	assert.Equal(t, repeatNumber, inner.prepares)
}

func TestBreakerLocation_DuplicatesDoNotTrip(t *testing.T) {
	inner := &countingLocation{SubscriberRepository: memory.NewSubscriberRepository("primary")}
	b := newBreakerLocation(inner, metrics.NewMetrics("breaker_test"), zerolog.Nop(), time.Hour)
	ctx := context.Background()

	require.NoError(t, b.Prepare(ctx))
	require.NoError(t, b.Insert(ctx, "a@b.com", time.Now()))
	for range repeatNumber * 2 {
		assert.ErrorIs(t, b.Insert(ctx, "a@b.com", time.Now()), models.ErrDuplicateEmail)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 1+repeatNumber*2, inner.inserts)
}

func TestBreakerLocation_ReadsPassThrough(t *testing.T) {
	inner := memory.NewSubscriberRepository("primary")
	inner.PrepareErr = errors.New("boom")
	b := newBreakerLocation(inner, metrics.NewMetrics("breaker_test"), zerolog.Nop(), time.Hour)
	ctx := context.Background()

	for range repeatNumber {
		_ = b.Prepare(ctx)
	}
	_, found, err := b.Find(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "primary", b.Name())
}

func TestMetricsDecorator(t *testing.T) {
	inner := memory.NewSubscriberRepository("fallback")
	m := metrics.NewMetrics("decorator_test")
	d := NewMetricsDecorator(inner, m)
	ctx := context.Background()

	require.NoError(t, d.Prepare(ctx))
	require.NoError(t, d.Insert(ctx, "a@b.com", time.Now()))
	assert.ErrorIs(t, d.Insert(ctx, "a@b.com", time.Now()), models.ErrDuplicateEmail)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StorageErrors.WithLabelValues("fallback", "insert")))

	inner.FindErr = errors.New("io")
	_, _, err := d.Find(ctx, "a@b.com")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageErrors.WithLabelValues("fallback", "find")))

	subs, err := d.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscribersByLocation.WithLabelValues("fallback")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.StorageOpDuration))
}
