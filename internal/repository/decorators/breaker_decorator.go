package decorators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const (
	timeInterval = time.Duration(30) * time.Second
	timeTimeOut  = time.Duration(15) * time.Second

	repeatNumber = 5
)

// BreakerLocation short-circuits writes to a location that keeps failing so
// the store moves on to the next candidate without waiting on it.
type BreakerLocation struct {
	location
	cb *gobreaker.CircuitBreaker
}

func NewBreakerLocation(next location, m *metrics.Metrics, logger zerolog.Logger) *BreakerLocation {
	return newBreakerLocation(next, m, logger, timeTimeOut)
}

func newBreakerLocation(
	next location,
	m *metrics.Metrics,
	logger zerolog.Logger,
	openFor time.Duration,
) *BreakerLocation {
	logger = logger.With().Str("component", "LocationBreaker").Logger()
	gauge := m.LocationBreakerOpen.WithLabelValues(next.Name())
	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Interval:    timeInterval,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= repeatNumber
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, models.ErrDuplicateEmail)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("location", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("location breaker state changed")
			if to == gobreaker.StateOpen {
				gauge.Set(1)
			} else {
				gauge.Set(0)
			}
		},
	}
	return &BreakerLocation{
		location: next,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerLocation) Prepare(ctx context.Context) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.location.Prepare(ctx)
	})
	return b.wrap(err)
}

func (b *BreakerLocation) Insert(ctx context.Context, email string, createdAt time.Time) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.location.Insert(ctx, email, createdAt)
	})
	return b.wrap(err)
}

// State exposes the breaker state for health reporting.
func (b *BreakerLocation) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerLocation) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s unavailable: %w", b.location.Name(), err)
	}
	return err
}
