package subscriptions

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/validator"
)

type SubscriberStore interface {
	Add(ctx context.Context, email string) (store.Outcome, error)
	Lookup(ctx context.Context, email string) (models.Subscriber, bool)
	ListAll(ctx context.Context) ([]models.Subscriber, error)
}

// Result of a successful Subscribe. Created is false when the address was
// already stored somewhere.
type Result struct {
	Subscriber models.Subscriber
	Location   string
	Created    bool
}

type Service struct {
	store  SubscriberStore
	logger zerolog.Logger
	m      *metrics.Metrics
}

func NewService(s SubscriberStore, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:  s,
		logger: logger.With().Str("component", "SubscriptionService").Logger(),
		m:      m,
	}
}

// Subscribe validates email and stores it unless some location already holds it.
func (s *Service) Subscribe(ctx context.Context, email string) (Result, error) {
	if err := validator.Check(email); err != nil {
		s.m.SubscriptionsRejected.Inc()
		s.m.BusinessErrors.WithLabelValues("invalid_email", "low").Inc()
		s.logger.Info().Str("email", email).Err(err).Msg("subscription rejected")
		return Result{}, err
	}

	if sub, ok := s.store.Lookup(ctx, email); ok {
		s.logger.Debug().Str("email", email).Str("location", sub.Origin).Msg("already subscribed")
		return Result{Subscriber: sub, Location: sub.Origin}, nil
	}

	out, err := s.store.Add(ctx, email)
	if err != nil {
		return Result{}, err
	}
	return Result{Subscriber: out.Subscriber, Location: out.Location, Created: out.Created}, nil
}

// Exists reports whether any storage location already holds email.
func (s *Service) Exists(ctx context.Context, email string) bool {
	_, ok := s.store.Lookup(ctx, email)
	return ok
}

func (s *Service) List(ctx context.Context) ([]models.Subscriber, error) {
	return s.store.ListAll(ctx)
}
