package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const (
	opPrepare = "prepare"
	opFind    = "find"
	opInsert  = "insert"
	opVerify  = "verify"
	opList    = "list"
)

// Location is one candidate storage target. Find and List must never create
// anything: a missing file or table reads as "not found" / empty.
type Location interface {
	Name() string
	Prepare(ctx context.Context) error
	Find(ctx context.Context, email string) (models.Subscriber, bool, error)
	Insert(ctx context.Context, email string, createdAt time.Time) error
	List(ctx context.Context) ([]models.Subscriber, error)
	Close() error
}

type notifier interface {
	Notify(text string)
}

// Outcome describes a successful Add.
type Outcome struct {
	Subscriber models.Subscriber
	Location   string
	Created    bool
}

// Store persists subscribers across an ordered list of candidate locations.
// Writes go to the first location that accepts them; reads consult all of them.
type Store struct {
	locations []Location
	notifier  notifier
	logger    zerolog.Logger
	m         *metrics.Metrics
	now       func() time.Time
}

func New(locations []Location, n notifier, logger zerolog.Logger, m *metrics.Metrics) *Store {
	logger = logger.With().Str("component", "SubscriberStore").Logger()
	return &Store{
		locations: locations,
		notifier:  n,
		logger:    logger,
		m:         m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Locations returns the candidate list in priority order.
func (s *Store) Locations() []Location {
	return s.locations
}

// Init prepares the primary location. Failures are logged only; Add falls back per call.
func (s *Store) Init(ctx context.Context) {
	if len(s.locations) == 0 {
		s.logger.Warn().Msg("no storage locations configured")
		return
	}
	primary := s.locations[0]
	if err := primary.Prepare(ctx); err != nil {
		s.logger.Warn().Err(err).Str("location", primary.Name()).
			Msg("primary storage location not ready, writes will fall back")
		return
	}
	s.logger.Info().Str("location", primary.Name()).Msg("primary storage location ready")
}

// Add stores email in the first location that accepts it. An address already
// present in a location is reported as success with Created=false.
func (s *Store) Add(ctx context.Context, email string) (Outcome, error) {
	var attempts []*LocationError

	for _, loc := range s.locations {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, &LocationError{Location: loc.Name(), Op: opPrepare, Err: err})
			break
		}

		out, lErr := s.addAt(ctx, loc, email)
		if lErr != nil {
			s.logger.Warn().Err(lErr.Err).
				Str("location", lErr.Location).
				Str("op", lErr.Op).
				Msg("storage location rejected write, trying next")
			attempts = append(attempts, lErr)
			continue
		}

		if out.Created {
			s.m.SubscriptionsCreated.WithLabelValues(out.Location).Inc()
			s.logger.Info().Str("email", email).Str("location", out.Location).
				Int64("id", out.Subscriber.ID).Msg("subscriber stored")
			if s.notifier != nil {
				s.notifier.Notify(fmt.Sprintf("New Vibe Trading subscriber: %s", email))
			}
		} else {
			s.m.SubscriptionsExisting.WithLabelValues(out.Location).Inc()
			s.logger.Info().Str("email", email).Str("location", out.Location).
				Msg("subscriber already stored")
		}
		return out, nil
	}

	exhausted := &ExhaustedError{Attempts: attempts}
	s.m.StorageExhausted.Inc()
	s.m.TechnicalErrors.WithLabelValues("storage_exhausted", "critical").Inc()
	s.logger.Error().Err(exhausted).Str("email", email).
		Int("attempts", len(attempts)).
		Msg("no storage location accepted the write")
	return Outcome{}, exhausted
}

func (s *Store) addAt(ctx context.Context, loc Location, email string) (Outcome, *LocationError) {
	if err := loc.Prepare(ctx); err != nil {
		return Outcome{}, locationErr(loc, opPrepare, err)
	}

	existing, found, err := loc.Find(ctx, email)
	if err != nil {
		return Outcome{}, locationErr(loc, opFind, err)
	}
	if found {
		return Outcome{Subscriber: withOrigin(existing, loc), Location: loc.Name()}, nil
	}

	err = loc.Insert(ctx, email, s.now())
	switch {
	case errors.Is(err, models.ErrDuplicateEmail):
		// lost a race with a concurrent insert of the same address
		existing, found, err = loc.Find(ctx, email)
		if err != nil {
			return Outcome{}, locationErr(loc, opFind, err)
		}
		if !found {
			return Outcome{}, locationErr(loc, opVerify, models.ErrVerificationFailed)
		}
		return Outcome{Subscriber: withOrigin(existing, loc), Location: loc.Name()}, nil
	case err != nil:
		return Outcome{}, locationErr(loc, opInsert, err)
	}

	stored, found, err := loc.Find(ctx, email)
	if err != nil {
		return Outcome{}, locationErr(loc, opVerify, err)
	}
	if !found {
		return Outcome{}, locationErr(loc, opVerify, models.ErrVerificationFailed)
	}
	return Outcome{Subscriber: withOrigin(stored, loc), Location: loc.Name(), Created: true}, nil
}

// Exists reports whether any location holds email. Location errors count as "not found".
func (s *Store) Exists(ctx context.Context, email string) bool {
	_, ok := s.Lookup(ctx, email)
	return ok
}

// Lookup returns the first stored record for email in candidate order.
func (s *Store) Lookup(ctx context.Context, email string) (models.Subscriber, bool) {
	for _, loc := range s.locations {
		sub, found, err := loc.Find(ctx, email)
		if err != nil {
			s.logger.Debug().Err(err).Str("location", loc.Name()).
				Msg("lookup failed, treating location as not holding the email")
			continue
		}
		if found {
			return withOrigin(sub, loc), true
		}
	}
	return models.Subscriber{}, false
}

// ListAll returns the union of every location's records, grouped by location in
// candidate order and newest first inside each group. It fails only when every
// location failed.
func (s *Store) ListAll(ctx context.Context) ([]models.Subscriber, error) {
	var (
		all  []models.Subscriber
		errs []error
	)

	for _, loc := range s.locations {
		subs, err := loc.List(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("location", loc.Name()).Msg("failed to list location")
			errs = append(errs, locationErr(loc, opList, err))
			continue
		}

		group := make([]models.Subscriber, 0, len(subs))
		for _, sub := range subs {
			group = append(group, withOrigin(sub, loc))
		}
		slices.SortStableFunc(group, newestFirst)
		all = append(all, group...)
	}

	if len(s.locations) > 0 && len(errs) == len(s.locations) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// Close closes every location and returns the joined errors.
func (s *Store) Close() error {
	var errs []error
	for _, loc := range s.locations {
		if err := loc.Close(); err != nil {
			errs = append(errs, locationErr(loc, "close", err))
		}
	}
	return errors.Join(errs...)
}

func withOrigin(sub models.Subscriber, loc Location) models.Subscriber {
	sub.Origin = loc.Name()
	return sub
}

func newestFirst(a, b models.Subscriber) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}
