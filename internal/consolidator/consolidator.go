package consolidator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
)

const (
	jobName         = "consolidate"
	timeoutDuration = time.Minute
)

// Report summarizes one consolidation pass.
type Report struct {
	Counts map[string]int
	Copied int
	Failed int
}

// Consolidator periodically copies subscribers that only live in fallback
// locations into the primary one. Fallback copies are left in place.
type Consolidator struct {
	locations []store.Location
	copy      bool
	schedule  string
	logger    zerolog.Logger
	m         *metrics.Metrics
	cron      *cron.Cron
	cancel    context.CancelFunc
}

func New(locations []store.Location, copyToPrimary bool, schedule string, logger zerolog.Logger, m *metrics.Metrics) *Consolidator {
	return &Consolidator{
		locations: locations,
		copy:      copyToPrimary,
		schedule:  schedule,
		logger:    logger.With().Str("component", "Consolidator").Logger(),
		m:         m,
		cron:      cron.New(),
		cancel:    func() {},
	}
}

// Start schedules RunOnce on the configured cron schedule.
func (c *Consolidator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	_, err := c.cron.AddFunc(c.schedule, func() {
		c.m.CronJob(jobName, func() {
			runCtx, runCancel := context.WithTimeout(ctx, timeoutDuration)
			defer runCancel()
			if _, err := c.RunOnce(runCtx); err != nil {
				c.logger.Error().Err(err).Msg("consolidation run failed")
			}
		})
	})
	if err != nil {
		cancel()
		c.m.TechnicalErrors.WithLabelValues("cron_schedule_error", "critical").Inc()
		return fmt.Errorf("schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	c.logger.Info().Str("schedule", c.schedule).Bool("copy", c.copy).Msg("consolidator started")
	return nil
}

// Stop cancels the running pass and waits for it to return.
func (c *Consolidator) Stop() {
	c.cancel()
	<-c.cron.Stop().Done()
	c.logger.Info().Msg("consolidator stopped")
}

// RunOnce counts every location and, when copying is enabled, inserts
// fallback-only subscribers into the primary with their original created_at.
func (c *Consolidator) RunOnce(ctx context.Context) (Report, error) {
	report := Report{Counts: make(map[string]int, len(c.locations))}
	if len(c.locations) == 0 {
		return report, nil
	}

	listed := make([][]models.Subscriber, len(c.locations))
	var errs []error
	for i, loc := range c.locations {
		subs, err := loc.List(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Str("location", loc.Name()).Msg("failed to list location")
			errs = append(errs, fmt.Errorf("%s: %w", loc.Name(), err))
			continue
		}
		listed[i] = subs
		report.Counts[loc.Name()] = len(subs)
		c.m.SubscribersByLocation.WithLabelValues(loc.Name()).Set(float64(len(subs)))
	}

	if !c.copy || len(c.locations) < 2 {
		return report, errors.Join(errs...)
	}

	primary := c.locations[0]
	if _, ok := report.Counts[primary.Name()]; !ok {
		return report, errors.Join(errs...)
	}

	pending := fallbackOnly(listed)
	if len(pending) == 0 {
		return report, errors.Join(errs...)
	}

	if err := primary.Prepare(ctx); err != nil {
		c.logger.Debug().Err(err).Msg("primary still unavailable, nothing consolidated")
		return report, errors.Join(append(errs, fmt.Errorf("%s: %w", primary.Name(), err))...)
	}

	for _, sub := range pending {
		err := primary.Insert(ctx, sub.Email, sub.CreatedAt)
		switch {
		case err == nil:
			report.Copied++
		case errors.Is(err, models.ErrDuplicateEmail):
		default:
			report.Failed++
			c.logger.Warn().Err(err).Str("email", sub.Email).Msg("failed to copy subscriber to primary")
		}
	}

	if report.Copied > 0 {
		c.m.ConsolidatedTotal.Add(float64(report.Copied))
		report.Counts[primary.Name()] += report.Copied
		c.m.SubscribersByLocation.WithLabelValues(primary.Name()).Set(float64(report.Counts[primary.Name()]))
	}
	c.logger.Info().Int("copied", report.Copied).Int("failed", report.Failed).Msg("consolidation finished")
	return report, errors.Join(errs...)
}

// fallbackOnly returns records from listed[1:] whose email is absent from
// listed[0], first occurrence in candidate order wins. The result is ordered
// oldest first so primary ids follow created_at.
func fallbackOnly(listed [][]models.Subscriber) []models.Subscriber {
	seen := make(map[string]struct{}, len(listed[0]))
	for _, sub := range listed[0] {
		seen[sub.Email] = struct{}{}
	}

	var out []models.Subscriber
	for _, group := range listed[1:] {
		for _, sub := range group {
			if _, ok := seen[sub.Email]; ok {
				continue
			}
			seen[sub.Email] = struct{}{}
			out = append(out, sub)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Subscriber) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}
