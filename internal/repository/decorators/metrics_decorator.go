package decorators

import (
	"context"
	"errors"
	"time"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

type MetricsDecorator struct {
	next location
	m    *metrics.Metrics
}

func NewMetricsDecorator(next location, m *metrics.Metrics) *MetricsDecorator {
	return &MetricsDecorator{next: next, m: m}
}

func (d *MetricsDecorator) Name() string { return d.next.Name() }

func (d *MetricsDecorator) Prepare(ctx context.Context) error {
	start := time.Now()
	err := d.next.Prepare(ctx)
	d.observe("prepare", start, err)
	return err
}

func (d *MetricsDecorator) Find(ctx context.Context, email string) (models.Subscriber, bool, error) {
	start := time.Now()
	sub, found, err := d.next.Find(ctx, email)
	d.observe("find", start, err)
	return sub, found, err
}

func (d *MetricsDecorator) Insert(ctx context.Context, email string, createdAt time.Time) error {
	start := time.Now()
	err := d.next.Insert(ctx, email, createdAt)
	if errors.Is(err, models.ErrDuplicateEmail) {
		d.observe("insert", start, nil)
		return err
	}
	d.observe("insert", start, err)
	return err
}

func (d *MetricsDecorator) List(ctx context.Context) ([]models.Subscriber, error) {
	start := time.Now()
	subs, err := d.next.List(ctx)
	d.observe("list", start, err)
	if err == nil {
		d.m.SubscribersByLocation.WithLabelValues(d.next.Name()).Set(float64(len(subs)))
	}
	return subs, err
}

func (d *MetricsDecorator) Close() error { return d.next.Close() }

func (d *MetricsDecorator) observe(op string, start time.Time, err error) {
	name := d.next.Name()
	d.m.StorageOpDuration.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
	if err != nil {
		d.m.StorageErrors.WithLabelValues(name, op).Inc()
	}
}
