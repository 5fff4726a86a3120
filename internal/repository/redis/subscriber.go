package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const pingTimeout = 2 * time.Second

type record struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriberRepository keeps subscribers in a redis hash keyed by email, with
// ids taken from a counter key.
type SubscriberRepository struct {
	name   string
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

func NewSubscriberRepository(
	name string,
	client *redis.Client,
	prefix string,
	logger zerolog.Logger,
) *SubscriberRepository {
	return &SubscriberRepository{
		name:   name,
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "RedisLocation").Str("location", name).Logger(),
	}
}

func (r *SubscriberRepository) Name() string { return r.name }

func (r *SubscriberRepository) seqKey() string { return r.prefix + ":seq" }

func (r *SubscriberRepository) hashKey() string { return r.prefix + ":byemail" }

func (r *SubscriberRepository) Prepare(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *SubscriberRepository) Find(ctx context.Context, email string) (models.Subscriber, bool, error) {
	data, err := r.client.HGet(ctx, r.hashKey(), email).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Subscriber{}, false, nil
	}
	if err != nil {
		return models.Subscriber{}, false, fmt.Errorf("hget %s: %w", email, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Subscriber{}, false, fmt.Errorf("decode %s: %w", email, err)
	}
	return rec.toModel(), true, nil
}

func (r *SubscriberRepository) Insert(ctx context.Context, email string, createdAt time.Time) error {
	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("next id: %w", err)
	}

	data, err := json.Marshal(record{ID: id, Email: email, CreatedAt: createdAt.UTC()})
	if err != nil {
		return err
	}

	set, err := r.client.HSetNX(ctx, r.hashKey(), email, data).Result()
	if err != nil {
		return fmt.Errorf("hsetnx %s: %w", email, err)
	}
	if !set {
		return models.ErrDuplicateEmail
	}
	r.logger.Debug().Str("email", email).Int64("id", id).Msg("subscriber stored")
	return nil
}

func (r *SubscriberRepository) List(ctx context.Context) ([]models.Subscriber, error) {
	values, err := r.client.HVals(ctx, r.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("hvals: %w", err)
	}

	subs := make([]models.Subscriber, 0, len(values))
	for _, v := range values {
		var rec record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			r.logger.Warn().Err(err).Msg("skipping undecodable subscriber record")
			continue
		}
		subs = append(subs, rec.toModel())
	}
	return subs, nil
}

func (r *SubscriberRepository) Close() error {
	return r.client.Close()
}

func (rec record) toModel() models.Subscriber {
	return models.Subscriber{ID: rec.ID, Email: rec.Email, CreatedAt: rec.CreatedAt}
}
