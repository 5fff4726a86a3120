package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

// SubscriberRepository is an in-process location. Failure fields let callers
// simulate an unwritable or broken location.
type SubscriberRepository struct {
	name string

	mu      sync.Mutex
	ready   bool
	nextID  int64
	byEmail map[string]models.Subscriber

	PrepareErr error
	FindErr    error
	InsertErr  error
	ListErr    error
	// DropInserts acknowledges inserts without storing them.
	DropInserts bool
}

func NewSubscriberRepository(name string) *SubscriberRepository {
	return &SubscriberRepository{
		name:    name,
		byEmail: make(map[string]models.Subscriber),
	}
}

func (r *SubscriberRepository) Name() string { return r.name }

func (r *SubscriberRepository) Prepare(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PrepareErr != nil {
		return r.PrepareErr
	}
	r.ready = true
	return nil
}

func (r *SubscriberRepository) Find(_ context.Context, email string) (models.Subscriber, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return models.Subscriber{}, false, r.FindErr
	}
	sub, ok := r.byEmail[email]
	return sub, ok, nil
}

func (r *SubscriberRepository) Insert(_ context.Context, email string, createdAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return r.InsertErr
	}
	if !r.ready {
		return models.ErrStorageUnavailable
	}
	if _, ok := r.byEmail[email]; ok {
		return models.ErrDuplicateEmail
	}
	if r.DropInserts {
		return nil
	}
	r.nextID++
	r.byEmail[email] = models.Subscriber{ID: r.nextID, Email: email, CreatedAt: createdAt}
	return nil
}

func (r *SubscriberRepository) List(_ context.Context) ([]models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	subs := make([]models.Subscriber, 0, len(r.byEmail))
	for _, sub := range r.byEmail {
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *SubscriberRepository) Close() error { return nil }

// Len is the number of stored records.
func (r *SubscriberRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}
