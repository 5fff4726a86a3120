package decorators

import (
	"context"
	"time"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

type location interface {
	Name() string
	Prepare(ctx context.Context) error
	Find(ctx context.Context, email string) (models.Subscriber, bool, error)
	Insert(ctx context.Context, email string, createdAt time.Time) error
	List(ctx context.Context) ([]models.Subscriber, error)
	Close() error
}
