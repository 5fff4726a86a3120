package agent

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/subscriptions"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/validator"
)

const (
	SubscribeToolName        = "subscribe_email"
	subscribeToolDescription = "Subscribe a user with their email to receive updates about the Vibe Trading launch"
	emailParamDescription    = "The user's email address for subscription"

	MsgSubscribed        = "Thank you for subscribing! We'll notify you when Vibe Trading launches."
	MsgAlreadySubscribed = "You're already subscribed! We'll notify you when Vibe Trading launches."
	MsgSubscribeFailed   = "Failed to subscribe. Please try again later."
)

type subscriber interface {
	Subscribe(ctx context.Context, email string) (subscriptions.Result, error)
	Exists(ctx context.Context, email string) bool
}

// ToolResult is what the subscribe tool reports back to the model.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (r ToolResult) asMap() map[string]any {
	return map[string]any{"success": r.Success, "message": r.Message}
}

type SubscribeTool struct {
	svc    subscriber
	logger zerolog.Logger
}

func NewSubscribeTool(svc subscriber, logger zerolog.Logger) *SubscribeTool {
	return &SubscribeTool{
		svc:    svc,
		logger: logger.With().Str("component", "SubscribeTool").Logger(),
	}
}

func (t *SubscribeTool) Run(ctx context.Context, email string) ToolResult {
	if ok, reason := validator.ValidateEmail(email); !ok {
		return ToolResult{Message: "Cannot subscribe: " + reason}
	}

	if t.svc.Exists(ctx, email) {
		return ToolResult{Success: true, Message: MsgAlreadySubscribed}
	}

	res, err := t.svc.Subscribe(ctx, email)
	switch {
	case errors.Is(err, models.ErrInvalidEmail):
		return ToolResult{Message: "Cannot subscribe: " + err.Error()}
	case err != nil:
		t.logger.Error().Err(err).Str("email", email).Msg("subscribe tool failed")
		return ToolResult{Message: MsgSubscribeFailed}
	case !res.Created:
		return ToolResult{Success: true, Message: MsgAlreadySubscribed}
	}
	return ToolResult{Success: true, Message: MsgSubscribed}
}
