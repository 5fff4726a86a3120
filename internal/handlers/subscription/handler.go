package subscription

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/subscriptions"
)

const (
	timeoutDuration = 10 * time.Second

	msgSubscribed = "Thank you for subscribing! We'll notify you when Vibe Trading launches."
	msgFailed     = "Failed to subscribe. Please try again later."
)

type subscriber interface {
	Subscribe(ctx context.Context, email string) (subscriptions.Result, error)
}

type Handler struct {
	Service subscriber
	logger  zerolog.Logger
}

func NewHandler(svc subscriber, logger zerolog.Logger) *Handler {
	return &Handler{
		Service: svc,
		logger:  logger.With().Str("component", "SubscriptionHandler").Logger(),
	}
}

// Subscribe
// @Summary Join the launch list
// @Description Stores an email address so the owner is told when Vibe Trading launches. Repeating a subscription is not an error.
// @Tags subscription
// @Accept json
// @Produce json
// @Param request body models.UserSubData true "Email to subscribe"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var userData models.UserSubData
	if err := c.ShouldBindJSON(&userData); err != nil {
		h.logger.Debug().Err(err).Msg("unreadable subscribe body, treating as empty")
		userData = models.UserSubData{}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	_, err := h.Service.Subscribe(ctx, userData.Email)
	if err != nil {
		if errors.Is(err, models.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, models.MessageResponse{Message: err.Error()})
			return
		}
		h.logger.Error().Err(err).Str("email", userData.Email).Msg("failed to add email")
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: msgFailed})
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: msgSubscribed})
}
