package admin

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const timeoutDuration = 15 * time.Second

type lister interface {
	List(ctx context.Context) ([]models.Subscriber, error)
}

type Handler struct {
	Service lister
	logger  zerolog.Logger
}

func NewHandler(svc lister, logger zerolog.Logger) *Handler {
	return &Handler{
		Service: svc,
		logger:  logger.With().Str("component", "AdminHandler").Logger(),
	}
}

// Subscribers
// @Summary List subscribers
// @Description Every stored subscriber from every storage location, tagged with the location it came from.
// @Description total counts records, unique counts distinct email addresses.
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Success 200 {object} models.SubscribersResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/admin/subscribers [get]
func (h *Handler) Subscribers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	subs, err := h.Service.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("error in get_subscribers")
		c.JSON(http.StatusInternalServerError, models.MessageResponse{
			Message: "Error retrieving subscribers",
		})
		return
	}
	if subs == nil {
		subs = []models.Subscriber{}
	}

	c.JSON(http.StatusOK, models.SubscribersResponse{
		Total:       len(subs),
		Unique:      len(uniqueEmails(subs)),
		Subscribers: subs,
	})
}

// SubscribersText
// @Summary List subscriber emails as text
// @Description Newline separated email addresses, each listed once in the order of the JSON listing.
// @Tags admin
// @Produce plain
// @Security BasicAuth
// @Success 200 {string} string
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /api/admin/subscribers.txt [get]
func (h *Handler) SubscribersText(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	subs, err := h.Service.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("error retrieving subscribers")
		c.String(http.StatusInternalServerError, "Error retrieving subscribers")
		return
	}

	c.String(http.StatusOK, strings.Join(uniqueEmails(subs), "\n"))
}

// uniqueEmails keeps the first occurrence of each address. A subscriber copied
// into the primary by consolidation also stays in its fallback location.
func uniqueEmails(subs []models.Subscriber) []string {
	seen := make(map[string]struct{}, len(subs))
	emails := make([]string, 0, len(subs))
	for _, s := range subs {
		if _, ok := seen[s.Email]; ok {
			continue
		}
		seen[s.Email] = struct{}{}
		emails = append(emails, s.Email)
	}
	return emails
}
