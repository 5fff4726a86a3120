package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const (
	timeoutDuration = 30 * time.Second

	msgRequired = "Message is required"
	msgApology  = "I'm sorry, I encountered an error. Please try again in a moment."
)

type agent interface {
	Name() string
	Process(ctx context.Context, message string) (models.ChatResponse, error)
}

type Handler struct {
	agent  agent
	logger zerolog.Logger
	m      *metrics.Metrics
}

func NewHandler(a agent, logger zerolog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		agent:  a,
		logger: logger.With().Str("component", "ChatHandler").Logger(),
		m:      m,
	}
}

// Chat
// @Summary Talk to the Vibe Trading assistant
// @Description Sends one chat message to the assistant, which may subscribe an email it finds in the message.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Chat message"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} models.MessageResponse
// @Router /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.ChatRequest{}
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: msgRequired})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	resp, err := h.agent.Process(ctx, req.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("agent", h.agent.Name()).Msg("agent failed")
		h.m.ChatMessages.WithLabelValues(h.agent.Name(), "error").Inc()
		h.m.TechnicalErrors.WithLabelValues("agent_failed", "medium").Inc()
		c.JSON(http.StatusOK, models.ChatResponse{Message: msgApology, ToolsUsed: []string{}})
		return
	}
	if resp.ToolsUsed == nil {
		resp.ToolsUsed = []string{}
	}

	h.m.ChatMessages.WithLabelValues(h.agent.Name(), "ok").Inc()
	c.JSON(http.StatusOK, resp)
}
