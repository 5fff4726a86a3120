package agent

import (
	"context"
	"regexp"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const scriptedName = "scripted"

var emailInText = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Scripted answers without a language model: it subscribes the first email
// address found in the message and otherwise replies with the pitch.
type Scripted struct {
	tool *SubscribeTool
}

func NewScripted(tool *SubscribeTool) *Scripted {
	return &Scripted{tool: tool}
}

func (s *Scripted) Name() string { return scriptedName }

func (s *Scripted) Process(ctx context.Context, message string) (models.ChatResponse, error) {
	email := emailInText.FindString(message)
	if email == "" {
		return models.ChatResponse{Message: Pitch, ToolsUsed: []string{}}, nil
	}

	res := s.tool.Run(ctx, email)
	return models.ChatResponse{Message: res.Message, ToolsUsed: []string{SubscribeToolName}}, nil
}
