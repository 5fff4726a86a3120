package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const (
	geminiName    = "gemini"
	maxToolRounds = 3
)

var errNoContent = errors.New("no content generated")

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini drives a Gemini chat with the subscribe tool declared as a function.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	tool   *SubscribeTool
	logger zerolog.Logger
}

func NewGemini(ctx context.Context, apiKey, modelName string, tool *SubscribeTool, logger zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}
	model.Tools = []*genai.Tool{subscribeDeclaration()}

	return &Gemini{
		client: client,
		model:  model,
		tool:   tool,
		logger: logger.With().Str("component", "GeminiAgent").Logger(),
	}, nil
}

func subscribeDeclaration() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        SubscribeToolName,
			Description: subscribeToolDescription,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"email": {Type: genai.TypeString, Description: emailParamDescription},
				},
				Required: []string{"email"},
			},
		}},
	}
}

func (g *Gemini) Name() string { return geminiName }

func (g *Gemini) Process(ctx context.Context, message string) (models.ChatResponse, error) {
	return converse(ctx, g.model.StartChat(), g.tool, g.logger, message)
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func converse(
	ctx context.Context,
	session chatSession,
	tool *SubscribeTool,
	logger zerolog.Logger,
	message string,
) (models.ChatResponse, error) {
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return models.ChatResponse{}, err
	}

	var last ToolResult
	toolsUsed := []string{}
	for range maxToolRounds {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			var part genai.Part
			part, last = runCall(ctx, tool, logger, call)
			replies = append(replies, part)
			toolsUsed = append(toolsUsed, call.Name)
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return models.ChatResponse{}, err
		}
	}

	text, err := responseText(resp)
	if err != nil {
		// the tool outcome stands in for the missing text
		if len(toolsUsed) > 0 && last.Message != "" {
			logger.Warn().Err(err).Msg("model gave no text after tool calls, replying with tool result")
			return models.ChatResponse{Message: last.Message, ToolsUsed: toolsUsed}, nil
		}
		return models.ChatResponse{}, err
	}
	return models.ChatResponse{Message: text, ToolsUsed: toolsUsed}, nil
}

func runCall(
	ctx context.Context,
	tool *SubscribeTool,
	logger zerolog.Logger,
	call genai.FunctionCall,
) (genai.Part, ToolResult) {
	if call.Name != SubscribeToolName {
		logger.Warn().Str("function", call.Name).Msg("model called unknown function")
		res := ToolResult{Message: "unknown function"}
		return genai.FunctionResponse{Name: call.Name, Response: res.asMap()}, ToolResult{}
	}

	email, _ := call.Args["email"].(string)
	res := tool.Run(ctx, strings.TrimSpace(email))
	return genai.FunctionResponse{Name: call.Name, Response: res.asMap()}, res
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0].FunctionCalls()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoContent
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", errNoContent
	}
	return b.String(), nil
}
