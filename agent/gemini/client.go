// Package gemini asks Google Gemini for a meal plan in JSON mode.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mealcraft"
	"mealcraft/prompt"
)

const defaultModelID = "gemini-1.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Client struct {
	gen    contentGenerator
	closer func() error
}

type ClientOpts struct {
	APIKey      string
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// NewClient creates a Gemini-backed agent. Close releases the connection.
func NewClient(ctx context.Context, opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini backend requires GEMINI_API_KEY")
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.ModelID)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System())}}
	model.ResponseMIMEType = "application/json"
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.TopP > 0 {
		model.SetTopP(opts.TopP)
	}

	return &Client{gen: model, closer: client.Close}, nil
}

// Call sends the prompt and returns the model text as a string result.
func (c *Client) Call(ctx context.Context, userPrompt string, agentID string) (mealcraft.AgentResult, error) {
	slog.Info("AGENT_CLIENT: Invoking Gemini", "agent_id", agentID, "prompt_len", len(userPrompt))

	resp, err := c.gen.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			slog.Warn("AGENT_CLIENT: Gemini response blocked", "error", err)
			return mealcraft.AgentResult{Error: "model response blocked by Gemini safety filters"}, nil
		}
		return mealcraft.AgentResult{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return mealcraft.AgentResult{Error: "model returned no content"}, nil
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		slog.Warn("AGENT_CLIENT: Gemini hit the output token limit; consider increasing MAX_TOKENS")
		return mealcraft.AgentResult{Error: "model hit MaxTokens limit before finishing the meal plan"}, nil
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return mealcraft.AgentResult{Error: "model returned no content"}, nil
	}

	result, err := json.Marshal(b.String())
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to encode text result: %w", err)
	}
	slog.Info("AGENT_CLIENT: Gemini responded", "finish_reason", cand.FinishReason.String(), "text_len", b.Len())
	return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: result}}, nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
