// Package ollama asks a local Ollama model for the meal plan through its
// native chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"mealcraft"
	"mealcraft/prompt"
	"mealcraft/schema"
)

const defaultModelID = "llama3.2"

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

type Client struct {
	endpoint     string
	model        string
	systemPrompt string
	httpClient   mealcraft.HTTPClient
	tool         wireTool
	options      options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	MaxTokens    int32
	Temperature  float32
	TopP         float32
	HTTPClient   mealcraft.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseEndpoint == "" {
		return nil, fmt.Errorf("ollama endpoint is required")
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	tool, err := buildTool(schema.SubmitMealPlan())
	if err != nil {
		return nil, err
	}

	o := options{
		Temperature:   0.2,
		TopP:          0.9,
		RepeatPenalty: 1.05,
		NumCtx:        16384,
	}
	if opts.Temperature > 0 {
		o.Temperature = float64(opts.Temperature)
	}
	if opts.TopP > 0 {
		o.TopP = float64(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		o.NumPredict = int(opts.MaxTokens)
	}

	return &Client{
		model:        opts.ModelID,
		systemPrompt: prompt.System(),
		httpClient:   opts.HTTPClient,
		endpoint:     strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		tool:         tool,
		options:      o,
	}, nil
}

type wireToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type wireResponse struct {
	Message    wireMessage `json:"message"`
	DoneReason string      `json:"done_reason"`
}

// Call sends the prompt to the Ollama chat API. A submit_meal_plan tool call
// becomes a direct-object result; plain content becomes a string result.
func (c *Client) Call(ctx context.Context, text string, agentID string) (mealcraft.AgentResult, error) {
	slog.Info("AGENT_CLIENT: Ollama invoked", "model", c.model, "prompt_len", len(text))

	reqBytes, err := json.Marshal(wireRequest{
		Model: c.model,
		Messages: []wireMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: text},
		},
		Tools:   []wireTool{c.tool},
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to invoke ollama: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return mealcraft.AgentResult{Error: fmt.Sprintf("ollama request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))}, nil
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("AGENT_CLIENT: Ollama decode failed, returning raw", "error", err)
		return mealcraft.AgentResult{Success: true, RawResponse: string(body)}, nil
	}

	if wr.DoneReason == "length" {
		return mealcraft.AgentResult{Error: "model hit the context limit before finishing the meal plan"}, nil
	}

	for _, call := range wr.Message.ToolCalls {
		if call.Function.Name == schema.SubmitMealPlanTool && len(call.Function.Arguments) > 0 {
			return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: call.Function.Arguments}}, nil
		}
	}

	content := strings.TrimSpace(wr.Message.Content)
	if content == "" {
		return mealcraft.AgentResult{Error: "model returned no content"}, nil
	}
	result, err := json.Marshal(content)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to encode ollama content: %w", err)
	}
	return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: result}}, nil
}

func buildTool(t schema.Tool) (wireTool, error) {
	schemaJSON, err := json.Marshal(t.InputSchema)
	if err != nil {
		return wireTool{}, fmt.Errorf("failed to marshal tool schema for %s: %w", t.Name, err)
	}

	var params map[string]any
	if err := json.Unmarshal(schemaJSON, &params); err != nil {
		return wireTool{}, fmt.Errorf("failed to unmarshal tool schema for %s: %w", t.Name, err)
	}

	return wireTool{
		Type: "function",
		Function: wireFunction{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		},
	}, nil
}
