// Package bedrock asks an Amazon Bedrock model for a meal plan through the
// Converse API, forcing it to answer with the submit_meal_plan tool.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"mealcraft"
	"mealcraft/prompt"
	"mealcraft/schema"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Controls the maximum number of tokens the model can generate in one response.
	// Six days of meals plus a categorized shopping list and the nutrition summary
	// run well past 1k tokens, so 8k leaves room for the whole tool input.
	// Lower it only if plans are trimmed to fewer days.
	defaultMaxTokens = 8192

	// Controls the randomness of the model's output. A little above the usual tool-use value so
	// recipes vary between runs while the JSON stays structured.
	defaultTemperature = 0.4

	// Controls the diversity of the model's output. Low top_p keeps outputs more focused and less random, which is better for tool use, JSON, and structured outputs.
	defaultTopP = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Client struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
	tool schema.Tool
}

func NewClient(brc bedrockRuntimeClient, opts LLMOptions) *Client {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Client{
		brc:  brc,
		opts: opts,
		tool: schema.SubmitMealPlan(),
	}
}

// Call runs one Converse round. The tool input, when present, is returned as
// an object result; otherwise the assistant text is returned as a string result.
func (c *Client) Call(ctx context.Context, userPrompt string, agentID string) (mealcraft.AgentResult, error) {
	slog.Info("AGENT_CLIENT: Invoking Bedrock", "model_id", c.opts.ModelID, "agent_id", agentID, "prompt_len", len(userPrompt))

	spec, err := buildToolSpec(c.tool)
	if err != nil {
		return mealcraft.AgentResult{}, err
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: prompt.System()},
		},
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: userPrompt}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
		ToolConfig: &types.ToolConfiguration{
			Tools: []types.Tool{&types.ToolMemberToolSpec{Value: spec}},
			ToolChoice: &types.ToolChoiceMemberTool{
				Value: types.SpecificToolChoice{Name: aws.String(c.tool.Name)},
			},
		},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("AGENT_CLIENT: Bedrock invoke failed", "error", err)
		return mealcraft.AgentResult{}, fmt.Errorf("failed to invoke bedrock: %w", err)
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	if out.Usage != nil {
		attrs = append(attrs, "input_tokens", aws.ToInt32(out.Usage.InputTokens), "output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	slog.Info("AGENT_CLIENT: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case "max_tokens":
		slog.Warn("AGENT_CLIENT: Model hit MaxTokens limit; consider increasing MAX_TOKENS")
		return mealcraft.AgentResult{Error: "model hit MaxTokens limit before finishing the meal plan"}, nil

	case "guardrail_intervened", "content_filtered", "safety":
		slog.Warn("AGENT_CLIENT: Model response blocked by Bedrock safety filters")
		return mealcraft.AgentResult{Error: "model response blocked by Bedrock safety filters"}, nil
	}

	if input, ok, err := toolInputFromOutput(out, c.tool.Name); err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to parse tool input: %w", err)
	} else if ok {
		slog.Info("AGENT_CLIENT: Extracted tool input", "tool", c.tool.Name, "input_len", len(input))
		return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: input}}, nil
	}

	text := textFromOutput(out)
	if text == "" {
		return mealcraft.AgentResult{Error: "model returned no content"}, nil
	}
	result, err := json.Marshal(text)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to encode text result: %w", err)
	}
	slog.Info("AGENT_CLIENT: Extracted final text", "text_len", len(text))
	return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: result}}, nil
}

// buildToolSpec constructs a ToolSpecification for a tool. The schema goes
// through JSON first so the document encoder sees plain maps.
func buildToolSpec(t schema.Tool) (types.ToolSpecification, error) {
	schemaJSON, err := json.Marshal(t.InputSchema)
	if err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to marshal tool schema for %s: %w", t.Name, err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to unmarshal tool schema for %s: %w", t.Name, err)
	}

	return types.ToolSpecification{
		Name:        aws.String(t.Name),
		Description: aws.String(t.Description),
		InputSchema: &types.ToolInputSchemaMemberJson{
			Value: document.NewLazyDocument(schemaMap),
		},
	}, nil
}

// toolInputFromOutput returns the JSON input of the first tool use named name.
func toolInputFromOutput(out *bedrockruntime.ConverseOutput, name string) (json.RawMessage, bool, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return nil, false, nil
	}

	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok || tu == nil || aws.ToString(tu.Value.Name) != name || tu.Value.Input == nil {
			continue
		}

		var input map[string]any
		if err := tu.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
			return nil, false, err
		}
		data, err := json.Marshal(input)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}
	return nil, false, nil
}

// textFromOutput returns the last text block that looks like a JSON object,
// or all text blocks joined with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}

	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '{' && s[len(s)-1] == '}' {
			return s
		}
	}
	return strings.Join(texts, "\n")
}
