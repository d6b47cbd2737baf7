// Package mock is a deterministic agent that answers with a canned plan in
// one of the envelope shapes real agents have been seen to produce. It is a
// learning aid for exercising the normalizer without a model behind it.
package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"mealcraft"
	"mealcraft/sample"
	"mealcraft/storage"
)

// Shape selects how the plan is wrapped in the result envelope.
type Shape string

const (
	ShapeDirect     Shape = "direct"
	ShapeJSONString Shape = "json-string"
	ShapeFenced     Shape = "fenced"
	ShapeWrapper    Shape = "wrapper"
	ShapeRaw        Shape = "raw"
	ShapeFailure    Shape = "failure"
	ShapeGarbage    Shape = "garbage"
)

var Shapes = []Shape{ShapeDirect, ShapeJSONString, ShapeFenced, ShapeWrapper, ShapeRaw, ShapeFailure, ShapeGarbage}

const (
	FailureMessage = "Agent is busy. Please try again later."
	GarbageText    = "I'm sorry, I couldn't put a meal plan together this time."
)

func ParseShape(s string) (Shape, error) {
	for _, shape := range Shapes {
		if string(shape) == s {
			return shape, nil
		}
	}
	return "", fmt.Errorf("unknown mock shape %q", s)
}

type Client struct {
	shape  Shape
	source storage.Source
}

// NewClient returns a mock agent. A nil source answers with the built-in
// sample plan.
func NewClient(shape Shape, source storage.Source) *Client {
	return &Client{shape: shape, source: source}
}

func (c *Client) Call(ctx context.Context, prompt string, agentID string) (mealcraft.AgentResult, error) {
	slog.Info("AGENT_CLIENT: Mock invoked", "shape", c.shape, "agent_id", agentID, "prompt_len", len(prompt))

	if c.shape == ShapeFailure {
		return mealcraft.AgentResult{Error: FailureMessage}, nil
	}
	if c.shape == ShapeGarbage {
		return stringResult(GarbageText)
	}

	payload, err := c.payload(ctx)
	if err != nil {
		return mealcraft.AgentResult{}, err
	}

	switch c.shape {
	case ShapeDirect:
		return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: payload}}, nil

	case ShapeJSONString:
		return stringResult(string(payload))

	case ShapeFenced:
		return stringResult(fence(payload))

	case ShapeWrapper:
		wrapped, err := json.Marshal(map[string]any{
			"status": "completed",
			"output": json.RawMessage(payload),
		})
		if err != nil {
			return mealcraft.AgentResult{}, fmt.Errorf("failed to wrap payload: %w", err)
		}
		return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: wrapped}}, nil

	case ShapeRaw:
		return mealcraft.AgentResult{Success: true, RawResponse: fence(payload)}, nil
	}

	return mealcraft.AgentResult{}, fmt.Errorf("unknown mock shape %q", c.shape)
}

func (c *Client) payload(ctx context.Context) ([]byte, error) {
	data := sample.JSON()
	if c.source != nil {
		var err error
		if data, err = c.source.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load mock payload: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("mock payload is not valid JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func fence(payload []byte) string {
	return "Here is your meal plan:\n```json\n" + string(payload) + "\n```\nEnjoy!"
}

func stringResult(s string) (mealcraft.AgentResult, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to encode result: %w", err)
	}
	return mealcraft.AgentResult{Success: true, Response: &mealcraft.AgentResponse{Result: data}}, nil
}
