// Package httpagent calls a hosted agent service over HTTP.
package httpagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"mealcraft"
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient mealcraft.HTTPClient
	newSession func() string
}

type ClientOpts struct {
	Endpoint   string
	APIKey     string
	HTTPClient mealcraft.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("invalid agent endpoint")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Client{
		endpoint:   opts.Endpoint,
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		newSession: uuid.NewString,
	}, nil
}

type wireRequest struct {
	Message   string `json:"message"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
}

// Call posts the prompt to the agent service. The response body is passed
// through untouched when it is not a result envelope.
func (c *Client) Call(ctx context.Context, prompt string, agentID string) (mealcraft.AgentResult, error) {
	session := c.newSession()
	slog.Info("AGENT_CLIENT: Calling agent", "agent_id", agentID, "session_id", session, "prompt_len", len(prompt))

	reqBytes, err := json.Marshal(wireRequest{Message: prompt, AgentID: agentID, SessionID: session})
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to create agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to call agent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return mealcraft.AgentResult{}, fmt.Errorf("failed to read agent response: %w", err)
	}

	result, isEnvelope := decodeEnvelope(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("AGENT_CLIENT: Agent returned error status", "status", resp.Status, "body_len", len(body))
		if !isEnvelope || result.Error == "" {
			result = mealcraft.AgentResult{Error: fmt.Sprintf("agent request failed: %s", resp.Status)}
		}
		result.Success = false
		return result, nil
	}

	if !isEnvelope {
		slog.Warn("AGENT_CLIENT: Response is not an envelope, returning raw", "body_len", len(body))
		return mealcraft.AgentResult{Success: true, RawResponse: string(body)}, nil
	}

	slog.Info("AGENT_CLIENT: Agent responded", "success", result.Success, "has_response", result.Response != nil)
	return result, nil
}

// decodeEnvelope reports whether body is an object carrying a success flag.
// Fields are decoded one at a time so a single mistyped field does not turn a
// real envelope into a raw response.
func decodeEnvelope(body []byte) (mealcraft.AgentResult, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return mealcraft.AgentResult{}, false
	}
	if _, ok := fields["success"]; !ok {
		return mealcraft.AgentResult{}, false
	}

	var result mealcraft.AgentResult
	// A success flag that is not a boolean counts as a failure.
	_ = json.Unmarshal(fields["success"], &result.Success)
	result.Error = lenientString(fields["error"])
	result.RawResponse = lenientString(fields["raw_response"])

	var response map[string]json.RawMessage
	if err := json.Unmarshal(fields["response"], &response); err == nil && response != nil {
		result.Response = &mealcraft.AgentResponse{Result: response["result"]}
	}
	return result, true
}

// lenientString returns a JSON string's value, or the compact JSON text of any
// other non-null value.
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil || compact.String() == "null" {
		return ""
	}
	return compact.String()
}
