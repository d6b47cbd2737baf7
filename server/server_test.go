package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealcraft"
	"mealcraft/agent/mock"
	"mealcraft/planner"
	"mealcraft/shopping"
)

type agentFunc func(ctx context.Context, prompt, agentID string) (mealcraft.AgentResult, error)

func (f agentFunc) Call(ctx context.Context, prompt, agentID string) (mealcraft.AgentResult, error) {
	return f(ctx, prompt, agentID)
}

type memClipboard struct {
	text string
	err  error
}

func (c *memClipboard) Write(ctx context.Context, text string) error {
	c.text = text
	return c.err
}

func newTestServer(t *testing.T, agent mealcraft.AgentClient, clip mealcraft.Clipboard) *httptest.Server {
	t.Helper()
	h := &Handlers{Planner: planner.NewService(agent, nil, ""), Clipboard: clip}
	srv := httptest.NewServer(NewRouter(h, mealcraft.ServerConfig{}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestHealthAndAgents(t *testing.T) {
	srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/agents")
	require.NoError(t, err)
	defer resp.Body.Close()
	var agents []mealcraft.Agent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&agents))
	require.Len(t, agents, len(mealcraft.Agents))
	assert.True(t, agents[0].Manager)
}

func TestGetSample(t *testing.T) {
	srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), nil)

	resp, err := http.Get(srv.URL + "/api/sample")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body mealPlanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 6, body.Plan.MealPlan.Days.Len())
	assert.Equal(t, 43, body.TotalItems)
	require.Len(t, body.MacroBar, 3)
	assert.Equal(t, 21.0, body.MacroBar[0].Width)
	assert.True(t, strings.HasPrefix(body.ShoppingText, shopping.Title+"\n\n"))
}

func TestCreateMealPlan(t *testing.T) {
	var gotPrompt string
	agent := agentFunc(func(ctx context.Context, prompt, agentID string) (mealcraft.AgentResult, error) {
		gotPrompt = prompt
		return mock.NewClient(mock.ShapeFenced, nil).Call(ctx, prompt, agentID)
	})
	srv := newTestServer(t, agent, nil)

	resp := post(t, srv.URL+"/api/meal-plans", `{"mode": "protein", "ingredients": [" paneer ", "paneer", "", "eggs"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body mealPlanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fenced-block", body.Strategy)
	assert.Equal(t, 6, body.Plan.MealPlan.Days.Len())
	assert.Equal(t, 43, body.TotalItems)
	assert.Contains(t, gotPrompt, "Protein-Focused")
	assert.Contains(t, gotPrompt, "Include these ingredients: paneer, eggs.")
}

func TestCreateMealPlanErrors(t *testing.T) {
	tests := []struct {
		name       string
		agent      mealcraft.AgentClient
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "agent reports failure",
			agent:      mock.NewClient(mock.ShapeFailure, nil),
			body:       `{"mode": "regular"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  mock.FailureMessage,
		},
		{
			name: "transport error without text",
			agent: agentFunc(func(context.Context, string, string) (mealcraft.AgentResult, error) {
				return mealcraft.AgentResult{}, errors.New("")
			}),
			body:       `{"mode": "regular"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  planner.MessageUnexpected,
		},
		{
			name:       "unrecognized response",
			agent:      mock.NewClient(mock.ShapeGarbage, nil),
			body:       `{"mode": "regular"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  planner.MessageUnrecognized,
		},
		{
			name:       "unknown mode",
			agent:      mock.NewClient(mock.ShapeDirect, nil),
			body:       `{"mode": "keto"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			agent:      mock.NewClient(mock.ShapeDirect, nil),
			body:       `{"mode":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.agent, nil)
			resp := post(t, srv.URL+"/api/meal-plans", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			msg := decodeError(t, resp)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

const listBody = `{"shopping_list": {"categories": [{"category_name": "Dairy", "items": [{"name": "Paneer", "quantity": "400 g", "used_in": ["Palak Paneer"]}]}]}}`

func TestExportShoppingList(t *testing.T) {
	srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), nil)

	resp := post(t, srv.URL+"/api/shopping-list/export", listBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))

	var b bytes.Buffer
	_, err := b.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, shopping.Title+"\n\n--- Dairy ---\n  Paneer - 400 g (used in: Palak Paneer)\n", b.String())
}

func TestShareShoppingList(t *testing.T) {
	t.Run("writes to clipboard", func(t *testing.T) {
		clip := &memClipboard{}
		srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), clip)

		resp := post(t, srv.URL+"/api/shopping-list/share", listBody)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Contains(t, clip.text, "--- Dairy ---")
	})

	t.Run("clipboard failure", func(t *testing.T) {
		clip := &memClipboard{err: errors.New("sink down")}
		srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), clip)

		resp := post(t, srv.URL+"/api/shopping-list/share", listBody)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), nil)

		resp := post(t, srv.URL+"/api/shopping-list/share", listBody)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, mock.NewClient(mock.ShapeDirect, nil), nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/meal-plans", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCleanIngredients(t *testing.T) {
	assert.Equal(t, []string{"paneer", "Paneer", "dal"}, cleanIngredients([]string{" paneer", "Paneer", "paneer ", "  ", "dal"}))
	assert.Empty(t, cleanIngredients(nil))
}
