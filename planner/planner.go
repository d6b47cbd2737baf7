// Package planner runs one meal plan generation: prompt, agent call and
// normalization, with every attempt recorded.
package planner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mealcraft"
	"mealcraft/normalize"
	"mealcraft/prompt"
)

// User-visible messages.
const (
	MessageSuccess      = "Meal plan generated successfully!"
	MessageFailed       = "Failed to generate meal plan. Please try again."
	MessageUnrecognized = "Could not parse meal plan from response. Please try again."
	MessageUnexpected   = "An unexpected error occurred."
)

// ErrUnrecognized is returned when the agent succeeded but no strategy could
// find a plan in its answer.
var ErrUnrecognized = errors.New("could not parse meal plan from response")

// AgentError is a failed agent call. Message is what the user sees.
type AgentError struct {
	Message string
	Err     error
}

func (e *AgentError) Error() string { return e.Message }

func (e *AgentError) Unwrap() error { return e.Err }

// Message maps an error from Generate to the text shown to the user.
func Message(err error) string {
	var agentErr *AgentError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &agentErr):
		return agentErr.Message
	case errors.Is(err, ErrUnrecognized):
		return MessageUnrecognized
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageUnexpected
}

type Request struct {
	Mode        prompt.Mode
	Ingredients []string
	// AgentID defaults to the manager agent.
	AgentID string
}

type Generation struct {
	Plan     *mealcraft.MealPlanResponse
	Strategy normalize.Strategy
	Prompt   string
}

type Service struct {
	agent   mealcraft.AgentClient
	logger  mealcraft.GenerationLogger
	agentID string
}

func NewService(agent mealcraft.AgentClient, logger mealcraft.GenerationLogger, defaultAgentID string) *Service {
	if logger == nil {
		logger = mealcraft.NewNoOpGenerationLogger()
	}
	if defaultAgentID == "" {
		defaultAgentID = mealcraft.ManagerAgentID
	}
	return &Service{agent: agent, logger: logger, agentID: defaultAgentID}
}

// AgentID is the agent used when a request does not name one.
func (s *Service) AgentID() string { return s.agentID }

// Generate asks the agent for a plan. Errors are *AgentError or ErrUnrecognized.
func (s *Service) Generate(ctx context.Context, req Request) (*Generation, error) {
	agentID := req.AgentID
	if agentID == "" {
		agentID = s.agentID
	}
	text := prompt.Build(req.Mode.Label(), req.Ingredients)

	entry := mealcraft.GenerationLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		AgentID:   agentID,
		Mode:      req.Mode.Label(),
		Prompt:    text,
	}
	slog.Info("PLANNER: Generating meal plan", "id", entry.ID, "agent_id", agentID, "mode", entry.Mode, "ingredients", len(req.Ingredients))

	gen, err := s.generate(ctx, text, agentID)

	entry.DurationMS = time.Since(entry.Timestamp).Milliseconds()
	if err != nil {
		entry.Error = Message(err)
		slog.Warn("PLANNER: Generation failed", "id", entry.ID, "error", err)
	} else {
		entry.Success = true
		entry.Strategy = string(gen.Strategy)
		entry.Days = gen.Plan.MealPlan.Days.Len()
		slog.Info("PLANNER: Generation succeeded", "id", entry.ID, "strategy", gen.Strategy, "days", entry.Days)
	}
	if lerr := s.logger.LogGeneration(entry); lerr != nil {
		slog.Error("PLANNER: Failed to log generation", "id", entry.ID, "error", lerr)
	}

	return gen, err
}

func (s *Service) generate(ctx context.Context, text, agentID string) (*Generation, error) {
	result, err := s.agent.Call(ctx, text, agentID)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MessageUnexpected
		}
		return nil, &AgentError{Message: msg, Err: err}
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = MessageFailed
		}
		return nil, &AgentError{Message: msg}
	}

	plan, strategy, ok := normalize.Match(result)
	if !ok {
		return nil, ErrUnrecognized
	}
	return &Generation{Plan: plan, Strategy: strategy, Prompt: text}, nil
}
