// Package agent builds the configured AgentClient.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"

	"mealcraft"
	"mealcraft/agent/bedrock"
	"mealcraft/agent/gemini"
	"mealcraft/agent/httpagent"
	"mealcraft/agent/mock"
	"mealcraft/agent/ollama"
	"mealcraft/storage"
)

const (
	BackendHTTP    = "http"
	BackendBedrock = "bedrock"
	BackendGemini  = "gemini"
	BackendOllama  = "ollama"
	BackendMock    = "mock"
)

// New returns the client selected by AGENT_BACKEND and a cleanup func that
// releases any connection it holds.
func New(ctx context.Context, cfg mealcraft.Config) (mealcraft.AgentClient, func() error, error) {
	noop := func() error { return nil }

	client, cleanup, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, noop, err
	}
	if cleanup == nil {
		cleanup = noop
	}

	slog.Info("SETUP: Agent backend ready", "backend", cfg.Agent.Backend, "instrumented", cfg.Agent.Instrumented)

	if cfg.Agent.Instrumented {
		client = NewInstrumented(client, otel.Tracer(mealcraft.TracerNameAgent), otel.Meter(mealcraft.MeterName))
	}
	return client, cleanup, nil
}

func newBackend(ctx context.Context, cfg mealcraft.Config) (mealcraft.AgentClient, func() error, error) {
	switch cfg.Agent.Backend {
	case "", BackendHTTP:
		c, err := httpagent.NewClient(httpagent.ClientOpts{
			Endpoint:   cfg.Agent.Endpoint,
			APIKey:     cfg.Agent.APIKey,
			HTTPClient: &http.Client{Timeout: cfg.Agent.Timeout},
		})
		return c, nil, err

	case BackendBedrock:
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
			ModelID:     cfg.Model.ModelID,
			MaxTokens:   cfg.Model.MaxTokens,
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
		}), nil, nil

	case BackendGemini:
		c, err := gemini.NewClient(ctx, gemini.ClientOpts{
			APIKey:      cfg.Model.GeminiAPIKey,
			ModelID:     cfg.Model.ModelID,
			MaxTokens:   cfg.Model.MaxTokens,
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case BackendOllama:
		c, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.Model.OllamaEndpoint,
			ModelID:      cfg.Model.ModelID,
			MaxTokens:    cfg.Model.MaxTokens,
			Temperature:  cfg.Model.Temperature,
			TopP:         cfg.Model.TopP,
			HTTPClient:   &http.Client{Timeout: cfg.Agent.Timeout},
		})
		return c, nil, err

	case BackendMock:
		shape, err := mock.ParseShape(cfg.Agent.MockShape)
		if err != nil {
			return nil, nil, err
		}
		source, err := mockSource(ctx, cfg.Agent)
		if err != nil {
			return nil, nil, err
		}
		return mock.NewClient(shape, source), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown agent backend %q", cfg.Agent.Backend)
}

// mockSource picks where the mock agent's payload comes from: S3, a local
// file, or nil for the built-in sample.
func mockSource(ctx context.Context, cfg mealcraft.AgentConfig) (storage.Source, error) {
	switch {
	case cfg.MockS3Bucket != "":
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3Object(s3.NewFromConfig(awsCfg), cfg.MockS3Bucket, cfg.MockS3Key), nil
	case cfg.MockPayloadPath != "":
		return storage.NewFileObject(cfg.MockPayloadPath), nil
	}
	return nil, nil
}
