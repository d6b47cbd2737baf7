package agent

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"mealcraft"
)

// Instrumented wraps an AgentClient with a span per call plus call, failure
// and latency metrics.
type Instrumented struct {
	next   mealcraft.AgentClient
	tracer trace.Tracer

	calls    metric.Int64Counter
	errors   metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	size     metric.Int64Histogram
}

func NewInstrumented(next mealcraft.AgentClient, tracer trace.Tracer, meter metric.Meter) *Instrumented {
	calls, _ := meter.Int64Counter("agent_calls_total",
		metric.WithDescription("Total number of agent calls started"))
	errs, _ := meter.Int64Counter("agent_call_errors_total",
		metric.WithDescription("Total number of agent calls that failed in transport"))
	failures, _ := meter.Int64Counter("agent_failures_total",
		metric.WithDescription("Total number of agent calls answered with success=false"))
	duration, _ := meter.Float64Histogram("agent_call_duration_seconds",
		metric.WithDescription("Time taken to receive a response from the agent in seconds"))
	size, _ := meter.Int64Histogram("agent_response_size_bytes",
		metric.WithDescription("Size of the agent result payload in bytes"))

	return &Instrumented{
		next:     next,
		tracer:   tracer,
		calls:    calls,
		errors:   errs,
		failures: failures,
		duration: duration,
		size:     size,
	}
}

func (i *Instrumented) Call(ctx context.Context, prompt string, agentID string) (mealcraft.AgentResult, error) {
	ctx, span := i.tracer.Start(ctx, "Agent.Call", trace.WithAttributes(
		attribute.String("agent.id", agentID),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("agent.id", agentID))
	i.calls.Add(ctx, 1, attrs)

	start := time.Now()
	result, err := i.next.Call(ctx, prompt, agentID)
	i.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		i.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "agent call failed")
		slog.Error("AGENT_CLIENT: Call failed", "agent_id", agentID, "error", err)
		return result, err
	}

	var payload int
	if result.Response != nil {
		payload = len(result.Response.Result)
	}
	payload += len(result.RawResponse)
	i.size.Record(ctx, int64(payload), attrs)

	span.SetAttributes(
		attribute.Bool("result.success", result.Success),
		attribute.Bool("result.has_response", result.Response != nil),
		attribute.Int("result.raw_response.length", len(result.RawResponse)),
	)

	if !result.Success {
		i.failures.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, result.Error)
		return result, nil
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}
