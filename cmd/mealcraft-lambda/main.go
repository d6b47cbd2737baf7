package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"mealcraft"
	"mealcraft/agent"
	"mealcraft/nutrition"
	"mealcraft/planner"
	"mealcraft/prompt"
	"mealcraft/shopping"
)

type Params struct {
	Mode        string   `json:"mode"`
	Ingredients []string `json:"ingredients"`
}

type Results struct {
	Plan         *mealcraft.MealPlanResponse `json:"plan"`
	ShoppingText string                      `json:"shopping_text"`
	TotalItems   int                         `json:"total_items"`
}

func main() {
	ctx := context.Background()

	cfg, err := mealcraft.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	client, closeAgent, err := agent.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create agent client: %s", err)
	}
	defer closeAgent() // nolint: errcheck

	svc := planner.NewService(client, mealcraft.NewStdoutGenerationLogger(), cfg.Agent.ManagerAgentID)

	fn := func(ctx context.Context, params Params) (Results, error) {
		_, _, otelShutdown, err := mealcraft.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		mode, err := prompt.ParseMode(params.Mode)
		if err != nil {
			return Results{}, err
		}

		gen, err := svc.Generate(ctx, planner.Request{Mode: mode, Ingredients: params.Ingredients})
		if err != nil {
			slog.Error("RESULT: Error generating meal plan", "error", err)
			return Results{}, errors.New(planner.Message(err))
		}

		return Results{
			Plan:         gen.Plan,
			ShoppingText: shopping.ExportText(gen.Plan.ShoppingList),
			TotalItems:   nutrition.TotalItems(gen.Plan.ShoppingList),
		}, nil
	}

	lambda.Start(fn)
}
