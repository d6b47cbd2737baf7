package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"mealcraft"
	"mealcraft/agent"
	"mealcraft/controller"
	"mealcraft/nutrition"
	"mealcraft/planner"
	"mealcraft/prompt"
	"mealcraft/render"
	"mealcraft/sample"
	"mealcraft/server"
	"mealcraft/shopping"
	"mealcraft/storage"
	"mealcraft/tui"
)

const usage = `usage: mealcraft <command> [flags]

commands:
  generate   generate a meal plan and print it
  sample     print the sample meal plan
  serve      run the HTTP API
  tui        run the interactive terminal UI
`

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// app holds everything the commands share.
type app struct {
	cfg       mealcraft.Config
	planner   *planner.Service
	clipboard mealcraft.Clipboard
	cleanup   []func() error
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("SETUP: Failed to load .env file", "error", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("RESULT: Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "sample":
		fmt.Println(render.Plan(sample.Plan(), render.Options{ShowShoppingList: true}))
		return nil
	case "tui":
		// slog's default handler writes through the log package, which would
		// draw over the alternate screen.
		f, err := tea.LogToFile("mealcraft-tui.log", "")
		if err != nil {
			return fmt.Errorf("failed to open tui log: %w", err)
		}
		defer f.Close()
	case "generate", "serve":
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	_, _, otelShutdown, err := mealcraft.InitOtel(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	switch cmd {
	case "generate":
		return a.generate(ctx, args)
	case "serve":
		return server.Serve(ctx, &server.Handlers{Planner: a.planner, Clipboard: a.clipboard}, a.cfg.Server)
	default:
		ctl := controller.New(a.planner, a.clipboard, a.cfg.UI)
		defer ctl.Close()
		return tui.Run(ctx, ctl, a.cfg.UI.CopiedResetDelay)
	}
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := mealcraft.LoadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	client, closeAgent, err := agent.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent client: %w", err)
	}
	a.cleanup = append(a.cleanup, closeAgent)

	logger, closeLog, err := mealcraft.NewGenerationLogger(cfg.Log, cfg.Agent.ManagerAgentID)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create generation logger: %w", err)
	}
	a.cleanup = append(a.cleanup, closeLog)
	a.planner = planner.NewService(client, logger, cfg.Agent.ManagerAgentID)

	var s3Client storage.S3API
	if cfg.Export.Sink == "s3" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client = s3.NewFromConfig(awsCfg)
	}
	clip, err := shopping.NewClipboard(cfg.Export, s3Client)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create shopping list sink: %w", err)
	}
	a.clipboard = clip

	slog.Info("SETUP: Ready", "backend", cfg.Agent.Backend, "sink", cfg.Export.Sink, "generation_log", cfg.Log.Generations)
	return a, nil
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			slog.Error("SETUP: Cleanup failed", "error", err)
		}
	}
}

func (a *app) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	modeFlag := fs.String("mode", "regular", "meal plan mode: regular or protein")
	var ingredients stringList
	fs.Var(&ingredients, "ingredient", "ingredient to include (repeatable)")
	copyList := fs.Bool("copy", false, "send the shopping list to the configured sink")
	dump := fs.Bool("dump", false, "dump the normalized plan")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := prompt.ParseMode(*modeFlag)
	if err != nil {
		return err
	}

	// Feed the controller so the CLI applies the same ingredient rules as the TUI.
	ctl := controller.New(a.planner, a.clipboard, a.cfg.UI)
	defer ctl.Close()
	ctl.SetMode(mode)
	for _, ing := range ingredients {
		ctl.AddIngredient(ing)
	}

	if err := ctl.Generate(ctx); err != nil {
		return errors.New(ctl.Error())
	}

	plan := ctl.Plan()
	if *dump {
		mealcraft.Dump(plan)
	}
	fmt.Println(render.Plan(plan, render.Options{ShowShoppingList: true}))
	fmt.Println(ctl.Status())
	slog.Info("RESULT: Meal plan ready", "days", plan.MealPlan.Days.Len(), "total_items", nutrition.TotalItems(plan.ShoppingList))

	if *copyList && !ctl.CopyShoppingList(ctx) {
		return errors.New("failed to copy shopping list")
	}
	return nil
}
