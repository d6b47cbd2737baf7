// Package controller holds the state behind the meal planner screens: the
// request lifecycle, the user's inputs and the rotating progress message.
package controller

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mealcraft"
	"mealcraft/planner"
	"mealcraft/prompt"
	"mealcraft/sample"
	"mealcraft/shopping"
)

type State int

const (
	Idle State = iota
	Requesting
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Requesting:
		return "requesting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "idle"
}

type Mode = prompt.Mode

const (
	ModeRegular = prompt.Regular
	ModeProtein = prompt.Protein
)

// LoadingMessages rotate while a request is in flight.
var LoadingMessages = []string{
	"Researching recipes from Indian creators...",
	"Curating your personalized meal plan...",
	"Balancing nutrition across the week...",
	"Generating shopping list and nutrition data...",
}

const (
	defaultLoadingInterval  = 3500 * time.Millisecond
	defaultCopiedResetDelay = 2 * time.Second
)

// Generator produces plans. *planner.Service implements it.
type Generator interface {
	Generate(ctx context.Context, req planner.Request) (*planner.Generation, error)
	AgentID() string
}

type Controller struct {
	gen         Generator
	clipboard   mealcraft.Clipboard
	tracer      trace.Tracer
	interval    time.Duration
	copiedDelay time.Duration

	mu            sync.Mutex
	state         State
	mode          Mode
	ingredients   []string
	plan          *mealcraft.MealPlanResponse
	sample        *mealcraft.MealPlanResponse
	errMsg        string
	status        string
	activeAgentID string
	showSample    bool
	shoppingOpen  bool
	loadingIdx    int
	stopRotation  func()
	copied        bool
	copiedSeq     int
	copiedTimer   *time.Timer
}

// New returns an idle controller in regular mode. clipboard may be nil, in
// which case copying always fails.
func New(gen Generator, clipboard mealcraft.Clipboard, cfg mealcraft.UIConfig) *Controller {
	if cfg.LoadingInterval <= 0 {
		cfg.LoadingInterval = defaultLoadingInterval
	}
	if cfg.CopiedResetDelay <= 0 {
		cfg.CopiedResetDelay = defaultCopiedResetDelay
	}
	return &Controller{
		gen:         gen,
		clipboard:   clipboard,
		tracer:      otel.Tracer(mealcraft.TracerNameController),
		interval:    cfg.LoadingInterval,
		copiedDelay: cfg.CopiedResetDelay,
		mode:        ModeRegular,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready is false only while a request is in flight.
func (c *Controller) Ready() bool {
	return c.State() != Requesting
}

// CanGenerate tells the presentation layer whether to enable the trigger.
// Generate itself does not refuse a second call.
func (c *Controller) CanGenerate() bool {
	return c.Ready()
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

func (c *Controller) ToggleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeProtein {
		c.mode = ModeRegular
	} else {
		c.mode = ModeProtein
	}
	return c.mode
}

// AddIngredient appends the trimmed value unless it is empty or already
// present. Matching is exact, so "Paneer" and "paneer" are different.
func (c *Controller) AddIngredient(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.ingredients, s) {
		return false
	}
	c.ingredients = append(c.ingredients, s)
	return true
}

func (c *Controller) RemoveIngredient(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ingredients = slices.DeleteFunc(c.ingredients, func(i string) bool { return i == s })
}

// Ingredients returns a copy in insertion order.
func (c *Controller) Ingredients() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.ingredients)
}

// LoadingMessage is the current progress message, empty unless requesting.
func (c *Controller) LoadingMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Requesting {
		return ""
	}
	return LoadingMessages[c.loadingIdx]
}

func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Plan() *mealcraft.MealPlanResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}

func (c *Controller) ActiveAgentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeAgentID
}

func (c *Controller) ShowSample() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showSample
}

func (c *Controller) SetShowSample(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSample = on
}

func (c *Controller) ToggleSample() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSample = !c.showSample
	return c.showSample
}

// Display is the plan to render: the sample when it is switched on and
// nothing has been generated yet, otherwise the generated plan.
func (c *Controller) Display() *mealcraft.MealPlanResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayLocked()
}

func (c *Controller) displayLocked() *mealcraft.MealPlanResponse {
	if c.showSample && c.plan == nil {
		if c.sample == nil {
			c.sample = sample.Plan()
		}
		return c.sample
	}
	return c.plan
}

func (c *Controller) ShoppingListOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shoppingOpen
}

func (c *Controller) ToggleShoppingList() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shoppingOpen = !c.shoppingOpen
	return c.shoppingOpen
}

func (c *Controller) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}

// Generate requests a plan for the current mode and ingredients. The returned
// error is also reflected in Error(); a failed attempt keeps the previous plan.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	c.errMsg = ""
	c.status = ""
	c.activeAgentID = c.gen.AgentID()
	c.showSample = false
	c.enterRequestingLocked()
	req := planner.Request{
		Mode:        c.mode,
		Ingredients: slices.Clone(c.ingredients),
		AgentID:     c.activeAgentID,
	}
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "Controller.Generate", trace.WithAttributes(
		attribute.String("agent.id", req.AgentID),
		attribute.String("mode", string(req.Mode)),
		attribute.Int("ingredients.count", len(req.Ingredients)),
	))
	defer span.End()

	slog.Info("CONTROLLER: Generating meal plan", "agent_id", req.AgentID, "mode", req.Mode, "ingredients", req.Ingredients)
	gen, err := c.gen.Generate(ctx, req)

	c.leaveRequesting()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeAgentID = ""

	if err != nil {
		c.state = Failure
		c.errMsg = planner.Message(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, c.errMsg)
		slog.Warn("CONTROLLER: Generation failed", "error", c.errMsg)
		return err
	}

	c.state = Success
	c.plan = gen.Plan
	c.errMsg = ""
	c.status = planner.MessageSuccess
	span.SetAttributes(attribute.String("normalize.strategy", string(gen.Strategy)))
	span.SetStatus(codes.Ok, "")
	slog.Info("CONTROLLER: Meal plan ready", "strategy", gen.Strategy, "days", gen.Plan.MealPlan.Days.Len())
	return nil
}

func (c *Controller) enterRequestingLocked() {
	c.state = Requesting
	c.loadingIdx = 0
	if c.stopRotation != nil {
		// A second generate while one is in flight keeps the running ticker.
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go c.rotate(ctx, done)
	c.stopRotation = func() {
		cancel()
		<-done
	}
}

func (c *Controller) rotate(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state == Requesting {
				c.loadingIdx = (c.loadingIdx + 1) % len(LoadingMessages)
			}
			c.mu.Unlock()
		}
	}
}

// leaveRequesting stops the rotation task and waits for it. The lock must not
// be held: the task takes it on every tick.
func (c *Controller) leaveRequesting() {
	c.mu.Lock()
	stop := c.stopRotation
	c.stopRotation = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// CopyShoppingList writes the displayed plan's shopping list to the
// clipboard. Copied() turns true on success and resets after a delay.
func (c *Controller) CopyShoppingList(ctx context.Context) bool {
	c.mu.Lock()
	data := c.displayLocked()
	clip := c.clipboard
	c.mu.Unlock()

	if data == nil || data.ShoppingList == nil || clip == nil {
		return false
	}

	if err := clip.Write(ctx, shopping.ExportText(data.ShoppingList)); err != nil {
		slog.Warn("CONTROLLER: Failed to copy shopping list", "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.copied = true
	c.copiedSeq++
	seq := c.copiedSeq
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
	}
	c.copiedTimer = time.AfterFunc(c.copiedDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.copiedSeq == seq {
			c.copied = false
		}
	})
	return true
}

// Close stops background work. The controller stays readable afterwards.
func (c *Controller) Close() {
	c.leaveRequesting()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
		c.copiedTimer = nil
	}
}
