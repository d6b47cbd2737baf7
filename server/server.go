// Package server exposes the planner over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mealcraft"
	"mealcraft/nutrition"
	"mealcraft/planner"
	"mealcraft/prompt"
	"mealcraft/sample"
	"mealcraft/shopping"
)

// maxBodyBytes bounds request bodies; a shopping list is a few KB.
const maxBodyBytes = 1 << 20

type generator interface {
	Generate(ctx context.Context, req planner.Request) (*planner.Generation, error)
}

// Handlers holds the dependencies of the API handlers. Clipboard may be nil,
// in which case sharing is unavailable.
type Handlers struct {
	Planner   generator
	Clipboard mealcraft.Clipboard
}

type mealPlanRequest struct {
	Mode        string   `json:"mode"`
	Ingredients []string `json:"ingredients"`
	AgentID     string   `json:"agent_id,omitempty"`
}

type mealPlanResponse struct {
	Plan         *mealcraft.MealPlanResponse `json:"plan"`
	Strategy     string                      `json:"strategy"`
	TotalItems   int                         `json:"total_items"`
	MacroBar     []nutrition.Segment         `json:"macro_bar"`
	ShoppingText string                      `json:"shopping_text"`
}

type shoppingListRequest struct {
	ShoppingList *mealcraft.ShoppingList `json:"shopping_list"`
}

// NewRouter wires the middleware stack and routes.
func NewRouter(h *Handlers, cfg mealcraft.ServerConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(Logger)
	r.Use(Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/agents", listAgents)
		r.Get("/sample", getSample)
		r.Post("/meal-plans", h.CreateMealPlan)
		r.Route("/shopping-list", func(r chi.Router) {
			r.Post("/export", exportShoppingList)
			r.Post("/share", h.ShareShoppingList)
		})
	})

	return r
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, h *Handlers, cfg mealcraft.ServerConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(h, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("SERVER: Listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("SERVER: Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func listAgents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, mealcraft.Agents)
}

func getSample(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, planResponse(sample.Plan(), ""))
}

func (h *Handlers) CreateMealPlan(w http.ResponseWriter, r *http.Request) {
	var req mealPlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := prompt.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gen, err := h.Planner.Generate(r.Context(), planner.Request{
		Mode:        mode,
		Ingredients: cleanIngredients(req.Ingredients),
		AgentID:     req.AgentID,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, planner.ErrUnrecognized) {
			status = http.StatusUnprocessableEntity
		}
		respondError(w, status, planner.Message(err))
		return
	}

	respondJSON(w, http.StatusOK, planResponse(gen.Plan, string(gen.Strategy)))
}

func exportShoppingList(w http.ResponseWriter, r *http.Request) {
	var req shoppingListRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(shopping.ExportText(req.ShoppingList)))
}

func (h *Handlers) ShareShoppingList(w http.ResponseWriter, r *http.Request) {
	if h.Clipboard == nil {
		respondError(w, http.StatusServiceUnavailable, "shopping list sharing is not configured")
		return
	}
	var req shoppingListRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Clipboard.Write(r.Context(), shopping.ExportText(req.ShoppingList)); err != nil {
		slog.Error("SERVER: Failed to share shopping list", "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func planResponse(plan *mealcraft.MealPlanResponse, strategy string) mealPlanResponse {
	return mealPlanResponse{
		Plan:         plan,
		Strategy:     strategy,
		TotalItems:   nutrition.TotalItems(plan.ShoppingList),
		MacroBar:     nutrition.MacroBar(nutrition.MacroSplitOf(plan)),
		ShoppingText: shopping.ExportText(plan.ShoppingList),
	}
}

// cleanIngredients applies the same rules as the interactive ingredient list:
// trimmed, non-empty, first occurrence wins.
func cleanIngredients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("SERVER: Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
