package mealcraft

import (
	"context"
	"encoding/json"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AgentClient sends a prompt to an agent and returns its response envelope.
// A non-nil error means the call itself failed (transport, SDK, decoding of
// the transport framing). Agent-level failures are reported with Success=false.
type AgentClient interface {
	Call(ctx context.Context, prompt string, agentID string) (AgentResult, error)
}

type Clipboard interface {
	Write(ctx context.Context, text string) error
}

// SlackClient posts a titled text snippet to a channel.
type SlackClient interface {
	PostSnippet(ctx context.Context, channel, title, body string) error
}

// AgentResult is the envelope returned by the agent service. The shape of
// Response.Result varies between calls and is resolved by the normalize package.
type AgentResult struct {
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	Response    *AgentResponse `json:"response,omitempty"`
	RawResponse string         `json:"raw_response,omitempty"`
}

type AgentResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
}

// MealPlanResponse is the normalized plan handed to the presentation layer.
type MealPlanResponse struct {
	MealPlan         MealPlan          `json:"meal_plan"`
	ShoppingList     *ShoppingList     `json:"shopping_list"`
	NutritionSummary *NutritionSummary `json:"nutrition_summary"`
}

func (r *MealPlanResponse) UnmarshalJSON(data []byte) error {
	type alias MealPlanResponse
	return decodeObject(data, (*alias)(r))
}

type MealPlan struct {
	Mode           Text            `json:"mode"`
	Days           List[DayPlan]   `json:"days"`
	WeeklyAverages *WeeklyAverages `json:"weekly_averages"`
}

func (p *MealPlan) UnmarshalJSON(data []byte) error {
	type alias MealPlan
	return decodeObject(data, (*alias)(p))
}

type DayPlan struct {
	Day         Text      `json:"day"`
	DayNumber   Number    `json:"day_number"`
	Breakfast   *MealItem `json:"breakfast"`
	Lunch       *MealItem `json:"lunch"`
	DailyTotals *Macros   `json:"daily_totals"`
}

func (d *DayPlan) UnmarshalJSON(data []byte) error {
	type alias DayPlan
	return decodeObject(data, (*alias)(d))
}

type MealItem struct {
	Name           Text       `json:"name"`
	CuisineType    Text       `json:"cuisine_type"`
	SourceType     Text       `json:"source_type"`
	SourceName     Text       `json:"source_name"`
	SourceURL      Text       `json:"source_url"`
	Calories       Number     `json:"calories"`
	ProteinGrams   Number     `json:"protein_grams"`
	CarbsGrams     Number     `json:"carbs_grams"`
	FatsGrams      Number     `json:"fats_grams"`
	KeyIngredients List[Text] `json:"key_ingredients"`
	Description    Text       `json:"description"`
}

func (m *MealItem) UnmarshalJSON(data []byte) error {
	type alias MealItem
	return decodeObject(data, (*alias)(m))
}

// Macros is shared by daily totals and per-meal views.
type Macros struct {
	Calories     Number `json:"calories"`
	ProteinGrams Number `json:"protein_grams"`
	CarbsGrams   Number `json:"carbs_grams"`
	FatsGrams    Number `json:"fats_grams"`
}

func (m *Macros) UnmarshalJSON(data []byte) error {
	type alias Macros
	return decodeObject(data, (*alias)(m))
}

type WeeklyAverages struct {
	AvgDailyCalories Number `json:"avg_daily_calories"`
	AvgDailyProtein  Number `json:"avg_daily_protein"`
	AvgDailyCarbs    Number `json:"avg_daily_carbs"`
	AvgDailyFats     Number `json:"avg_daily_fats"`
}

func (w *WeeklyAverages) UnmarshalJSON(data []byte) error {
	type alias WeeklyAverages
	return decodeObject(data, (*alias)(w))
}

type ShoppingList struct {
	Categories List[ShoppingCategory] `json:"categories"`
	TotalItems Number                 `json:"total_items"`
}

func (s *ShoppingList) UnmarshalJSON(data []byte) error {
	type alias ShoppingList
	return decodeObject(data, (*alias)(s))
}

type ShoppingCategory struct {
	CategoryName Text               `json:"category_name"`
	Items        List[ShoppingItem] `json:"items"`
}

func (c *ShoppingCategory) UnmarshalJSON(data []byte) error {
	type alias ShoppingCategory
	return decodeObject(data, (*alias)(c))
}

type ShoppingItem struct {
	Name     Text       `json:"name"`
	Quantity Text       `json:"quantity"`
	UsedIn   List[Text] `json:"used_in"`
}

func (i *ShoppingItem) UnmarshalJSON(data []byte) error {
	type alias ShoppingItem
	return decodeObject(data, (*alias)(i))
}

type NutritionSummary struct {
	WeeklyTotals  *WeeklyTotals  `json:"weekly_totals"`
	DailyAverages *DailyAverages `json:"daily_averages"`
	MacroSplit    *MacroSplit    `json:"macro_split"`
}

func (n *NutritionSummary) UnmarshalJSON(data []byte) error {
	type alias NutritionSummary
	return decodeObject(data, (*alias)(n))
}

type WeeklyTotals struct {
	TotalCalories Number `json:"total_calories"`
	TotalProtein  Number `json:"total_protein"`
	TotalCarbs    Number `json:"total_carbs"`
	TotalFats     Number `json:"total_fats"`
}

func (w *WeeklyTotals) UnmarshalJSON(data []byte) error {
	type alias WeeklyTotals
	return decodeObject(data, (*alias)(w))
}

type DailyAverages struct {
	AvgCalories Number `json:"avg_calories"`
	AvgProtein  Number `json:"avg_protein"`
	AvgCarbs    Number `json:"avg_carbs"`
	AvgFats     Number `json:"avg_fats"`
}

func (d *DailyAverages) UnmarshalJSON(data []byte) error {
	type alias DailyAverages
	return decodeObject(data, (*alias)(d))
}

type MacroSplit struct {
	ProteinPercentage Number `json:"protein_percentage"`
	CarbsPercentage   Number `json:"carbs_percentage"`
	FatsPercentage    Number `json:"fats_percentage"`
}

func (m *MacroSplit) UnmarshalJSON(data []byte) error {
	type alias MacroSplit
	return decodeObject(data, (*alias)(m))
}

// Agent describes one member of the agent team behind the planning service.
type Agent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Manager bool   `json:"manager"`
}

const ManagerAgentID = "6988bf3a6f6e7c67fe7e8b53"

var Agents = []Agent{
	{ID: ManagerAgentID, Name: "Meal Planning Coordinator", Role: "Orchestrates recipe research, curation and formatting", Manager: true},
	{ID: "6988bea74b8f2695557f93f0", Name: "Recipe Research Agent", Role: "Finds recipes from Indian food creators"},
	{ID: "6988bedc4b8f2695557f93f1", Name: "Meal Curator Agent", Role: "Balances the week and computes nutrition"},
	{ID: "6988bf0f941252c267af72b5", Name: "Output Formatter Agent", Role: "Builds the structured plan and shopping list"},
}

// AgentByID returns the roster entry for id.
func AgentByID(id string) (Agent, bool) {
	for _, a := range Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}
