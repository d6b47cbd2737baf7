// Package schema describes the meal-plan response as JSON Schema so model
// backends can be asked for it directly.
package schema

import "github.com/modelcontextprotocol/go-sdk/jsonschema"

// Tool is a function declaration offered to a model.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// SubmitMealPlanTool is the name of the tool a model calls with its final plan.
const SubmitMealPlanTool = "submit_meal_plan"

// SubmitMealPlan is the tool a model is forced to call with its final answer.
func SubmitMealPlan() Tool {
	return Tool{
		Name:        SubmitMealPlanTool,
		Description: "Submit the finished 6-day meal plan with its shopping list and nutrition summary.",
		InputSchema: MealPlanResponse(),
	}
}

// MealPlanResponse is the schema of a complete agent answer.
func MealPlanResponse() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meal_plan":         mealPlan(),
			"shopping_list":     shoppingList(),
			"nutrition_summary": nutritionSummary(),
		},
		Required: []string{"meal_plan", "shopping_list", "nutrition_summary"},
	}
}

func mealPlan() *jsonschema.Schema {
	minDay := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"mode": {Type: "string", Description: "Regular Balanced or Protein-Focused"},
			"days": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"day":          {Type: "string"},
						"day_number":   {Type: "integer", Minimum: &minDay},
						"breakfast":    meal(),
						"lunch":        meal(),
						"daily_totals": macros("calories", "protein_grams", "carbs_grams", "fats_grams"),
					},
					Required: []string{"day", "day_number", "breakfast", "lunch", "daily_totals"},
				},
			},
			"weekly_averages": macros("avg_daily_calories", "avg_daily_protein", "avg_daily_carbs", "avg_daily_fats"),
		},
		Required: []string{"mode", "days", "weekly_averages"},
	}
}

func meal() *jsonschema.Schema {
	zero := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":            {Type: "string"},
			"cuisine_type":    {Type: "string", Description: "South Indian, North Indian or Continental"},
			"source_type":     {Type: "string", Description: "Instagram or YouTube"},
			"source_name":     {Type: "string"},
			"source_url":      {Type: "string"},
			"calories":        {Type: "number", Minimum: &zero},
			"protein_grams":   {Type: "number", Minimum: &zero},
			"carbs_grams":     {Type: "number", Minimum: &zero},
			"fats_grams":      {Type: "number", Minimum: &zero},
			"key_ingredients": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"description":     {Type: "string"},
		},
		Required: []string{"name", "cuisine_type", "calories", "protein_grams", "carbs_grams", "fats_grams"},
	}
}

func shoppingList() *jsonschema.Schema {
	zero := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"categories": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"category_name": {Type: "string"},
						"items": {
							Type: "array",
							Items: &jsonschema.Schema{
								Type: "object",
								Properties: map[string]*jsonschema.Schema{
									"name":     {Type: "string"},
									"quantity": {Type: "string"},
									"used_in":  {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
								},
								Required: []string{"name", "quantity"},
							},
						},
					},
					Required: []string{"category_name", "items"},
				},
			},
			"total_items": {Type: "integer", Minimum: &zero},
		},
		Required: []string{"categories", "total_items"},
	}
}

func nutritionSummary() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"weekly_totals":  macros("total_calories", "total_protein", "total_carbs", "total_fats"),
			"daily_averages": macros("avg_calories", "avg_protein", "avg_carbs", "avg_fats"),
			"macro_split":    macros("protein_percentage", "carbs_percentage", "fats_percentage"),
		},
		Required: []string{"weekly_totals", "daily_averages", "macro_split"},
	}
}

// macros is an object of required non-negative numbers.
func macros(names ...string) *jsonschema.Schema {
	zero := 0.0
	props := make(map[string]*jsonschema.Schema, len(names))
	for _, n := range names {
		props[n] = &jsonschema.Schema{Type: "number", Minimum: &zero}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   names,
	}
}
