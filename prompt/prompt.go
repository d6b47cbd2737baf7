// Package prompt builds the text sent to the meal-planning agents.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects the nutritional emphasis of a plan.
type Mode string

const (
	Regular Mode = "regular"
	Protein Mode = "protein"
)

// Label is the human-readable name used in prompts and the UI.
func (m Mode) Label() string {
	if m == Protein {
		return "Protein-Focused"
	}
	return "Regular Balanced"
}

// ParseMode accepts the mode name or its label, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "regular", "balanced", "regular balanced":
		return Regular, nil
	case "protein", "protein-focused":
		return Protein, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Build returns the user message for a generation request. Ingredients are
// joined in the order given.
func Build(modeLabel string, ingredients []string) string {
	var b strings.Builder
	b.WriteString("Generate a 6-day ")
	b.WriteString(modeLabel)
	b.WriteString(" meal plan for Indian vegetarian/eggetarian cuisine.")
	if len(ingredients) > 0 {
		b.WriteString(" Include these ingredients: ")
		b.WriteString(strings.Join(ingredients, ", "))
		b.WriteString(".")
	}
	b.WriteString(" Focus on South Indian breakfast recipes with variety from North Indian and Continental dishes for lunch.")
	b.WriteString(" Provide complete nutritional breakdown and shopping list.")
	return b.String()
}

// System returns the system instruction for agents that talk to a model
// directly.
func System() string {
	return systemPrompt
}

const systemPrompt = `You are a meal-planning coordinator for Indian vegetarian and eggetarian households.

GOAL:
Plan six days (Monday to Saturday) of breakfast and lunch, with nutrition per meal, daily totals, weekly averages and a consolidated shopping list.

FINAL OUTPUT FORMAT:
Return ONLY one JSON object. No explanations, no markdown, no code fences. Start with { and end with }.

JSON Schema:
{
  "meal_plan": {
    "mode": string,                          // "Regular Balanced" or "Protein-Focused"
    "days": [                                // exactly 6 elements
      {
        "day": string,                       // "Monday" .. "Saturday"
        "day_number": integer,               // 1..6
        "breakfast": Meal,
        "lunch": Meal,
        "daily_totals": { "calories": number, "protein_grams": number, "carbs_grams": number, "fats_grams": number }
      }
    ],
    "weekly_averages": {
      "avg_daily_calories": number, "avg_daily_protein": number,
      "avg_daily_carbs": number, "avg_daily_fats": number
    }
  },
  "shopping_list": {
    "categories": [
      {
        "category_name": string,             // e.g. "Vegetables", "Dairy & Eggs"
        "items": [ { "name": string, "quantity": string, "used_in": [string] } ]
      }
    ],
    "total_items": integer
  },
  "nutrition_summary": {
    "weekly_totals": { "total_calories": number, "total_protein": number, "total_carbs": number, "total_fats": number },
    "daily_averages": { "avg_calories": number, "avg_protein": number, "avg_carbs": number, "avg_fats": number },
    "macro_split": { "protein_percentage": number, "carbs_percentage": number, "fats_percentage": number }
  }
}

Meal:
{
  "name": string,
  "cuisine_type": string,                    // "South Indian", "North Indian" or "Continental"
  "source_type": string,                     // "Instagram" or "YouTube"
  "source_name": string,                     // the creator's handle or channel
  "source_url": string,
  "calories": number, "protein_grams": number, "carbs_grams": number, "fats_grams": number,
  "key_ingredients": [string],
  "description": string                      // one sentence
}

CRITICAL RULES:
- Breakfasts are South Indian. Lunches vary between North Indian and Continental.
- Include every ingredient the user asks for at least once.
- For Protein-Focused plans, prefer paneer, eggs, lentils, tofu and curd.
- Every shopping item lists the recipes it is used in.
- Percentages in macro_split are whole numbers and should add up to about 100.
- The JSON must be valid UTF-8 with no trailing commas.
`
