// Package nutrition derives the per-day, weekly and macro views shown for a plan.
//
// Figures are passed through from the agent's payload with missing values
// read as zero. Nothing is recomputed: a daily total that disagrees with the
// sum of its meals is shown as reported.
package nutrition

import "mealcraft"

// Macros is a fully defaulted macro view.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_grams"`
	Carbs    float64 `json:"carbs_grams"`
	Fats     float64 `json:"fats_grams"`
}

// Summary holds the four headline figures of a week or an average day.
type Summary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Days returns the plan's days, or none when the plan or its days are missing.
func Days(resp *mealcraft.MealPlanResponse) []mealcraft.DayPlan {
	if resp == nil {
		return nil
	}
	return resp.MealPlan.Days.Items
}

// DayTotals returns the agent-reported daily totals of d.
func DayTotals(d mealcraft.DayPlan) Macros {
	if d.DailyTotals == nil {
		return Macros{}
	}
	return Macros{
		Calories: d.DailyTotals.Calories.Float(),
		Protein:  d.DailyTotals.ProteinGrams.Float(),
		Carbs:    d.DailyTotals.CarbsGrams.Float(),
		Fats:     d.DailyTotals.FatsGrams.Float(),
	}
}

func MealMacros(m *mealcraft.MealItem) Macros {
	if m == nil {
		return Macros{}
	}
	return Macros{
		Calories: m.Calories.Float(),
		Protein:  m.ProteinGrams.Float(),
		Carbs:    m.CarbsGrams.Float(),
		Fats:     m.FatsGrams.Float(),
	}
}

func WeeklyAverages(p mealcraft.MealPlan) Summary {
	w := p.WeeklyAverages
	if w == nil {
		return Summary{}
	}
	return Summary{
		Calories: w.AvgDailyCalories.Float(),
		Protein:  w.AvgDailyProtein.Float(),
		Carbs:    w.AvgDailyCarbs.Float(),
		Fats:     w.AvgDailyFats.Float(),
	}
}

func WeeklyTotals(n *mealcraft.NutritionSummary) Summary {
	if n == nil || n.WeeklyTotals == nil {
		return Summary{}
	}
	w := n.WeeklyTotals
	return Summary{
		Calories: w.TotalCalories.Float(),
		Protein:  w.TotalProtein.Float(),
		Carbs:    w.TotalCarbs.Float(),
		Fats:     w.TotalFats.Float(),
	}
}

func DailyAverages(n *mealcraft.NutritionSummary) Summary {
	if n == nil || n.DailyAverages == nil {
		return Summary{}
	}
	d := n.DailyAverages
	return Summary{
		Calories: d.AvgCalories.Float(),
		Protein:  d.AvgProtein.Float(),
		Carbs:    d.AvgCarbs.Float(),
		Fats:     d.AvgFats.Float(),
	}
}

type Macro string

const (
	Protein Macro = "Protein"
	Carbs   Macro = "Carbs"
	Fats    Macro = "Fats"
)

// labelThreshold is the smallest percentage whose segment is wide enough for
// an inline label.
const labelThreshold = 10

// Segment is one slice of the macro bar. Width is a percentage of the bar.
type Segment struct {
	Macro     Macro   `json:"macro"`
	Width     float64 `json:"width"`
	ShowLabel bool    `json:"show_label"`
}

// MacroBar returns the protein, carbs and fats segments. Widths are the
// percentages exactly as reported, so the bar may under- or overfill when
// they do not add up to 100.
func MacroBar(split *mealcraft.MacroSplit) []Segment {
	var p, c, f float64
	if split != nil {
		p = split.ProteinPercentage.Float()
		c = split.CarbsPercentage.Float()
		f = split.FatsPercentage.Float()
	}
	return []Segment{
		{Macro: Protein, Width: p, ShowLabel: p > labelThreshold},
		{Macro: Carbs, Width: c, ShowLabel: c > labelThreshold},
		{Macro: Fats, Width: f, ShowLabel: f > labelThreshold},
	}
}

// MacroSplitOf returns the macro split of resp, if any.
func MacroSplitOf(resp *mealcraft.MealPlanResponse) *mealcraft.MacroSplit {
	if resp == nil || resp.NutritionSummary == nil {
		return nil
	}
	return resp.NutritionSummary.MacroSplit
}

// TotalItems prefers the count reported by the agent and only counts the
// items itself when none was reported.
func TotalItems(list *mealcraft.ShoppingList) int {
	if list == nil {
		return 0
	}
	if list.TotalItems.Valid {
		return list.TotalItems.Int()
	}
	return CountItems(list)
}

// CountItems counts the items across all categories.
func CountItems(list *mealcraft.ShoppingList) int {
	if list == nil {
		return 0
	}
	n := 0
	for _, c := range list.Categories.Items {
		n += c.Items.Len()
	}
	return n
}
