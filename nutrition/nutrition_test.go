package nutrition

import (
	"testing"

	"mealcraft"
	"mealcraft/sample"

	"github.com/stretchr/testify/assert"
)

func split(p, c, f float64) *mealcraft.MacroSplit {
	return &mealcraft.MacroSplit{
		ProteinPercentage: mealcraft.NumberOf(p),
		CarbsPercentage:   mealcraft.NumberOf(c),
		FatsPercentage:    mealcraft.NumberOf(f),
	}
}

func widths(segs []Segment) []float64 {
	out := make([]float64, 0, len(segs))
	for _, s := range segs {
		out = append(out, s.Width)
	}
	return out
}

func TestMacroBarUsesLiteralWidths(t *testing.T) {
	tests := []struct {
		name  string
		split *mealcraft.MacroSplit
		want  []float64
	}{
		{"sums to 100", split(21, 52, 27), []float64{21, 52, 27}},
		{"sums to 90", split(21, 52, 17), []float64{21, 52, 17}},
		{"sums to 97", split(20, 50, 27), []float64{20, 50, 27}},
		{"sums to 103", split(23, 52, 28), []float64{23, 52, 28}},
		{"missing split", nil, []float64{0, 0, 0}},
		{"missing fats", &mealcraft.MacroSplit{ProteinPercentage: mealcraft.NumberOf(30), CarbsPercentage: mealcraft.NumberOf(50)}, []float64{30, 50, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := MacroBar(tt.split)
			assert.Equal(t, tt.want, widths(segs))
			assert.Equal(t, []Macro{Protein, Carbs, Fats}, []Macro{segs[0].Macro, segs[1].Macro, segs[2].Macro})
		})
	}
}

func TestMacroBarLabels(t *testing.T) {
	segs := MacroBar(split(10, 80, 10.5))
	assert.False(t, segs[0].ShowLabel)
	assert.True(t, segs[1].ShowLabel)
	assert.True(t, segs[2].ShowLabel)
}

func TestDayTotalsPassThrough(t *testing.T) {
	day := mealcraft.DayPlan{
		Breakfast: &mealcraft.MealItem{Calories: mealcraft.NumberOf(300)},
		Lunch:     &mealcraft.MealItem{Calories: mealcraft.NumberOf(500)},
		DailyTotals: &mealcraft.Macros{
			Calories:     mealcraft.NumberOf(999),
			ProteinGrams: mealcraft.NumberOf(40),
		},
	}

	// the reported total wins even though the meals add up to 800
	assert.Equal(t, Macros{Calories: 999, Protein: 40}, DayTotals(day))
	assert.Equal(t, Macros{}, DayTotals(mealcraft.DayPlan{}))
}

func TestMealMacros(t *testing.T) {
	assert.Equal(t, Macros{}, MealMacros(nil))
	assert.Equal(t, Macros{Calories: 385, Protein: 22, Carbs: 42, Fats: 14},
		MealMacros(sample.Plan().MealPlan.Days.Items[0].Breakfast))
}

func TestSummaries(t *testing.T) {
	p := sample.Plan()

	assert.Equal(t, Summary{Calories: 888, Protein: 49, Carbs: 102, Fats: 31}, WeeklyAverages(p.MealPlan))
	assert.Equal(t, Summary{Calories: 14100, Protein: 740, Carbs: 1850, Fats: 510}, WeeklyTotals(p.NutritionSummary))
	assert.Equal(t, Summary{Calories: 2350, Protein: 123, Carbs: 308, Fats: 85}, DailyAverages(p.NutritionSummary))

	assert.Equal(t, Summary{}, WeeklyAverages(mealcraft.MealPlan{}))
	assert.Equal(t, Summary{}, WeeklyTotals(nil))
	assert.Equal(t, Summary{}, DailyAverages(&mealcraft.NutritionSummary{}))
}

func TestDays(t *testing.T) {
	assert.Nil(t, Days(nil))
	assert.Empty(t, Days(&mealcraft.MealPlanResponse{}))
	assert.Len(t, Days(sample.Plan()), 6)
}

func TestTotalItems(t *testing.T) {
	list := &mealcraft.ShoppingList{
		Categories: mealcraft.ListOf(
			mealcraft.ShoppingCategory{Items: mealcraft.ListOf(mealcraft.ShoppingItem{}, mealcraft.ShoppingItem{})},
			mealcraft.ShoppingCategory{Items: mealcraft.ListOf(mealcraft.ShoppingItem{})},
			mealcraft.ShoppingCategory{},
		),
	}

	assert.Equal(t, 3, TotalItems(list), "falls back to a live count")

	list.TotalItems = mealcraft.NumberOf(43)
	assert.Equal(t, 43, TotalItems(list), "reported count wins even when it disagrees")

	list.TotalItems = mealcraft.NumberOf(0)
	assert.Equal(t, 0, TotalItems(list))

	assert.Equal(t, 0, TotalItems(nil))
	assert.Equal(t, 11, CountItems(sample.Plan().ShoppingList))
}

func TestCategoryKindOf(t *testing.T) {
	tests := map[string]CategoryKind{
		"Vegetables":          CategoryVegetable,
		"Dairy & Eggs":        CategoryDairyEgg,
		"Eggs":                CategoryDairyEgg,
		"Grains & Flour":      CategoryGrain,
		"Lentils & Legumes":   CategoryLegume,
		"Spices & Condiments": CategorySpice,
		"Oils & Fats":         CategoryOil,
		"Fresh Fruits":        CategoryFruit,
		"Snacks":              CategoryOther,
		"":                    CategoryOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, CategoryKindOf(in), in)
	}
}

func TestSourceKindOf(t *testing.T) {
	assert.Equal(t, SourceVideo, SourceKindOf("YouTube"))
	assert.Equal(t, SourceSocial, SourceKindOf("instagram"))
	assert.Equal(t, SourceBlog, SourceKindOf("Blog"))
	assert.Equal(t, SourceBlog, SourceKindOf(""))
}

func TestCuisineBadge(t *testing.T) {
	assert.Equal(t, CuisineSouthIndian, CuisineBadge("south indian"))
	assert.Equal(t, CuisineNorthIndian, CuisineBadge("North Indian (Punjabi)"))
	assert.Equal(t, CuisineContinental, CuisineBadge("Continental"))
	assert.Equal(t, CuisineContinental, CuisineBadge("Indo-Chinese"))
	assert.Equal(t, "Gujarati", CuisineBadge("Gujarati"))
}
