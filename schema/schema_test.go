package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealPlanResponse(t *testing.T) {
	s := MealPlanResponse()

	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"meal_plan", "shopping_list", "nutrition_summary"}, s.Required)

	days := s.Properties["meal_plan"].Properties["days"]
	require.NotNil(t, days)
	assert.Equal(t, "array", days.Type)
	assert.Contains(t, days.Items.Required, "daily_totals")

	split := s.Properties["nutrition_summary"].Properties["macro_split"]
	assert.ElementsMatch(t, []string{"protein_percentage", "carbs_percentage", "fats_percentage"}, split.Required)

	item := s.Properties["shopping_list"].Properties["categories"].Items.Properties["items"].Items
	assert.Equal(t, "array", item.Properties["used_in"].Type)
}

func TestSubmitMealPlan(t *testing.T) {
	tool := SubmitMealPlan()
	assert.Equal(t, "submit_meal_plan", tool.Name)
	assert.NotEmpty(t, tool.Description)

	// Round-trips through JSON the way model backends consume it.
	data, err := json.Marshal(tool.InputSchema)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "object", m["type"])
	assert.Contains(t, m, "properties")
}
