package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		ingredients []string
		want        string
	}{
		{
			name:  "no ingredients",
			label: "Regular Balanced",
			want: "Generate a 6-day Regular Balanced meal plan for Indian vegetarian/eggetarian cuisine." +
				" Focus on South Indian breakfast recipes with variety from North Indian and Continental dishes for lunch." +
				" Provide complete nutritional breakdown and shopping list.",
		},
		{
			name:        "ingredients in insertion order",
			label:       "Protein-Focused",
			ingredients: []string{"paneer", "spinach"},
			want: "Generate a 6-day Protein-Focused meal plan for Indian vegetarian/eggetarian cuisine." +
				" Include these ingredients: paneer, spinach." +
				" Focus on South Indian breakfast recipes with variety from North Indian and Continental dishes for lunch." +
				" Provide complete nutritional breakdown and shopping list.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.label, tt.ingredients))
		})
	}
}

func TestModeLabel(t *testing.T) {
	assert.Equal(t, "Regular Balanced", Regular.Label())
	assert.Equal(t, "Protein-Focused", Protein.Label())
	assert.Equal(t, "Regular Balanced", Mode("").Label())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: Regular},
		{in: "regular", want: Regular},
		{in: "Protein", want: Protein},
		{in: "Protein-Focused", want: Protein},
		{in: " protein ", want: Protein},
		{in: "keto", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSystem(t *testing.T) {
	s := System()
	assert.Contains(t, s, `"meal_plan"`)
	assert.Contains(t, s, `"shopping_list"`)
	assert.Contains(t, s, `"macro_split"`)
}
