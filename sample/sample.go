// Package sample embeds a complete meal plan used for previews and the mock agent.
package sample

import (
	_ "embed"
	"encoding/json"

	"mealcraft"
)

//go:embed sample.json
var raw []byte

// JSON returns a copy of the raw sample payload.
func JSON() []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// Plan decodes a fresh copy of the sample plan.
func Plan() *mealcraft.MealPlanResponse {
	var resp mealcraft.MealPlanResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		panic("sample: embedded plan is not valid JSON: " + err.Error())
	}
	return &resp
}
