// Package normalize turns the loosely shaped agent envelope into a meal plan.
//
// The agent has historically answered in several shapes: a plain object, a
// JSON string, JSON inside a markdown fence, a payload nested under a wrapper
// key, or only a top-level raw_response. Each shape is handled by one
// extractor; extractors run in a fixed order and the first candidate holding a
// non-null meal_plan wins.
package normalize

import (
	"bytes"
	"encoding/json"
	"regexp"

	"mealcraft"
)

type Strategy string

const (
	StrategyDirectObject Strategy = "direct-object"
	StrategyJSONString   Strategy = "json-string"
	StrategyFencedBlock  Strategy = "fenced-block"
	StrategyWrapperKey   Strategy = "wrapper-key"
	StrategyRawResponse  Strategy = "raw-response"
)

// WrapperKeys are searched in this order for a nested payload.
var WrapperKeys = []string{"result", "response", "data", "output", "content"}

type candidate map[string]json.RawMessage

// Extractor pulls a candidate object out of an agent result. It reports false
// when its shape does not apply or nothing under it holds a meal_plan.
type Extractor struct {
	Strategy Strategy
	Extract  func(mealcraft.AgentResult) (candidate, bool)
}

// Extractors in priority order.
var Extractors = []Extractor{
	{StrategyDirectObject, directObject},
	{StrategyJSONString, jsonString},
	{StrategyFencedBlock, fencedBlock},
	{StrategyWrapperKey, wrapperKey},
	{StrategyRawResponse, rawResponse},
}

var fence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Normalize returns the plan carried by result, or false when the result
// failed or no strategy recognized it.
func Normalize(result mealcraft.AgentResult) (*mealcraft.MealPlanResponse, bool) {
	resp, _, ok := Match(result)
	return resp, ok
}

// Match is Normalize that also reports which strategy succeeded.
func Match(result mealcraft.AgentResult) (resp *mealcraft.MealPlanResponse, strategy Strategy, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			resp, strategy, ok = nil, "", false
		}
	}()

	if !result.Success {
		return nil, "", false
	}

	for _, ex := range Extractors {
		c, found := ex.Extract(result)
		if !found {
			continue
		}
		plan, err := decode(c)
		if err != nil {
			continue
		}
		return plan, ex.Strategy, true
	}
	return nil, "", false
}

func decode(c candidate) (*mealcraft.MealPlanResponse, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var resp mealcraft.MealPlanResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func directObject(r mealcraft.AgentResult) (candidate, bool) {
	return withMealPlan(parseObject(resultBytes(r)))
}

func jsonString(r mealcraft.AgentResult) (candidate, bool) {
	s, ok := resultString(r)
	if !ok {
		return nil, false
	}
	return withMealPlan(parseObject([]byte(s)))
}

func fencedBlock(r mealcraft.AgentResult) (candidate, bool) {
	s, ok := resultString(r)
	if !ok {
		return nil, false
	}
	inner, ok := fenced(s)
	if !ok {
		return nil, false
	}
	return withMealPlan(parseObject([]byte(inner)))
}

func wrapperKey(r mealcraft.AgentResult) (candidate, bool) {
	base, ok := decodedResult(r)
	if !ok {
		return nil, false
	}
	for _, key := range WrapperKeys {
		v, present := base[key]
		if !present {
			continue
		}
		if c, ok := withMealPlan(parseObject(v)); ok {
			return c, true
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			if c, ok := withMealPlan(parseObject([]byte(s))); ok {
				return c, true
			}
		}
	}
	return nil, false
}

// rawResponse tries the top-level raw_response. Valid JSON is final; the
// fence is only searched when the text does not parse at all.
func rawResponse(r mealcraft.AgentResult) (candidate, bool) {
	if r.RawResponse == "" {
		return nil, false
	}
	raw := []byte(r.RawResponse)
	if json.Valid(raw) {
		return withMealPlan(parseObject(raw))
	}
	inner, ok := fenced(r.RawResponse)
	if !ok {
		return nil, false
	}
	return withMealPlan(parseObject([]byte(inner)))
}

// decodedResult returns response.result as an object, decoding it first when
// it is a JSON string or a fenced block.
func decodedResult(r mealcraft.AgentResult) (candidate, bool) {
	if c, ok := parseObject(resultBytes(r)); ok {
		return c, true
	}
	s, ok := resultString(r)
	if !ok {
		return nil, false
	}
	if c, ok := parseObject([]byte(s)); ok {
		return c, true
	}
	if inner, ok := fenced(s); ok {
		return parseObject([]byte(inner))
	}
	return nil, false
}

func resultBytes(r mealcraft.AgentResult) []byte {
	if r.Response == nil {
		return nil
	}
	return r.Response.Result
}

func resultString(r mealcraft.AgentResult) (string, bool) {
	data := bytes.TrimSpace(resultBytes(r))
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

func fenced(s string) (string, bool) {
	m := fence.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func parseObject(data []byte) (candidate, bool) {
	if !mealcraft.IsObject(data) {
		return nil, false
	}
	var c candidate
	if err := json.Unmarshal(data, &c); err != nil || c == nil {
		return nil, false
	}
	return c, true
}

func withMealPlan(c candidate, ok bool) (candidate, bool) {
	if !ok {
		return nil, false
	}
	v, present := c["meal_plan"]
	if !present || string(bytes.TrimSpace(v)) == "null" {
		return nil, false
	}
	return c, true
}
