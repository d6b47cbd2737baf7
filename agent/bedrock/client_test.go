package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealcraft/normalize"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	input    *bedrockruntime.ConverseInput
	response *bedrockruntime.ConverseOutput
	err      error
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = input
	return m.response, m.err
}

func messageOutput(stop types.StopReason, blocks ...types.ContentBlock) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: stop,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		Usage:   &types.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(20)},
		Metrics: &types.ConverseMetrics{LatencyMs: aws.Int64(100)},
	}
}

func planInput() map[string]any {
	return map[string]any{
		"meal_plan": map[string]any{
			"mode": "Protein-Focused",
			"days": []any{
				map[string]any{"day": "Monday", "day_number": 1},
				map[string]any{"day": "Tuesday", "day_number": 2},
			},
		},
		"shopping_list": map[string]any{"categories": []any{}, "total_items": 7},
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		input    LLMOptions
		expected LLMOptions
	}{
		{
			name:  "empty options uses defaults",
			input: LLMOptions{},
			expected: LLMOptions{
				ModelID:     defaultModelID,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
		{
			name:     "custom options preserved",
			input:    LLMOptions{ModelID: "custom-model", MaxTokens: 2048, Temperature: 0.5, TopP: 0.8},
			expected: LLMOptions{ModelID: "custom-model", MaxTokens: 2048, Temperature: 0.5, TopP: 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{}
			client := NewClient(mockClient, tt.input)

			assert.Equal(t, tt.expected, client.opts)
			assert.Equal(t, mockClient, client.brc)
		})
	}
}

func TestClient_CallForcesTool(t *testing.T) {
	mockClient := &mockBedrockClient{response: messageOutput(types.StopReasonToolUse)}
	client := NewClient(mockClient, LLMOptions{})

	_, err := client.Call(context.Background(), "plan please", "agent-1")
	require.NoError(t, err)

	in := mockClient.input
	require.NotNil(t, in)
	assert.Equal(t, defaultModelID, aws.ToString(in.ModelId))
	require.Len(t, in.System, 1)
	require.Len(t, in.Messages, 1)
	assert.Equal(t, types.ConversationRoleUser, in.Messages[0].Role)

	text, ok := in.Messages[0].Content[0].(*types.ContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, "plan please", text.Value)

	require.Len(t, in.ToolConfig.Tools, 1)
	spec, ok := in.ToolConfig.Tools[0].(*types.ToolMemberToolSpec)
	require.True(t, ok)
	assert.Equal(t, "submit_meal_plan", aws.ToString(spec.Value.Name))

	choice, ok := in.ToolConfig.ToolChoice.(*types.ToolChoiceMemberTool)
	require.True(t, ok)
	assert.Equal(t, "submit_meal_plan", aws.ToString(choice.Value.Name))
}

func TestClient_Call(t *testing.T) {
	tests := []struct {
		name         string
		response     *bedrockruntime.ConverseOutput
		err          error
		wantErr      string
		wantSuccess  bool
		wantFailure  string
		wantStrategy normalize.Strategy
		wantDays     int
	}{
		{
			name: "tool input becomes a direct object",
			response: messageOutput(types.StopReasonToolUse,
				&types.ContentBlockMemberToolUse{Value: types.ToolUseBlock{
					ToolUseId: aws.String("tu-1"),
					Name:      aws.String("submit_meal_plan"),
					Input:     document.NewLazyDocument(planInput()),
				}},
			),
			wantSuccess:  true,
			wantStrategy: normalize.StrategyDirectObject,
			wantDays:     2,
		},
		{
			name: "fenced text becomes a string result",
			response: messageOutput(types.StopReasonEndTurn,
				&types.ContentBlockMemberText{Value: "Here you go:\n```json\n{\"meal_plan\": {\"days\": [{}]}}\n```"},
			),
			wantSuccess:  true,
			wantStrategy: normalize.StrategyFencedBlock,
			wantDays:     1,
		},
		{
			name: "bare JSON text becomes a json string result",
			response: messageOutput(types.StopReasonEndTurn,
				&types.ContentBlockMemberText{Value: "thinking..."},
				&types.ContentBlockMemberText{Value: `{"meal_plan": {"days": [{}, {}, {}]}}`},
			),
			wantSuccess:  true,
			wantStrategy: normalize.StrategyJSONString,
			wantDays:     3,
		},
		{
			name:        "max tokens is an agent failure",
			response:    messageOutput(types.StopReasonMaxTokens),
			wantFailure: "model hit MaxTokens limit before finishing the meal plan",
		},
		{
			name:        "guardrail is an agent failure",
			response:    messageOutput(types.StopReasonGuardrailIntervened),
			wantFailure: "model response blocked by Bedrock safety filters",
		},
		{
			name:        "empty output is an agent failure",
			response:    &bedrockruntime.ConverseOutput{StopReason: types.StopReasonEndTurn},
			wantFailure: "model returned no content",
		},
		{
			name:    "converse error",
			err:     errors.New("throttled"),
			wantErr: "failed to invoke bedrock: throttled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(&mockBedrockClient{response: tt.response, err: tt.err}, LLMOptions{})

			result, err := client.Call(context.Background(), "plan", "agent")
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantFailure, result.Error)
			if !tt.wantSuccess {
				return
			}

			plan, strategy, ok := normalize.Match(result)
			require.True(t, ok)
			assert.Equal(t, tt.wantStrategy, strategy)
			assert.Equal(t, tt.wantDays, plan.MealPlan.Days.Len())
		})
	}
}
