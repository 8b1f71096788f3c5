package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripwise/config"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Function struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			Parameters  map[string]any `json:"parameters"`
		} `json:"function"`
	} `json:"tools"`
}

// newTestGateway points the gateway at a fake completions endpoint that
// replies per-request via the respond callback.
func newTestGateway(t *testing.T, respond func(n int, req capturedRequest, w http.ResponseWriter)) (*Gateway, *[]capturedRequest, func()) {
	t.Helper()
	var seen []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		w.Header().Set("Content-Type", "application/json")
		respond(len(seen), req, w)
	}))

	config.AppConfig = config.Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
		OpenAIModel:   "gpt-4o-mini",
		MaxTokens:     800,
		Temperature:   0.7,
	}
	return NewGateway(), &seen, srv.Close
}

func writeTokenLimitError(w http.ResponseWriter) {
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": "Rate limit reached for tokens per min (rate_limit_exceeded)",
			"type":    "tokens",
		},
	})
}

func writeSuccess(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"role": "assistant", "content": content},
			},
		},
	})
}

func history(n int) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
	}
	for i := 0; i < n; i++ {
		role := openai.ChatMessageRoleUser
		if i%2 == 1 {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: "turn"})
	}
	return messages
}

func TestCompletePassesThroughOnSuccess(t *testing.T) {
	gw, seen, done := newTestGateway(t, func(n int, req capturedRequest, w http.ResponseWriter) {
		writeSuccess(w, "hello")
	})
	defer done()

	resp, err := gw.Complete(context.Background(), history(4), TravelTools())
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Len(t, *seen, 1)
	assert.Len(t, (*seen)[0].Tools, len(TravelTools()))
}

func TestCompleteDegradesToLatestExchange(t *testing.T) {
	gw, seen, done := newTestGateway(t, func(n int, req capturedRequest, w http.ResponseWriter) {
		if n == 1 {
			writeTokenLimitError(w)
			return
		}
		writeSuccess(w, "recovered")
	})
	defer done()

	resp, err := gw.Complete(context.Background(), history(6), TravelTools())
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Choices[0].Message.Content)

	require.Len(t, *seen, 2)
	// System message plus the last two turns.
	stage1 := (*seen)[1]
	require.Len(t, stage1.Messages, 3)
	assert.Equal(t, "system", stage1.Messages[0].Role)
	assert.Len(t, stage1.Tools, len(TravelTools()))
}

func TestCompleteDegradesToLastUserMessage(t *testing.T) {
	gw, seen, done := newTestGateway(t, func(n int, req capturedRequest, w http.ResponseWriter) {
		if n <= 2 {
			writeTokenLimitError(w)
			return
		}
		writeSuccess(w, "recovered")
	})
	defer done()

	_, err := gw.Complete(context.Background(), history(6), TravelTools())
	require.NoError(t, err)

	require.Len(t, *seen, 3)
	stage2 := (*seen)[2]
	require.Len(t, stage2.Messages, 2)
	assert.Equal(t, "system", stage2.Messages[0].Role)
	assert.Equal(t, "user", stage2.Messages[1].Role)
	// Tool descriptions are trimmed to their first sentence.
	require.NotEmpty(t, stage2.Tools)
	for _, tool := range stage2.Tools {
		assert.NotContains(t, tool.Function.Description, ".")
	}
}

func TestCompleteFallsBackToEmergencyContext(t *testing.T) {
	gw, seen, done := newTestGateway(t, func(n int, req capturedRequest, w http.ResponseWriter) {
		if n <= 3 {
			writeTokenLimitError(w)
			return
		}
		writeSuccess(w, "emergency answer")
	})
	defer done()

	resp, err := gw.Complete(context.Background(), history(6), TravelTools())
	require.NoError(t, err)
	assert.Equal(t, "emergency answer", resp.Choices[0].Message.Content)

	require.Len(t, *seen, 4)
	stage3 := (*seen)[3]
	require.Len(t, stage3.Messages, 2)
	assert.Equal(t, MinimalSystemPrompt, stage3.Messages[0].Content)
	assert.Empty(t, stage3.Tools)
}

func TestCompleteDoesNotDegradeOtherErrors(t *testing.T) {
	gw, seen, done := newTestGateway(t, func(n int, req capturedRequest, w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream exploded", "type": "server_error"},
		})
	})
	defer done()

	_, err := gw.Complete(context.Background(), history(6), TravelTools())
	require.Error(t, err)
	assert.Len(t, *seen, 1)
}

func TestSimplifyToolsTruncatesDescriptions(t *testing.T) {
	tools := []openai.Tool{{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "demo",
			Description: "First sentence. Second sentence with detail.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field": map[string]any{
						"type":        "string",
						"description": "Short part. Long trailing explanation.",
					},
				},
			},
		},
	}}

	simplified := simplifyTools(tools)
	assert.Equal(t, "First sentence", simplified[0].Function.Description)
	params := simplified[0].Function.Parameters.(map[string]any)
	field := params["properties"].(map[string]any)["field"].(map[string]any)
	assert.Equal(t, "Short part", field["description"])

	// Originals stay untouched.
	assert.Equal(t, "First sentence. Second sentence with detail.", tools[0].Function.Description)
}

func TestIsTokenBudgetError(t *testing.T) {
	assert.False(t, isTokenBudgetError(nil))
	assert.True(t, isTokenBudgetError(&openai.APIError{Message: "maximum context length is 8192 tokens"}))
	assert.True(t, isTokenBudgetError(&openai.APIError{Message: "rate_limit_exceeded"}))
	assert.False(t, isTokenBudgetError(&openai.APIError{Message: "invalid api key"}))
}
