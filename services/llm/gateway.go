package llm

import (
	"context"
	"encoding/json"
	"strings"

	"tripwise/config"
	"tripwise/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Gateway wraps the OpenAI chat-completions client with the token-budget
// degradation ladder: when a request overflows the model's context or
// rate budget, it retries with progressively smaller context instead of
// failing the turn.
type Gateway struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGateway builds a gateway from the application config. A non-empty
// base URL override points the client at a compatible endpoint, which
// the tests use.
func NewGateway() *Gateway {
	cfg := config.AppConfig
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &Gateway{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// tokenBudgetMarkers are the provider error fragments that trigger the
// degradation ladder.
var tokenBudgetMarkers = []string{
	"tokens per min",
	"maximum context length",
	"token limit",
	"rate_limit_exceeded",
}

func isTokenBudgetError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range tokenBudgetMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Complete runs a chat completion, degrading the context in up to three
// stages when the token budget is exceeded:
//
//	1. system message plus the last two messages, full tools
//	2. system message plus the last user message, simplified tools
//	3. minimal system prompt plus the last user text, no tools
//
// Errors other than token-budget overruns pass through untouched.
func (g *Gateway) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionResponse, error) {
	logger := utils.GetLogger()

	resp, err := g.create(ctx, messages, tools)
	if err == nil || !isTokenBudgetError(err) {
		return resp, err
	}
	logger.Warn("Token budget exceeded, degrading context", zap.Error(err))

	var systemMsg *openai.ChatCompletionMessage
	if len(messages) > 0 && messages[0].Role == openai.ChatMessageRoleSystem {
		systemMsg = &messages[0]
	}

	// Stage 1: system message plus the latest exchange.
	reduced := lastN(messages, 2)
	if systemMsg != nil {
		reduced = append([]openai.ChatCompletionMessage{*systemMsg}, reduced...)
	}
	logger.Info("Degradation stage 1: latest exchange only",
		zap.Int("messages", len(reduced)), zap.Int("from", len(messages)))
	resp, err = g.create(ctx, reduced, tools)
	if err == nil || !strings.Contains(err.Error(), "rate_limit_exceeded") {
		return resp, err
	}

	// Stage 2: system message plus the last user message, trimmed tools.
	minimal := make([]openai.ChatCompletionMessage, 0, 2)
	if systemMsg != nil {
		minimal = append(minimal, *systemMsg)
	}
	if lastUser := lastUserMessage(messages); lastUser != nil {
		minimal = append(minimal, *lastUser)
	}
	if len(minimal) == 0 && len(messages) > 0 {
		minimal = append(minimal, messages[len(messages)-1])
	}
	logger.Info("Degradation stage 2: system plus last user message",
		zap.Int("messages", len(minimal)), zap.Int("from", len(messages)))
	resp, err = g.create(ctx, minimal, simplifyTools(tools))
	if err == nil || !strings.Contains(err.Error(), "rate_limit_exceeded") {
		return resp, err
	}

	// Stage 3: emergency minimal context, no tools.
	userContent := ""
	if lastUser := lastUserMessage(messages); lastUser != nil {
		userContent = lastUser.Content
	}
	logger.Warn("Degradation stage 3: emergency minimal context")
	emergency := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: MinimalSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userContent},
	}
	return g.create(ctx, emergency, nil)
}

// CompleteStream opens a streaming completion with the full context and
// no degradation; the streaming handler falls back to Complete when
// tool calls are involved.
func (g *Gateway) CompleteStream(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (*openai.ChatCompletionStream, error) {
	req := g.buildRequest(messages, tools)
	req.Stream = true
	return g.client.CreateChatCompletionStream(ctx, req)
}

func (g *Gateway) create(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionResponse, error) {
	return g.client.CreateChatCompletion(ctx, g.buildRequest(messages, tools))
}

func (g *Gateway) buildRequest(messages []openai.ChatCompletionMessage, tools []openai.Tool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}
	return req
}

func lastN(messages []openai.ChatCompletionMessage, n int) []openai.ChatCompletionMessage {
	if len(messages) <= n {
		return append([]openai.ChatCompletionMessage(nil), messages...)
	}
	return append([]openai.ChatCompletionMessage(nil), messages[len(messages)-n:]...)
}

func lastUserMessage(messages []openai.ChatCompletionMessage) *openai.ChatCompletionMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == openai.ChatMessageRoleUser {
			return &messages[i]
		}
	}
	return nil
}

// simplifyTools clones the tool schemas and truncates every description
// to its first sentence to save tokens.
func simplifyTools(tools []openai.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	simplified := make([]openai.Tool, len(tools))
	for i, tool := range tools {
		copied := tool
		if tool.Function != nil {
			fn := *tool.Function
			fn.Description = firstSentence(fn.Description)
			fn.Parameters = simplifyParameters(fn.Parameters)
			copied.Function = &fn
		}
		simplified[i] = copied
	}
	return simplified
}

func simplifyParameters(params any) any {
	raw, err := json.Marshal(params)
	if err != nil {
		return params
	}
	var cloned map[string]any
	if err := json.Unmarshal(raw, &cloned); err != nil {
		return params
	}
	if props, ok := cloned["properties"].(map[string]any); ok {
		for _, v := range props {
			if p, ok := v.(map[string]any); ok {
				if desc, ok := p["description"].(string); ok {
					p["description"] = firstSentence(desc)
				}
			}
		}
	}
	return cloned
}

func firstSentence(s string) string {
	if idx := strings.Index(s, "."); idx >= 0 {
		return s[:idx]
	}
	return s
}
