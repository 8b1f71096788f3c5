package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tripwise/models"
	"tripwise/services/amadeus"
	"tripwise/services/llm"
	"tripwise/services/results"
	"tripwise/services/session"
	"tripwise/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const genericToolError = "Sorry, there was an error accessing the travel data."
const providerBusyError = "We're making too many requests to the travel service. Please try again in a moment."

// Chat runs one conversation turn. The history is windowed to the most
// recent messages, prefixed with the system prompt, and sent with the
// tool schema. Tool calls resolve sequentially through the cache and
// the travel client; each one lands in the ledger regardless of
// outcome. A second completion without tools produces the final answer.
func (s *DefaultChatService) Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error) {
	chatMessages, latestUserMessage := s.prepareMessages(messages)

	response, err := s.LLM.Complete(ctx, chatMessages, llm.TravelTools())
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	responseMessage := response.Choices[0].Message
	if len(responseMessage.ToolCalls) == 0 {
		return s.finishTurn(responseMessage.Content, nil), nil
	}

	toolMessages, records := s.executeToolCalls(ctx, responseMessage.ToolCalls, latestUserMessage)

	chatMessages = append(chatMessages, responseMessage)
	chatMessages = append(chatMessages, toolMessages...)

	finalResponse, err := s.LLM.Complete(ctx, chatMessages, nil)
	if err != nil {
		return nil, err
	}
	if len(finalResponse.Choices) == 0 {
		return nil, errors.New("final completion returned no choices")
	}
	return s.finishTurn(finalResponse.Choices[0].Message.Content, records), nil
}

// ChatStream resolves a streaming turn. Tool-call turns degrade to the
// non-streaming path because the tool outputs must be fed back before
// the final answer exists; plain turns return the raw stream.
func (s *DefaultChatService) ChatStream(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, *openai.ChatCompletionStream, error) {
	chatMessages, latestUserMessage := s.prepareMessages(messages)

	probe, err := s.LLM.Complete(ctx, chatMessages, llm.TravelTools())
	if err != nil {
		return nil, nil, err
	}
	if len(probe.Choices) == 0 {
		return nil, nil, errors.New("completion returned no choices")
	}

	responseMessage := probe.Choices[0].Message
	if len(responseMessage.ToolCalls) > 0 {
		toolMessages, records := s.executeToolCalls(ctx, responseMessage.ToolCalls, latestUserMessage)
		chatMessages = append(chatMessages, responseMessage)
		chatMessages = append(chatMessages, toolMessages...)

		finalResponse, err := s.LLM.Complete(ctx, chatMessages, nil)
		if err != nil {
			return nil, nil, err
		}
		if len(finalResponse.Choices) == 0 {
			return nil, nil, errors.New("final completion returned no choices")
		}
		return s.finishTurn(finalResponse.Choices[0].Message.Content, records), nil, nil
	}

	stream, err := s.LLM.CompleteStream(ctx, chatMessages, nil)
	if err != nil {
		return nil, nil, err
	}
	return nil, stream, nil
}

// prepareMessages windows the history, strips client-supplied system
// messages, and prepends the canonical system prompt. It also registers
// the latest user query with the ledger for "show your work" context.
func (s *DefaultChatService) prepareMessages(messages []models.ChatMessage) ([]openai.ChatCompletionMessage, string) {
	latestUserMessage := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			latestUserMessage = messages[i].Content
			break
		}
	}
	if latestUserMessage != "" {
		s.Store.Ledger.SetUserQuery(latestUserMessage)
	}

	recent := messages
	if len(recent) > s.MaxMessages {
		recent = recent[len(recent)-s.MaxMessages:]
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(recent)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: llm.SystemPrompt,
	})
	for _, m := range recent {
		if m.Role == "system" {
			continue
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return chatMessages, latestUserMessage
}

// executeToolCalls dispatches each tool call and returns the tool-result
// messages for the second completion plus the records for the caller.
func (s *DefaultChatService) executeToolCalls(ctx context.Context, toolCalls []openai.ToolCall, latestUserMessage string) ([]openai.ChatCompletionMessage, []models.APICallRecord) {
	logger := utils.GetLogger()
	toolMessages := make([]openai.ChatCompletionMessage, 0, len(toolCalls))
	var records []models.APICallRecord

	for _, toolCall := range toolCalls {
		functionName := toolCall.Function.Name

		var args map[string]any
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
			logger.Error("Failed to parse tool arguments",
				zap.String("function", functionName), zap.Error(err))
			args = map[string]any{}
		}

		payload, call := s.dispatch(ctx, functionName, args, latestUserMessage)
		if call != nil {
			s.Store.Ledger.Record(*call)
			records = append(records, models.APICallRecord{
				APICall:   *call,
				UserQuery: latestUserMessage,
			})
		}

		content, err := json.Marshal(payload)
		if err != nil {
			content = []byte(`{"error":true}`)
		}
		toolMessages = append(toolMessages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: toolCall.ID,
			Content:    string(content),
		})
	}
	return toolMessages, records
}

// dispatch runs one tool call through the cache, the sanitizer, and the
// travel client. Failures never propagate; they become structured error
// payloads the model can phrase for the user.
func (s *DefaultChatService) dispatch(ctx context.Context, functionName string, args map[string]any, latestUserMessage string) (any, *models.APICall) {
	logger := utils.GetLogger()

	// The cache key is derived from the arguments as the model issued
	// them, before sanitization touches them.
	cacheKey := session.CacheKey(functionName, args)

	endpoint, known := toolEndpoints[functionName]
	if !known {
		logger.Warn("Unknown tool function requested", zap.String("function", functionName))
		return map[string]any{"error": fmt.Sprintf("Unknown function: %s", functionName)}, nil
	}

	if cached, ok := s.Store.CachedResponse(cacheKey); ok {
		logger.Debug("Cache hit", zap.String("function", functionName))
		if items := results.DataArray(cached); len(items) > 0 {
			s.Store.SetResults(results.Classify(items, s.Limits))
		}
		var payload any
		if err := json.Unmarshal(cached, &payload); err != nil {
			payload = string(cached)
		}
		return payload, &models.APICall{
			APIName:      functionName,
			Endpoint:     endpoint,
			RequestData:  args,
			ResponseData: payload,
		}
	}

	raw, err := s.callTravel(ctx, functionName, args, latestUserMessage)
	if err != nil {
		logger.Error("Travel API call failed",
			zap.String("function", functionName), zap.Error(err))
		payload := map[string]any{
			"error":   true,
			"message": userFacingError(err),
			"service": functionName,
		}
		return payload, &models.APICall{
			APIName:      functionName,
			Endpoint:     "Amadeus API: " + functionName,
			RequestData:  args,
			ResponseData: payload,
		}
	}

	s.Store.CacheResponse(cacheKey, raw)

	if items := results.DataArray(raw); len(items) > 0 {
		s.Store.SetResults(results.Classify(items, s.Limits))
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = string(raw)
	}
	return payload, &models.APICall{
		APIName:      functionName,
		Endpoint:     endpoint,
		RequestData:  args,
		ResponseData: payload,
	}
}

var toolEndpoints = map[string]string{
	llm.ToolSearchFlights:         "/v2/shopping/flight-offers",
	llm.ToolSearchHotelsByCity:    "/v1/reference-data/locations/hotels/by-city",
	llm.ToolSearchHotelsByGeocode: "/v1/reference-data/locations/hotels/by-geocode",
	llm.ToolSearchActivities:      "/v1/shopping/activities",
	llm.ToolSearchTransfers:       "/v1/shopping/transfer-offers",
	llm.ToolGetHotelOffers:        "/v3/shopping/hotel-offers",
	llm.ToolGetHotelOfferByID:     "/v3/shopping/hotel-offers/{offerId}",
}

// callTravel sanitizes the arguments for the named function and invokes
// the matching travel-client operation.
func (s *DefaultChatService) callTravel(ctx context.Context, functionName string, args map[string]any, latestUserMessage string) (json.RawMessage, error) {
	switch functionName {
	case llm.ToolSearchFlights:
		if _, ok := args["departureDate"].(string); !ok {
			fallback, _ := utils.ParseSmartDate("next month")
			utils.GetLogger().Warn("Missing departure date in flight search, using fallback",
				zap.String("departureDate", fallback))
			args["departureDate"] = fallback
		}
		var params amadeus.FlightSearchParams
		if err := decodeArgs(args, &params); err != nil {
			return nil, err
		}
		if params.Adults == 0 {
			params.Adults = 1
		}
		return s.Travel.SearchFlights(ctx, params)

	case llm.ToolSearchHotelsByCity, llm.ToolSearchHotelsByGeocode:
		if amenities, ok := args["amenities"].(string); ok && amenities != "" {
			args["amenities"] = amadeus.FixAmenities(amenities)
		}
		if ratings, ok := args["ratings"].(string); ok && ratings != "" {
			args["ratings"] = amadeus.FixRatings(ratings)
		}
		var params amadeus.HotelListParams
		if err := decodeArgs(args, &params); err != nil {
			return nil, err
		}
		if functionName == llm.ToolSearchHotelsByCity {
			return s.Travel.SearchHotelsByCity(ctx, params)
		}
		return s.Travel.SearchHotelsByGeocode(ctx, params)

	case llm.ToolSearchActivities:
		if !hasCoordinate(args["latitude"]) && !hasCoordinate(args["longitude"]) {
			lat, lon := s.lookupCoordinates(ctx, args, latestUserMessage)
			args["latitude"], args["longitude"] = lat, lon
			if args["radius"] == nil {
				args["radius"] = 20
			}
		}
		var params amadeus.ActivitySearchParams
		if err := decodeArgs(args, &params); err != nil {
			return nil, err
		}
		return s.Travel.SearchActivities(ctx, params)

	case llm.ToolSearchTransfers:
		if date, ok := args["transferDate"].(string); ok {
			parsed, err := utils.ParseSmartDate(date)
			if err != nil {
				parsed = utils.AnchorDate().Format("2006-01-02")
			}
			args["transferDate"] = parsed
		}
		return s.Travel.SearchTransfers(ctx, args)

	case llm.ToolGetHotelOffers:
		// The schema says array but the model sometimes sends a
		// comma-separated string.
		if ids, ok := args["hotelIds"].(string); ok {
			args["hotelIds"] = splitCommaList(ids)
		}
		var params amadeus.HotelOffersParams
		if err := decodeArgs(args, &params); err != nil {
			return nil, err
		}
		return s.Travel.GetHotelOffers(ctx, params)

	case llm.ToolGetHotelOfferByID:
		offerID, _ := args["offerId"].(string)
		lang, _ := args["lang"].(string)
		return s.Travel.GetHotelOfferByID(ctx, offerID, lang)
	}
	return nil, fmt.Errorf("unknown function: %s", functionName)
}

// finishTurn classifies any JSON block embedded in the final answer,
// replaces it with a short summary, and assembles the response.
func (s *DefaultChatService) finishTurn(text string, records []models.APICallRecord) *models.ChatResponse {
	if items, ok := results.ExtractJSONBlock(text); ok && len(items) > 0 {
		classified := results.Classify(items, s.Limits)
		s.Store.SetResults(classified)
		text = results.ReplaceJSONBlock(text, results.Summary(classified))
	}
	return &models.ChatResponse{
		Response: text,
		APICalls: records,
		Results:  s.Store.Results(),
	}
}

// userFacingError phrases a travel-API failure for the end user.
// Rate-limit rejections keep their retry hint; provider throttling gets
// a softer message; anything else is generic.
func userFacingError(err error) string {
	var rateErr *amadeus.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Error()
	}
	var apiErr *amadeus.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return providerBusyError
	}
	var validationErr *amadeus.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return genericToolError
}

// decodeArgs converts a free-form argument map into a typed parameter
// struct, silently dropping fields the struct does not declare.
func decodeArgs(args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// hasCoordinate reports whether a tool argument carries a usable
// coordinate. Missing, non-numeric, and zero values all count as
// absent; a bare 0 from the model is a placeholder, not the equator.
func hasCoordinate(v any) bool {
	f, ok := v.(float64)
	return ok && f != 0
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
