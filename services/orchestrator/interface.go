package orchestrator

import (
	"context"
	"encoding/json"

	"tripwise/models"
	"tripwise/services/amadeus"
	"tripwise/services/results"
	"tripwise/services/session"

	openai "github.com/sashabaranov/go-openai"
)

// ChatService drives a conversation turn: it sends the history to the
// model with the travel tool schema, executes any tool calls against
// the travel API, and obtains the final natural-language answer.
type ChatService interface {
	// Chat runs a complete turn and returns the final answer with the
	// tool invocations that produced it.
	Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error)

	// ChatStream runs a turn for the streaming endpoint. When tool
	// calls are involved they resolve synchronously and a complete
	// response is returned; otherwise the raw completion stream is
	// handed back for the caller to relay.
	ChatStream(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, *openai.ChatCompletionStream, error)
}

// Completer is the slice of the LLM gateway the orchestrator uses.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionResponse, error)
	CompleteStream(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (*openai.ChatCompletionStream, error)
}

// TravelClient is the travel-API surface the orchestrator dispatches
// tool calls to.
type TravelClient interface {
	SearchFlights(ctx context.Context, params amadeus.FlightSearchParams) (json.RawMessage, error)
	SearchHotelsByCity(ctx context.Context, params amadeus.HotelListParams) (json.RawMessage, error)
	SearchHotelsByGeocode(ctx context.Context, params amadeus.HotelListParams) (json.RawMessage, error)
	SearchActivities(ctx context.Context, params amadeus.ActivitySearchParams) (json.RawMessage, error)
	SearchTransfers(ctx context.Context, body map[string]any) (json.RawMessage, error)
	GetHotelOffers(ctx context.Context, params amadeus.HotelOffersParams) (json.RawMessage, error)
	GetHotelOfferByID(ctx context.Context, offerID, lang string) (json.RawMessage, error)
}

// DefaultChatService is the production ChatService.
type DefaultChatService struct {
	LLM         Completer
	Travel      TravelClient
	Store       *session.Store
	MaxMessages int
	Limits      results.Limits
}

// NewChatService wires the orchestrator with its collaborators.
func NewChatService(llmGateway Completer, travel TravelClient, store *session.Store, maxMessages int, limits results.Limits) *DefaultChatService {
	if maxMessages <= 0 {
		maxMessages = 5
	}
	return &DefaultChatService{
		LLM:         llmGateway,
		Travel:      travel,
		Store:       store,
		MaxMessages: maxMessages,
		Limits:      limits,
	}
}
