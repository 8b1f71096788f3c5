package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tripwise/models"
	"tripwise/services/amadeus"
	"tripwise/services/results"
	"tripwise/services/session"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	responses []openai.ChatCompletionResponse
	errs      []error
	requests  [][]openai.ChatCompletionMessage
	toolsSeen [][]openai.Tool
}

func (f *fakeLLM) Complete(_ context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionResponse, error) {
	i := len(f.requests)
	f.requests = append(f.requests, messages)
	f.toolsSeen = append(f.toolsSeen, tools)
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	if i >= len(f.responses) {
		return openai.ChatCompletionResponse{}, errors.New("unexpected completion request")
	}
	return f.responses[i], nil
}

func (f *fakeLLM) CompleteStream(context.Context, []openai.ChatCompletionMessage, []openai.Tool) (*openai.ChatCompletionStream, error) {
	return nil, errors.New("streaming not scripted")
}

type fakeTravel struct {
	flightCalls  int
	flightParams amadeus.FlightSearchParams
	flightResult json.RawMessage
	flightErr    error

	hotelParams    amadeus.HotelListParams
	activityParams amadeus.ActivitySearchParams
}

func (f *fakeTravel) SearchFlights(_ context.Context, params amadeus.FlightSearchParams) (json.RawMessage, error) {
	f.flightCalls++
	f.flightParams = params
	if f.flightErr != nil {
		err := f.flightErr
		f.flightErr = nil
		return nil, err
	}
	return f.flightResult, nil
}

func (f *fakeTravel) SearchHotelsByCity(_ context.Context, params amadeus.HotelListParams) (json.RawMessage, error) {
	f.hotelParams = params
	return json.RawMessage(`{"data":[{"hotelId":"HLPAR123"}]}`), nil
}

func (f *fakeTravel) SearchHotelsByGeocode(_ context.Context, params amadeus.HotelListParams) (json.RawMessage, error) {
	return json.RawMessage(`{"data":[]}`), nil
}

func (f *fakeTravel) SearchActivities(_ context.Context, params amadeus.ActivitySearchParams) (json.RawMessage, error) {
	f.activityParams = params
	return json.RawMessage(`{"data":[]}`), nil
}

func (f *fakeTravel) SearchTransfers(context.Context, map[string]any) (json.RawMessage, error) {
	return json.RawMessage(`{"data":[]}`), nil
}

func (f *fakeTravel) GetHotelOffers(context.Context, amadeus.HotelOffersParams) (json.RawMessage, error) {
	return json.RawMessage(`{"data":[]}`), nil
}

func (f *fakeTravel) GetHotelOfferByID(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"data":[]}`), nil
}

func toolCallResponse(name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   "call_1",
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				}},
			},
		}},
	}
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

const flightResponse = `{"data":[
	{"type":"flight-offer","id":"1","itineraries":[{"segments":[{"carrierCode":"AF"}]}]},
	{"type":"flight-offer","id":"2","itineraries":[{"segments":[{"carrierCode":"6X"}]}]}
]}`

var flightArgs = `{"originLocationCode":"JFK","destinationLocationCode":"CDG","departureDate":"2025-12-15","adults":1,"nonStop":true,"maxPrice":500}`

func newTestService(llmFake *fakeLLM, travel *fakeTravel) (*DefaultChatService, *session.Store) {
	store := session.NewStore(0, 10)
	limits := results.Limits{Flights: 8, Hotels: 3, Activities: 6, Transfers: 3}
	return NewChatService(llmFake, travel, store, 5, limits), store
}

func userTurn(text string) []models.ChatMessage {
	return []models.ChatMessage{{Role: "user", Content: text}}
}

func TestChatFlightSearchEndToEnd(t *testing.T) {
	travel := &fakeTravel{flightResult: json.RawMessage(flightResponse)}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchFlights", flightArgs),
		textResponse("Here are your flights."),
	}}
	svc, store := newTestService(llmFake, travel)

	resp, err := svc.Chat(context.Background(), userTurn("flights from JFK to CDG on 2025-12-15"))
	require.NoError(t, err)

	assert.Equal(t, "Here are your flights.", resp.Response)
	require.Len(t, resp.APICalls, 1)
	assert.Equal(t, "searchFlights", resp.APICalls[0].APIName)

	// Extended filter fields the provider rejects never reach the client.
	assert.Equal(t, amadeus.FlightSearchParams{
		OriginLocationCode:      "JFK",
		DestinationLocationCode: "CDG",
		DepartureDate:           "2025-12-15",
		Adults:                  1,
	}, travel.flightParams)

	// The non-operational carrier is gone from the classified set.
	flights := resp.Results[models.CategoryFlights]
	require.Len(t, flights.Items, 1)
	assert.Equal(t, "1", flights.Items[0]["id"])

	// The ledger saw exactly one entry for this turn.
	records := store.Ledger.Query(false, "")
	require.Len(t, records, 1)
	assert.Equal(t, "searchFlights", records[0].APIName)
	assert.Equal(t, "flights from JFK to CDG on 2025-12-15", records[0].UserQuery)

	// Second round went back without tools.
	require.Len(t, llmFake.toolsSeen, 2)
	assert.NotEmpty(t, llmFake.toolsSeen[0])
	assert.Empty(t, llmFake.toolsSeen[1])
}

func TestChatCachesIdenticalCalls(t *testing.T) {
	travel := &fakeTravel{flightResult: json.RawMessage(flightResponse)}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchFlights", flightArgs),
		textResponse("first answer"),
		toolCallResponse("searchFlights", flightArgs),
		textResponse("second answer"),
	}}
	svc, _ := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("flights to paris"))
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), userTurn("flights to paris again"))
	require.NoError(t, err)

	assert.Equal(t, 1, travel.flightCalls)
}

func TestChatFailedCallsAreNotCached(t *testing.T) {
	travel := &fakeTravel{
		flightResult: json.RawMessage(flightResponse),
		flightErr:    &amadeus.APIError{StatusCode: 500, Endpoint: "/v2/shopping/flight-offers", Body: "boom"},
	}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchFlights", flightArgs),
		textResponse("sorry"),
		toolCallResponse("searchFlights", flightArgs),
		textResponse("here you go"),
	}}
	svc, store := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("flights to paris"))
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), userTurn("flights to paris"))
	require.NoError(t, err)

	// The failure forced a second provider call.
	assert.Equal(t, 2, travel.flightCalls)

	records := store.Ledger.Query(false, "")
	require.Len(t, records, 2)
	assert.True(t, records[0].IsError())
	assert.False(t, records[1].IsError())
}

func TestChatRateLimitErrorSurfacesRetryHint(t *testing.T) {
	travel := &fakeTravel{}
	travel.flightErr = &amadeus.RateLimitError{RetryIn: 42 * time.Second}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchFlights", flightArgs),
		textResponse("please wait"),
	}}
	svc, store := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("flights to paris"))
	require.NoError(t, err)

	records := store.Ledger.Query(false, "")
	require.Len(t, records, 1)
	payload := records[0].ResponseData.(map[string]any)
	assert.Equal(t, true, payload["error"])
	assert.Equal(t, "Rate limit reached. Please try again in 42 seconds.", payload["message"])
	assert.Equal(t, "searchFlights", payload["service"])
}

func TestChatSanitizesHotelFilters(t *testing.T) {
	travel := &fakeTravel{}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchHotelsByCity", `{"cityCode":"PAR","amenities":"pool,gym","ratings":"at least 3"}`),
		textResponse("hotels found"),
	}}
	svc, _ := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("hotels in paris with a pool"))
	require.NoError(t, err)

	assert.Equal(t, "SWIMMING_POOL,FITNESS_CENTER", travel.hotelParams.Amenities)
	assert.Equal(t, "3,4,5", travel.hotelParams.Ratings)
}

func TestChatMissingDepartureDateGetsFallback(t *testing.T) {
	travel := &fakeTravel{flightResult: json.RawMessage(`{"data":[]}`)}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchFlights", `{"originLocationCode":"JFK","destinationLocationCode":"CDG","adults":1}`),
		textResponse("done"),
	}}
	svc, _ := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("flights to paris sometime"))
	require.NoError(t, err)

	assert.Equal(t, "2025-05-15", travel.flightParams.DepartureDate)
}

func TestChatUnknownFunctionIsNotRecorded(t *testing.T) {
	travel := &fakeTravel{}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("teleportUser", `{}`),
		textResponse("cannot do that"),
	}}
	svc, store := newTestService(llmFake, travel)

	resp, err := svc.Chat(context.Background(), userTurn("teleport me"))
	require.NoError(t, err)

	assert.Empty(t, resp.APICalls)
	assert.Empty(t, store.Ledger.Query(false, ""))
	// The model still received a tool-result message explaining the failure.
	finalRequest := llmFake.requests[1]
	assert.Contains(t, finalRequest[len(finalRequest)-1].Content, "Unknown function: teleportUser")
}

func TestChatNoToolCallsReturnsDirectAnswer(t *testing.T) {
	travel := &fakeTravel{}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		textResponse("Paris is lovely in May."),
	}}
	svc, _ := newTestService(llmFake, travel)

	resp, err := svc.Chat(context.Background(), userTurn("when should I visit paris?"))
	require.NoError(t, err)
	assert.Equal(t, "Paris is lovely in May.", resp.Response)
	assert.Empty(t, resp.APICalls)
	assert.Len(t, llmFake.requests, 1)
}

func TestChatWindowsHistoryAndStripsSystemMessages(t *testing.T) {
	travel := &fakeTravel{}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		textResponse("ok"),
	}}
	svc, _ := newTestService(llmFake, travel)

	var history []models.ChatMessage
	history = append(history, models.ChatMessage{Role: "system", Content: "client-injected prompt"})
	for i := 0; i < 8; i++ {
		history = append(history, models.ChatMessage{Role: "user", Content: "message"})
	}

	_, err := svc.Chat(context.Background(), history)
	require.NoError(t, err)

	sent := llmFake.requests[0]
	// System prompt plus the five most recent non-system messages.
	require.Len(t, sent, 6)
	assert.Equal(t, openai.ChatMessageRoleSystem, sent[0].Role)
	for _, m := range sent[1:] {
		assert.Equal(t, openai.ChatMessageRoleUser, m.Role)
		assert.Equal(t, "message", m.Content)
	}
}

func TestChatZeroCoordinatesTriggerLookup(t *testing.T) {
	travel := &fakeTravel{}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchActivities", `{"latitude":0,"longitude":0}`),
		textResponse(`{"latitude": 48.8566, "longitude": 2.3522}`),
		textResponse("activities found"),
	}}
	svc, _ := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("things to do in Paris"))
	require.NoError(t, err)

	// The zero placeholders were replaced via the coordinate lookup.
	require.Len(t, llmFake.requests, 3)
	assert.Equal(t, 48.8566, travel.activityParams.Latitude)
	assert.Equal(t, 2.3522, travel.activityParams.Longitude)
	assert.Equal(t, 20, travel.activityParams.Radius)
}

func TestChatProvidedCoordinatesSkipLookup(t *testing.T) {
	travel := &fakeTravel{}
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		toolCallResponse("searchActivities", `{"latitude":51.5074,"longitude":-0.1278,"radius":5}`),
		textResponse("activities found"),
	}}
	svc, _ := newTestService(llmFake, travel)

	_, err := svc.Chat(context.Background(), userTurn("things to do in London"))
	require.NoError(t, err)

	assert.Len(t, llmFake.requests, 2)
	assert.Equal(t, 51.5074, travel.activityParams.Latitude)
	assert.Equal(t, -0.1278, travel.activityParams.Longitude)
	assert.Equal(t, 5, travel.activityParams.Radius)
}

func TestChatClassifiesEmbeddedJSONBlock(t *testing.T) {
	travel := &fakeTravel{}
	answer := "Options below:\n```json\n[{\"type\":\"flight-offer\",\"id\":\"9\",\"itineraries\":[{\"segments\":[{\"carrierCode\":\"6X\"}]}]},{\"type\":\"flight-offer\",\"id\":\"10\",\"itineraries\":[{\"segments\":[{\"carrierCode\":\"BA\"}]}]}]\n```"
	llmFake := &fakeLLM{responses: []openai.ChatCompletionResponse{
		textResponse(answer),
	}}
	svc, _ := newTestService(llmFake, travel)

	resp, err := svc.Chat(context.Background(), userTurn("flights please"))
	require.NoError(t, err)

	assert.NotContains(t, resp.Response, "```json")
	assert.Contains(t, resp.Response, "1 flight options")
	flights := resp.Results[models.CategoryFlights]
	require.Len(t, flights.Items, 1)
	assert.Equal(t, "10", flights.Items[0]["id"])
}
