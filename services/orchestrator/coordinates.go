package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"tripwise/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// New York City center, the fallback when no coordinates can be
// resolved for an activity search.
const (
	fallbackLatitude  = 40.7128
	fallbackLongitude = -74.0060
)

var cityNamePattern = regexp.MustCompile(`in\s+([a-zA-Z\s]+)`)

// lookupCoordinates resolves a city's coordinates for an activity
// search that arrived without them. The city name is scraped from the
// tool arguments or the user's message, then a narrowly-scoped model
// call produces the coordinate pair. Anything that goes wrong falls
// back to New York City.
func (s *DefaultChatService) lookupCoordinates(ctx context.Context, args map[string]any, latestUserMessage string) (float64, float64) {
	logger := utils.GetLogger()

	cityQuery := latestUserMessage
	if name, ok := args["cityName"].(string); ok && name != "" {
		cityQuery = name
	}
	cityName := cityQuery
	if m := cityNamePattern.FindStringSubmatch(cityQuery); m != nil {
		cityName = m[1]
	}

	prompt := fmt.Sprintf(`What are the latitude and longitude coordinates for %s? Respond with only the coordinates in JSON format like: {"latitude": 51.5074, "longitude": -0.1278}`, cityName)

	response, err := s.LLM.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, nil)
	if err != nil || len(response.Choices) == 0 {
		logger.Error("Coordinate lookup failed, falling back to NYC",
			zap.String("city", cityName), zap.Error(err))
		return fallbackLatitude, fallbackLongitude
	}

	var coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &coordinates); err != nil ||
		coordinates.Latitude == 0 || coordinates.Longitude == 0 {
		logger.Error("Could not parse coordinates, falling back to NYC",
			zap.String("city", cityName), zap.Error(err))
		return fallbackLatitude, fallbackLongitude
	}

	logger.Debug("Resolved coordinates",
		zap.String("city", cityName),
		zap.Float64("latitude", coordinates.Latitude),
		zap.Float64("longitude", coordinates.Longitude))
	return coordinates.Latitude, coordinates.Longitude
}
