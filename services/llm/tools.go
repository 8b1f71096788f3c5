package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

// Tool function names dispatched by the orchestrator.
const (
	ToolSearchFlights         = "searchFlights"
	ToolSearchHotelsByCity    = "searchHotelsByCity"
	ToolSearchHotelsByGeocode = "searchHotelsByGeocode"
	ToolSearchActivities      = "searchActivities"
	ToolSearchTransfers       = "searchTransfers"
	ToolGetHotelOffers        = "getHotelOffers"
	ToolGetHotelOfferByID     = "getHotelOfferById"
)

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

// TravelTools returns the tool schemas offered to the model. Parameters
// stay as map[string]any so the degradation ladder can walk and trim
// the descriptions. The schemas deliberately advertise more flight
// parameters than the provider accepts; the sanitizer drops the rest.
func TravelTools() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSearchFlights,
				Description: "Search for flights between two locations on specific dates",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"originLocationCode":      prop("string", `IATA code of the origin airport (e.g., "LHR" for London Heathrow)`),
						"destinationLocationCode": prop("string", `IATA code of the destination airport (e.g., "JFK" for New York JFK)`),
						"departureDate":           prop("string", "Departure date in YYYY-MM-DD format"),
						"returnDate":              prop("string", "Return date in YYYY-MM-DD format (optional for one-way flights)"),
						"adults":                  prop("integer", "Number of adult passengers (default: 1)"),
						"children":                prop("integer", "Number of child passengers (default: 0)"),
						"infants":                 prop("integer", "Number of infant passengers (default: 0)"),
						"travelClass":             prop("string", "Travel class (ECONOMY, PREMIUM_ECONOMY, BUSINESS, FIRST)"),
						"nonStop":                 prop("boolean", "Whether to search for non-stop flights only"),
						"currencyCode":            prop("string", `Currency code for prices (e.g., "USD", "EUR")`),
						"maxPrice":                prop("integer", "Maximum price in the specified currency"),
						"includedAirlineCodes":    prop("string", "Comma-separated list of airline codes to include"),
						"excludedAirlineCodes":    prop("string", "Comma-separated list of airline codes to exclude"),
						"paymentPolicy":           prop("string", "Payment policy (NONE, INSTANT, DEFERRED)"),
						"sort":                    prop("string", "Sort order (PRICE, DURATION, OUTBOUND_DEPARTURE, OUTBOUND_ARRIVAL)"),
					},
					"required": []string{"originLocationCode", "destinationLocationCode", "departureDate"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSearchHotelsByCity,
				Description: "Search for hotels in a city by IATA code",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"cityCode":   prop("string", `IATA code of the city (e.g., "NYC" for New York)`),
						"amenities":  prop("string", `Comma-separated list of amenities (e.g., "SWIMMING_POOL,SPA,WIFI")`),
						"ratings":    prop("string", `Comma-separated list of star ratings (e.g., "3,4,5")`),
						"radius":     prop("integer", "Search radius in kilometers"),
						"radiusUnit": prop("string", "Unit for radius (KM, MI)"),
						"chainCodes": prop("string", "Comma-separated list of hotel chain codes"),
					},
					"required": []string{"cityCode"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSearchHotelsByGeocode,
				Description: "Search for hotels near specific coordinates",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"latitude":   prop("number", "Latitude coordinate"),
						"longitude":  prop("number", "Longitude coordinate"),
						"radius":     prop("integer", "Search radius in kilometers"),
						"radiusUnit": prop("string", "Unit for radius (KM, MI)"),
						"amenities":  prop("string", "Comma-separated list of amenities"),
						"ratings":    prop("string", "Comma-separated list of star ratings"),
					},
					"required": []string{"latitude", "longitude"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSearchActivities,
				Description: "Search for activities near specific coordinates",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"latitude":  prop("number", "Latitude coordinate"),
						"longitude": prop("number", "Longitude coordinate"),
						"radius":    prop("integer", "Search radius in kilometers"),
						"category":  prop("string", "Activity category"),
					},
					"required": []string{"latitude", "longitude"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSearchTransfers,
				Description: "Search for transfers between locations",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"startLocationCode": prop("string", `IATA code of the start location (e.g., "CDG" for Paris Charles de Gaulle)`),
						"endLocationCode":   prop("string", `IATA code of the end location (e.g., "ORY" for Paris Orly)`),
						"endAddressLine":    prop("string", "Street address of the drop-off location"),
						"endCityName":       prop("string", "City of the drop-off location"),
						"endCountryCode":    prop("string", "Country code of the drop-off location"),
						"endName":           prop("string", `Name of the drop-off location (e.g., "Eiffel Tower")`),
						"endGeoCode":        prop("string", `Drop-off coordinates as "latitude,longitude"`),
						"transferDate":      prop("string", "Transfer date in YYYY-MM-DD format"),
						"transferType":      prop("string", "Transfer type (PRIVATE, SHARED)"),
						"passengers":        prop("integer", "Number of passengers"),
					},
					"required": []string{"startLocationCode", "endLocationCode", "transferDate"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolGetHotelOffers,
				Description: "Get room availability and pricing for specific hotels by their IDs",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"hotelIds":     prop("array", "List of hotel IDs from a prior hotel search"),
						"adults":       prop("integer", "Number of adult guests (default: 1)"),
						"checkInDate":  prop("string", "Check-in date in YYYY-MM-DD format"),
						"checkOutDate": prop("string", "Check-out date in YYYY-MM-DD format"),
						"roomQuantity": prop("integer", "Number of rooms (default: 1)"),
						"priceRange":   prop("string", `Price range (e.g., "100-200")`),
						"currency":     prop("string", "Currency code for prices"),
						"boardType":    prop("string", "Board type (ROOM_ONLY, BREAKFAST, HALF_BOARD, FULL_BOARD, ALL_INCLUSIVE)"),
					},
					"required": []string{"hotelIds"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolGetHotelOfferByID,
				Description: "Get detailed information about one specific hotel offer",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"offerId": prop("string", "ID of the hotel offer to look up"),
						"lang":    prop("string", "Language code for the response"),
					},
					"required": []string{"offerId"},
				},
			},
		},
	}
}
