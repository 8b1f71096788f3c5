package amadeus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tripwise/utils"

	"go.uber.org/zap"
)

// FlightSearchParams carries the fields the flight-offers endpoint
// accepts. The LLM routinely invents extra arguments (nonStop, sort,
// maxPrice); decoding its JSON into this struct drops them.
type FlightSearchParams struct {
	OriginLocationCode      string `json:"originLocationCode"`
	DestinationLocationCode string `json:"destinationLocationCode"`
	DepartureDate           string `json:"departureDate"`
	ReturnDate              string `json:"returnDate,omitempty"`
	Adults                  int    `json:"adults"`
	Children                int    `json:"children,omitempty"`
	Infants                 int    `json:"infants,omitempty"`
	TravelClass             string `json:"travelClass,omitempty"`
	CurrencyCode            string `json:"currencyCode,omitempty"`
	Max                     int    `json:"max,omitempty"`
}

// SearchFlights queries flight offers between two IATA locations.
// Currency defaults to USD.
func (c *Client) SearchFlights(ctx context.Context, params FlightSearchParams) (json.RawMessage, error) {
	if params.CurrencyCode == "" {
		params.CurrencyCode = "USD"
	}

	query := url.Values{}
	query.Set("originLocationCode", params.OriginLocationCode)
	query.Set("destinationLocationCode", params.DestinationLocationCode)
	query.Set("departureDate", params.DepartureDate)
	query.Set("currencyCode", params.CurrencyCode)
	query.Set("adults", strconv.Itoa(params.Adults))
	if params.ReturnDate != "" {
		query.Set("returnDate", params.ReturnDate)
	}
	if params.Children > 0 {
		query.Set("children", strconv.Itoa(params.Children))
	}
	if params.Infants > 0 {
		query.Set("infants", strconv.Itoa(params.Infants))
	}
	if params.TravelClass != "" {
		query.Set("travelClass", params.TravelClass)
	}
	if params.Max > 0 {
		query.Set("max", strconv.Itoa(params.Max))
	}

	return c.request(ctx, http.MethodGet, "/v2/shopping/flight-offers", query, nil)
}

// HotelListParams covers both hotel-list lookups. CityCode drives the
// by-city endpoint; Latitude/Longitude drive by-geocode.
type HotelListParams struct {
	CityCode    string  `json:"cityCode,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Radius      int     `json:"radius,omitempty"`
	RadiusUnit  string  `json:"radiusUnit,omitempty"`
	ChainCodes  string  `json:"chainCodes,omitempty"`
	Amenities   string  `json:"amenities,omitempty"`
	Ratings     string  `json:"ratings,omitempty"`
	HotelSource string  `json:"hotelSource,omitempty"`
}

func (p HotelListParams) sharedQuery() url.Values {
	query := url.Values{}
	if p.Radius > 0 {
		query.Set("radius", strconv.Itoa(p.Radius))
	}
	if p.RadiusUnit != "" {
		query.Set("radiusUnit", p.RadiusUnit)
	}
	if p.ChainCodes != "" {
		query.Set("chainCodes", p.ChainCodes)
	}
	if p.Amenities != "" {
		query.Set("amenities", p.Amenities)
	}
	if p.Ratings != "" {
		query.Set("ratings", p.Ratings)
	}
	if p.HotelSource != "" {
		query.Set("hotelSource", p.HotelSource)
	}
	return query
}

// SearchHotelsByCity lists hotels in a city by IATA city code.
func (c *Client) SearchHotelsByCity(ctx context.Context, params HotelListParams) (json.RawMessage, error) {
	if params.CityCode == "" {
		return nil, &ValidationError{Message: "hotel search by city requires cityCode"}
	}
	query := params.sharedQuery()
	query.Set("cityCode", params.CityCode)
	return c.request(ctx, http.MethodGet, "/v1/reference-data/locations/hotels/by-city", query, nil)
}

// SearchHotelsByGeocode lists hotels around a coordinate pair.
func (c *Client) SearchHotelsByGeocode(ctx context.Context, params HotelListParams) (json.RawMessage, error) {
	query := params.sharedQuery()
	query.Set("latitude", formatCoord(params.Latitude))
	query.Set("longitude", formatCoord(params.Longitude))
	return c.request(ctx, http.MethodGet, "/v1/reference-data/locations/hotels/by-geocode", query, nil)
}

// ActivitySearchParams locates tours and activities around a point.
type ActivitySearchParams struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    int     `json:"radius,omitempty"`
}

// SearchActivities queries activities near a coordinate pair. Radius
// defaults to 20 km.
func (c *Client) SearchActivities(ctx context.Context, params ActivitySearchParams) (json.RawMessage, error) {
	if params.Radius == 0 {
		params.Radius = 20
	}
	query := url.Values{}
	query.Set("latitude", formatCoord(params.Latitude))
	query.Set("longitude", formatCoord(params.Longitude))
	query.Set("radius", strconv.Itoa(params.Radius))
	return c.request(ctx, http.MethodGet, "/v1/shopping/activities", query, nil)
}

// SearchTransfers posts a transfer-offer request. The body is kept as a
// free-form map because the endpoint accepts many optional shapes; this
// method normalizes dates, backfills well-known landmark codes, and
// validates the minimum pickup/drop-off fields before sending.
func (c *Client) SearchTransfers(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	logger := utils.GetLogger()
	formatted := make(map[string]any, len(body))
	for k, v := range body {
		formatted[k] = v
	}

	if date, ok := formatted["transferDate"].(string); ok && formatted["startDateTime"] == nil {
		parsed, err := utils.ParseSmartDate(date)
		if err != nil {
			parsed = utils.AnchorDate().Format("2006-01-02")
		}
		formatted["startDateTime"] = parsed + "T10:30:00"
		delete(formatted, "transferDate")
		logger.Debug("Converted transferDate to startDateTime",
			zap.Any("startDateTime", formatted["startDateTime"]))
	}

	if formatted["endLocationCode"] == nil && formatted["endGeoCode"] == nil {
		logger.Warn("Transfer request missing endLocationCode and endGeoCode")
		if name, ok := formatted["endName"].(string); ok {
			lower := strings.ToLower(name)
			switch {
			case strings.Contains(lower, "orly"):
				formatted["endLocationCode"] = "ORY"
				logger.Info("Backfilled ORY as endLocationCode from destination name")
			case strings.Contains(lower, "charles de gaulle"):
				formatted["endLocationCode"] = "CDG"
				logger.Info("Backfilled CDG as endLocationCode from destination name")
			}
		}
	}

	if formatted["startLocationCode"] == nil && formatted["startGeoCode"] == nil {
		return nil, &ValidationError{Message: "Transfer request requires either startLocationCode or startGeoCode"}
	}
	if formatted["endLocationCode"] == nil && formatted["endAddressLine"] == nil {
		return nil, &ValidationError{Message: "Transfer request requires either endLocationCode, endAddressLine, or more specific destination details"}
	}

	return c.request(ctx, http.MethodPost, "/v1/shopping/transfer-offers", nil, formatted)
}

// HotelOffersParams prices specific hotels for a stay window.
type HotelOffersParams struct {
	HotelIDs           []string `json:"hotelIds"`
	Adults             int      `json:"adults,omitempty"`
	CheckInDate        string   `json:"checkInDate,omitempty"`
	CheckOutDate       string   `json:"checkOutDate,omitempty"`
	CountryOfResidence string   `json:"countryOfResidence,omitempty"`
	RoomQuantity       int      `json:"roomQuantity,omitempty"`
	PriceRange         string   `json:"priceRange,omitempty"`
	Currency           string   `json:"currency,omitempty"`
	PaymentPolicy      string   `json:"paymentPolicy,omitempty"`
	BoardType          string   `json:"boardType,omitempty"`
	IncludeClosed      bool     `json:"includeClosed,omitempty"`
	BestRateOnly       *bool    `json:"bestRateOnly,omitempty"`
	Lang               string   `json:"lang,omitempty"`
}

// GetHotelOffers fetches priced offers for a set of hotel IDs. Missing
// stay dates default to the anchor day and the day after; occupancy and
// payment fields get the provider's expected defaults.
func (c *Client) GetHotelOffers(ctx context.Context, params HotelOffersParams) (json.RawMessage, error) {
	if len(params.HotelIDs) == 0 {
		return nil, &ValidationError{Message: "hotel offers search requires at least one hotelId"}
	}
	if params.Adults == 0 {
		params.Adults = 1
	}
	if params.RoomQuantity == 0 {
		params.RoomQuantity = 1
	}
	if params.PaymentPolicy == "" {
		params.PaymentPolicy = "NONE"
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}
	bestRateOnly := true
	if params.BestRateOnly != nil {
		bestRateOnly = *params.BestRateOnly
	}
	anchor := utils.AnchorDate()
	if params.CheckInDate == "" {
		params.CheckInDate = anchor.Format("2006-01-02")
	}
	if params.CheckOutDate == "" {
		params.CheckOutDate = anchor.AddDate(0, 0, 1).Format("2006-01-02")
	}

	query := url.Values{}
	query.Set("hotelIds", strings.Join(params.HotelIDs, ","))
	query.Set("adults", strconv.Itoa(params.Adults))
	query.Set("roomQuantity", strconv.Itoa(params.RoomQuantity))
	query.Set("paymentPolicy", params.PaymentPolicy)
	query.Set("currency", params.Currency)
	query.Set("bestRateOnly", strconv.FormatBool(bestRateOnly))
	query.Set("checkInDate", params.CheckInDate)
	query.Set("checkOutDate", params.CheckOutDate)
	if params.CountryOfResidence != "" {
		query.Set("countryOfResidence", params.CountryOfResidence)
	}
	if params.PriceRange != "" {
		query.Set("priceRange", params.PriceRange)
	}
	if params.BoardType != "" {
		query.Set("boardType", params.BoardType)
	}
	if params.IncludeClosed {
		query.Set("includeClosed", "true")
	}
	if params.Lang != "" {
		query.Set("lang", params.Lang)
	}

	return c.request(ctx, http.MethodGet, "/v3/shopping/hotel-offers", query, nil)
}

// GetHotelOfferByID fetches the details of one priced hotel offer.
func (c *Client) GetHotelOfferByID(ctx context.Context, offerID, lang string) (json.RawMessage, error) {
	if offerID == "" {
		return nil, &ValidationError{Message: "hotel offer lookup requires an offerId"}
	}
	var query url.Values
	if lang != "" {
		query = url.Values{}
		query.Set("lang", lang)
	}
	return c.request(ctx, http.MethodGet, "/v3/shopping/hotel-offers/"+url.PathEscape(offerID), query, nil)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
