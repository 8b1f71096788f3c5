package results

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"tripwise/config"
	"tripwise/models"

	"github.com/samber/lo"
)

// Limits caps how many classified items are kept per category.
type Limits struct {
	Flights    int
	Hotels     int
	Activities int
	Transfers  int
}

// LimitsFromConfig reads the per-category display caps.
func LimitsFromConfig() Limits {
	cfg := config.AppConfig
	return Limits{
		Flights:    cfg.MaxFlightResults,
		Hotels:     cfg.MaxHotelResults,
		Activities: cfg.MaxActivityResults,
		Transfers:  cfg.MaxTransferResults,
	}
}

// DataArray extracts the "data" array from a raw provider response, or
// treats the payload as a bare array. Returns nil when neither shape
// matches.
func DataArray(raw json.RawMessage) []map[string]any {
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data
	}
	var bare []map[string]any
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	return nil
}

// Classify buckets a result array by sniffing the shape of its first
// element, applies the non-operational carrier filter and the
// per-category cap, and tags untyped entries.
func Classify(items []map[string]any, limits Limits) models.ClassifiedResults {
	if len(items) == 0 {
		return models.ClassifiedResults{Category: models.CategoryGeneric, Tag: "generic"}
	}
	first := items[0]

	switch {
	case first["type"] == "flight-offer":
		flights := FilterNonOperational(items)
		return models.ClassifiedResults{
			Category: models.CategoryFlights,
			Items:    capItems(flights, limits.Flights),
		}

	case isHotel(first):
		return models.ClassifiedResults{
			Category: models.CategoryHotels,
			Items:    capItems(items, limits.Hotels),
		}

	case first["type"] == "activity":
		return models.ClassifiedResults{
			Category: models.CategoryActivities,
			Items:    capItems(tagItems(items, "activity"), limits.Activities),
		}

	case first["type"] == "transfer-offer":
		transfers := tagItems(items, "transfer-offer")
		for _, t := range transfers {
			RecomputeTransferTotal(t)
		}
		return models.ClassifiedResults{
			Category: models.CategoryTransfers,
			Items:    capItems(transfers, limits.Transfers),
		}

	default:
		tag := "generic"
		if t, ok := first["type"].(string); ok && t != "" {
			tag = t
		}
		return models.ClassifiedResults{
			Category: models.CategoryGeneric,
			Tag:      tag,
			Items:    items,
		}
	}
}

func isHotel(item map[string]any) bool {
	if _, ok := item["hotelId"]; ok {
		return true
	}
	_, hasName := item["name"]
	_, hasGeo := item["geoCode"]
	if hasName && hasGeo {
		return true
	}
	_, hasChain := item["chainCode"]
	return hasChain
}

// FilterNonOperational drops flight offers where any segment of any
// itinerary is flown by carrier 6X, the provider's test airline. The
// filter applies on every path results enter the system.
func FilterNonOperational(items []map[string]any) []map[string]any {
	return lo.Filter(items, func(item map[string]any, _ int) bool {
		if item["type"] != "flight-offer" {
			return true
		}
		return !hasCarrier(item, "6X")
	})
}

func hasCarrier(offer map[string]any, code string) bool {
	itineraries, _ := offer["itineraries"].([]any)
	for _, it := range itineraries {
		itinerary, _ := it.(map[string]any)
		segments, _ := itinerary["segments"].([]any)
		for _, s := range segments {
			segment, _ := s.(map[string]any)
			if segment["carrierCode"] == code {
				return true
			}
		}
	}
	return false
}

// RecomputeTransferTotal rebuilds a transfer quotation's total from its
// components (base + taxes - discount + first fee). The provider's own
// total is known to disagree with its components; the recomputed value
// wins unless it comes out to zero.
func RecomputeTransferTotal(transfer map[string]any) {
	quotation, _ := transfer["quotation"].(map[string]any)
	if quotation == nil {
		return
	}

	total := 0.0
	total += componentAmount(quotation, "base")
	total += componentAmount(quotation, "totalTaxes")
	total -= componentAmount(quotation, "discount")
	if fees, ok := quotation["fees"].([]any); ok && len(fees) > 0 {
		if fee, ok := fees[0].(map[string]any); ok {
			total += parseAmount(fee["monetaryAmount"])
		}
	}

	if total != 0 {
		quotation["monetaryAmount"] = strconv.FormatFloat(total, 'f', 2, 64)
	}
}

func componentAmount(quotation map[string]any, key string) float64 {
	component, _ := quotation[key].(map[string]any)
	if component == nil {
		return 0
	}
	return parseAmount(component["monetaryAmount"])
}

func parseAmount(v any) float64 {
	switch amount := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(amount, 64)
		return f
	case float64:
		return amount
	}
	return 0
}

func tagItems(items []map[string]any, tag string) []map[string]any {
	tagged := make([]map[string]any, len(items))
	for i, item := range items {
		copied := make(map[string]any, len(item)+1)
		for k, v := range item {
			copied[k] = v
		}
		if _, ok := copied["type"]; !ok {
			copied["type"] = tag
		}
		tagged[i] = copied
	}
	return tagged
}

func capItems(items []map[string]any, limit int) []map[string]any {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var jsonBlockPattern = regexp.MustCompile("(?s)```json\\n(.*?)\\n```")

// ExtractJSONBlock pulls the first fenced JSON array out of assistant
// text. Returns false when there is no block or it does not parse as an
// object array.
func ExtractJSONBlock(text string) ([]map[string]any, bool) {
	m := jsonBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(m[1]), &items); err != nil {
		return nil, false
	}
	return items, true
}

// ReplaceJSONBlock swaps the first fenced JSON block in assistant text
// for a short human-readable summary.
func ReplaceJSONBlock(text, summary string) string {
	loc := jsonBlockPattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + summary + text[loc[1]:]
}

// Summary phrases a classified set the way the final answer presents
// embedded results.
func Summary(results models.ClassifiedResults) string {
	n := len(results.Items)
	switch results.Category {
	case models.CategoryFlights:
		return fmt.Sprintf("✈️ I found %d flight options. You can view the details in the sidebar.", n)
	case models.CategoryHotels:
		return fmt.Sprintf("🏨 I found %d hotels matching your criteria. You can view the details in the sidebar.", n)
	case models.CategoryActivities:
		return fmt.Sprintf("🏞️ I found %d activities matching your criteria. You can view the details in the sidebar.", n)
	case models.CategoryTransfers:
		return fmt.Sprintf("🚕 I found %d transfer options matching your criteria. You can view the details in the sidebar.", n)
	}
	return fmt.Sprintf("I found %d results. You can view the details in the sidebar.", n)
}
