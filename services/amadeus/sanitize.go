package amadeus

import (
	"regexp"
	"strconv"
	"strings"

	"tripwise/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// validAmenities is the closed vocabulary the hotel-list endpoints
// accept for the amenities filter.
var validAmenities = []string{
	"SWIMMING_POOL", "SPA", "FITNESS_CENTER", "AIR_CONDITIONING", "RESTAURANT",
	"PARKING", "PETS_ALLOWED", "AIRPORT_SHUTTLE", "BUSINESS_CENTER",
	"DISABLED_FACILITIES", "WIFI", "MEETING_ROOMS", "NO_KID_ALLOWED",
	"TENNIS", "GOLF", "KITCHEN", "ANIMAL_WATCHING", "BABY-SITTING",
	"BEACH", "CASINO", "JACUZZI", "SAUNA", "SOLARIUM", "MASSAGE",
	"VALET_PARKING", "BAR", "LOUNGE", "KIDS_WELCOME", "NO_PORN_FILMS",
	"MINIBAR", "TELEVISION", "WI-FI_IN_ROOM", "ROOM_SERVICE",
	"GUARDED_PARKG", "SERV_SPEC_MENU",
}

// amenityMapping translates the casual terms the model produces into
// the provider's vocabulary.
var amenityMapping = map[string]string{
	"pool":            "SWIMMING_POOL",
	"swimming pool":   "SWIMMING_POOL",
	"swim":            "SWIMMING_POOL",
	"fitness":         "FITNESS_CENTER",
	"gym":             "FITNESS_CENTER",
	"workout":         "FITNESS_CENTER",
	"exercise":        "FITNESS_CENTER",
	"wifi":            "WIFI",
	"internet":        "WIFI",
	"wi-fi":           "WIFI",
	"pet friendly":    "PETS_ALLOWED",
	"pets":            "PETS_ALLOWED",
	"dog friendly":    "PETS_ALLOWED",
	"cat friendly":    "PETS_ALLOWED",
	"air conditioned": "AIR_CONDITIONING",
	"a/c":             "AIR_CONDITIONING",
	"ac":              "AIR_CONDITIONING",
	"shuttle":         "AIRPORT_SHUTTLE",
	"hot tub":         "JACUZZI",
}

var (
	ratingsListPattern = regexp.MustCompile(`^[1-5](,[1-5])*$`)
	atLeastPattern     = regexp.MustCompile(`(?i)at\s+least\s+([1-5])|([1-5])\s+star\s+(and\s+above|or\s+higher|or\s+better|\+)`)
	ratingDigitPattern = regexp.MustCompile(`[1-5]`)
)

// FixAmenities normalizes a comma-separated amenity filter, mapping
// synonyms and near-misses to the provider's vocabulary and dropping
// anything unmappable. Duplicates collapse, order preserved.
func FixAmenities(amenitiesStr string) string {
	if amenitiesStr == "" {
		return ""
	}
	logger := utils.GetLogger()

	var validated []string
	for _, raw := range strings.Split(amenitiesStr, ",") {
		amenity := strings.ToUpper(strings.TrimSpace(raw))
		if amenity == "" {
			continue
		}
		if lo.Contains(validAmenities, amenity) {
			validated = append(validated, amenity)
			continue
		}
		if mapped, ok := amenityMapping[strings.ToLower(amenity)]; ok {
			validated = append(validated, mapped)
			continue
		}
		if best := findClosestAmenity(amenity); best != "" {
			logger.Debug("Mapped invalid amenity",
				zap.String("from", amenity), zap.String("to", best))
			validated = append(validated, best)
		} else {
			logger.Warn("Could not map invalid amenity", zap.String("amenity", amenity))
		}
	}

	return strings.Join(lo.Uniq(validated), ",")
}

// findClosestAmenity tries exact substring containment first, then a
// word-overlap score. First match wins on ties.
func findClosestAmenity(input string) string {
	lowered := strings.ToLower(input)
	for _, option := range validAmenities {
		optLower := strings.ToLower(option)
		if strings.Contains(optLower, lowered) || strings.Contains(lowered, optLower) {
			return option
		}
	}

	inputWords := strings.Fields(lowered)
	best := ""
	bestScore := 0
	for _, option := range validAmenities {
		optionWords := strings.FieldsFunc(strings.ToLower(option), func(r rune) bool {
			return r == '_' || r == ' '
		})
		score := 0
		for _, in := range inputWords {
			for _, ow := range optionWords {
				if strings.Contains(ow, in) || strings.Contains(in, ow) {
					score++
					break
				}
			}
		}
		if score > bestScore {
			bestScore = score
			best = option
		}
	}
	return best
}

// FixRatings normalizes a star-rating filter into the provider's
// comma-separated digit form. "at least 3" style phrases expand to
// "3,4,5"; otherwise digits are extracted and deduped. Returns an empty
// string (no filter) when nothing parses.
func FixRatings(ratingsStr string) string {
	if ratingsStr == "" {
		return ""
	}
	if ratingsListPattern.MatchString(ratingsStr) {
		return ratingsStr
	}

	if m := atLeastPattern.FindStringSubmatch(ratingsStr); m != nil {
		digit := m[1]
		if digit == "" {
			digit = m[2]
		}
		min, _ := strconv.Atoi(digit)
		if min >= 1 && min <= 5 {
			var ratings []string
			for i := min; i <= 5; i++ {
				ratings = append(ratings, strconv.Itoa(i))
			}
			return strings.Join(ratings, ",")
		}
	}

	if digits := ratingDigitPattern.FindAllString(ratingsStr, -1); len(digits) > 0 {
		return strings.Join(lo.Uniq(digits), ",")
	}

	utils.GetLogger().Warn("Could not parse ratings filter, dropping it",
		zap.String("input", ratingsStr))
	return ""
}
