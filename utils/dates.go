package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tripwise/config"

	"go.uber.org/zap"
)

// Date parsing errors surfaced to callers that want to apply their own
// fallback. Unparseable input that matches no pattern at all does not
// error; it degrades to the 15th of the month after the anchor so we
// never hand an invalid date to the travel API.
var (
	ErrEmptyDate = fmt.Errorf("date string is required")
)

type UnknownMonthError struct {
	Month string
}

func (e *UnknownMonthError) Error() string {
	return fmt.Sprintf("unknown month: %s", e.Month)
}

type InvalidDayError struct {
	Day string
}

func (e *InvalidDayError) Error() string {
	return fmt.Sprintf("invalid day: %s", e.Day)
}

// monthMap maps month names and abbreviations to their numerical values (1-12).
var monthMap = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// monthOrder lists month keys longest-form first so substring scans prefer
// full names over abbreviations ("march" before "mar").
var monthOrder = []string{
	"january", "february", "march", "april", "june", "july", "august",
	"september", "october", "november", "december", "sept",
	"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep",
	"oct", "nov", "dec",
}

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nextMonthPattern = regexp.MustCompile(`next\s+(\w+)(?:\s+(\d{1,2}))?`)
	monthDayPattern  = regexp.MustCompile(`([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?`)
	dayMonthPattern  = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?([a-z]+)`)
	mmddPattern      = regexp.MustCompile(`^(\d{1,2})[\/\-](\d{1,2})$`)
)

// AnchorDate returns the configured anchor the parser resolves relative
// dates against. Falls back to 2025-04-15 if the configured value is
// malformed.
func AnchorDate() time.Time {
	anchor, err := time.Parse("2006-01-02", config.AppConfig.AnchorDate)
	if err != nil {
		return time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
	}
	return anchor
}

// ParseSmartDate converts relative date expressions into YYYY-MM-DD,
// resolved against the configured anchor date.
func ParseSmartDate(dateStr string) (string, error) {
	return ParseSmartDateAt(dateStr, AnchorDate())
}

// ParseSmartDateAt is ParseSmartDate with an explicit anchor.
func ParseSmartDateAt(dateStr string, anchor time.Time) (string, error) {
	if dateStr == "" {
		return "", ErrEmptyDate
	}

	cleaned := strings.ToLower(strings.TrimSpace(dateStr))
	year, month, day := anchor.Year(), int(anchor.Month()), anchor.Day()

	// Already in YYYY-MM-DD format.
	if isoDatePattern.MatchString(cleaned) {
		return cleaned, nil
	}

	// Relative keywords.
	if strings.Contains(cleaned, "next month") {
		return formatNextMonth(year, month), nil
	}
	if strings.Contains(cleaned, "next week") {
		return anchor.AddDate(0, 0, 7).Format("2006-01-02"), nil
	}
	if strings.Contains(cleaned, "tomorrow") {
		return anchor.AddDate(0, 0, 1).Format("2006-01-02"), nil
	}
	if strings.Contains(cleaned, "today") {
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
	}

	// "next <month> [day]".
	if m := nextMonthPattern.FindStringSubmatch(cleaned); m != nil {
		monthName := m[1]
		targetDay := 15
		if m[2] != "" {
			targetDay, _ = strconv.Atoi(m[2])
		}
		if monthName == "month" {
			return formatNextMonth(year, month), nil
		}
		targetMonth, ok := monthMap[monthName]
		if !ok {
			return "", &UnknownMonthError{Month: monthName}
		}
		return formatRolled(targetMonth, targetDay, year, month, day), nil
	}

	// "<month> <day>" or "<day> of <month>".
	var monthStr, dayStr string
	if m := monthDayPattern.FindStringSubmatch(cleaned); m != nil {
		monthStr, dayStr = m[1], m[2]
	} else if m := dayMonthPattern.FindStringSubmatch(cleaned); m != nil {
		monthStr, dayStr = m[2], m[1]
	}
	if monthStr != "" && dayStr != "" {
		targetMonth, ok := monthMap[monthStr]
		if !ok {
			return "", &UnknownMonthError{Month: monthStr}
		}
		targetDay, err := strconv.Atoi(dayStr)
		if err != nil || targetDay < 1 || targetDay > 31 {
			return "", &InvalidDayError{Day: dayStr}
		}
		return formatRolled(targetMonth, targetDay, year, month, day), nil
	}

	// "MM/DD" or "MM-DD".
	if m := mmddPattern.FindStringSubmatch(cleaned); m != nil {
		targetMonth, _ := strconv.Atoi(m[1])
		targetDay, _ := strconv.Atoi(m[2])
		if targetMonth < 1 || targetMonth > 12 {
			return "", &UnknownMonthError{Month: m[1]}
		}
		if targetDay < 1 || targetDay > 31 {
			return "", &InvalidDayError{Day: m[2]}
		}
		return formatRolled(targetMonth, targetDay, year, month, day), nil
	}

	// Bare month name anywhere in the input, defaulting to the 15th.
	for _, name := range monthOrder {
		if cleaned == name || strings.Contains(cleaned, name) {
			targetMonth := monthMap[name]
			targetYear := year
			if targetMonth < month {
				targetYear++
			}
			return fmt.Sprintf("%04d-%02d-15", targetYear, targetMonth), nil
		}
	}

	// Nothing matched; default to the 15th of next month rather than
	// handing an unparseable string to the travel API.
	GetLogger().Warn("Could not parse date, defaulting to next month",
		zap.String("input", dateStr))
	return formatNextMonth(year, month), nil
}

// formatNextMonth yields the 15th of the month after the anchor,
// wrapping the year at December.
func formatNextMonth(year, month int) string {
	next := month + 1
	if next > 12 {
		next = 1
		year++
	}
	return fmt.Sprintf("%04d-%02d-15", year, next)
}

// formatRolled applies the year-selection rule: dates strictly before
// the anchor month/day roll forward to next year.
func formatRolled(targetMonth, targetDay, year, month, day int) string {
	targetYear := year
	if targetMonth < month || (targetMonth == month && targetDay < day) {
		targetYear++
	}
	return fmt.Sprintf("%04d-%02d-%02d", targetYear, targetMonth, targetDay)
}
