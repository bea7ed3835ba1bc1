package validation

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrInvalidDate  = errors.New("invalid ISO 8601 date")
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")
)

// Layouts without a zone are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

var monthRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

func ParseISODate(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseMonth reads a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	if !monthRegex.MatchString(s) {
		return 0, 0, ErrInvalidMonth
	}

	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	if month < 1 || month > 12 {
		return 0, 0, ErrInvalidMonth
	}

	return year, time.Month(month), nil
}
