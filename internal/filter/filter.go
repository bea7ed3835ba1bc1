// Package filter turns list query parameters into a todo filter.
package filter

import (
	"strings"
	"time"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/Varun5711/todocal/internal/models"
	"github.com/Varun5711/todocal/internal/validation"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Params holds the raw query string values. Empty means absent.
type Params struct {
	Date      string `query:"date"`
	Month     string `query:"month"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Status    string `query:"status"`
	Priority  string `query:"priority"`
}

// Build validates p and returns the filter for userID. Due-date constraints
// are applied date, then month, then startDate/endDate; each one replaces
// the previous, so the explicit range wins when several are given.
func Build(userID string, p Params) (models.TodoFilter, error) {
	f := models.TodoFilter{UserID: userID}
	var errs []apperr.FieldError

	if p.Date != "" {
		d, err := validation.ParseISODate(p.Date)
		if err != nil {
			errs = append(errs, queryError("date", "Invalid date format", p.Date))
		} else {
			f.Due = DayRange(d)
		}
	}

	if p.Month != "" {
		year, month, err := validation.ParseMonth(p.Month)
		if err != nil {
			errs = append(errs, queryError("month", "Month must be in YYYY-MM format", p.Month))
		} else {
			r := MonthRange(year, month)
			f.Due = &r
		}
	}

	var start, end time.Time
	var startOK, endOK bool
	if p.StartDate != "" {
		var err error
		if start, err = validation.ParseISODate(p.StartDate); err != nil {
			errs = append(errs, queryError("startDate", "Invalid start date format", p.StartDate))
		} else {
			startOK = true
		}
	}
	if p.EndDate != "" {
		var err error
		if end, err = validation.ParseISODate(p.EndDate); err != nil {
			errs = append(errs, queryError("endDate", "Invalid end date format", p.EndDate))
		} else {
			endOK = true
		}
	}
	if startOK && endOK {
		f.Due = &models.TimeRange{From: start, To: end, ToInclusive: true}
	}

	switch p.Status {
	case "":
	case StatusCompleted, StatusPending:
		completed := p.Status == StatusCompleted
		f.Completed = &completed
	default:
		errs = append(errs, queryError("status", "Status must be 'completed' or 'pending'", p.Status))
	}

	if p.Priority != "" {
		priority := models.Priority(p.Priority)
		if !priority.Valid() {
			errs = append(errs, queryError("priority", "Invalid priority level", p.Priority))
		} else {
			f.Priority = &priority
		}
	}

	if len(errs) > 0 {
		return models.TodoFilter{}, apperr.Validation("Validation failed", errs...)
	}
	return f, nil
}

// DayRange covers the 24 hours starting at d.
func DayRange(d time.Time) *models.TimeRange {
	return &models.TimeRange{From: d, To: d.Add(24 * time.Hour)}
}

// MonthRange spans the first instant of the month to 23:59:59 on its last day, UTC.
func MonthRange(year int, month time.Month) models.TimeRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).Add(-time.Second)
	return models.TimeRange{From: first, To: last, ToInclusive: true}
}

// FormatMonth renders a month as YYYY-MM.
func FormatMonth(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func queryError(field, message, value string) apperr.FieldError {
	return apperr.FieldError{
		Field:    field,
		Message:  message,
		Value:    strings.TrimSpace(value),
		Location: "query",
	}
}
