package validation

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/Varun5711/todocal/internal/models"
)

const (
	MaxTitleLength    = 200
	MaxCategoryLength = 50

	msgTitleRequired  = "Title is required"
	msgTitleLength    = "Title must be between 1 and 200 characters"
	msgInvalidDueDate = "Invalid due date format"
	msgPriority       = "Priority must be low, medium, or high"
	msgCategoryLength = "Category cannot exceed 50 characters"
)

// OptionalString records whether a JSON field was present, null, or a string.
type OptionalString struct {
	Set      bool
	Null     bool
	Value    string
	NotAText bool
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		o.NotAText = true
		o.Value = string(data)
	}
	return nil
}

// blank reports a field that is absent, null, or an empty string.
func (o OptionalString) blank() bool {
	return !o.Set || o.Null || (!o.NotAText && strings.TrimSpace(o.Value) == "")
}

// TodoPayload is the request body of create and patch calls.
type TodoPayload struct {
	Title    OptionalString `json:"title"`
	DueDate  OptionalString `json:"dueDate"`
	Priority OptionalString `json:"priority"`
	Category OptionalString `json:"category"`
}

type TodoDraft struct {
	Title    string
	DueDate  *time.Time
	Priority models.Priority
	Category *string
}

func ValidateCreate(p TodoPayload) (TodoDraft, []apperr.FieldError) {
	var draft TodoDraft
	var errs []apperr.FieldError

	switch {
	case p.Title.blank() || p.Title.NotAText:
		errs = append(errs, bodyError("title", msgTitleRequired, p.Title))
	default:
		title := strings.TrimSpace(p.Title.Value)
		if utf8.RuneCountInString(title) > MaxTitleLength {
			errs = append(errs, bodyError("title", msgTitleLength, p.Title))
		}
		draft.Title = title
	}

	if !p.DueDate.blank() {
		due, err := parseDue(p.DueDate)
		if err != nil {
			errs = append(errs, bodyError("dueDate", msgInvalidDueDate, p.DueDate))
		}
		draft.DueDate = due
	}

	draft.Priority = models.PriorityMedium
	if !p.Priority.blank() {
		priority, ok := parsePriority(p.Priority)
		if !ok {
			errs = append(errs, bodyError("priority", msgPriority, p.Priority))
		}
		draft.Priority = priority
	}

	category, ok := parseCategory(p.Category)
	if !ok {
		errs = append(errs, bodyError("category", msgCategoryLength, p.Category))
	}
	draft.Category = category

	return draft, errs
}

func ValidateUpdate(p TodoPayload) (models.TodoPatch, []apperr.FieldError) {
	var patch models.TodoPatch
	var errs []apperr.FieldError

	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		n := utf8.RuneCountInString(title)
		if p.Title.Null || p.Title.NotAText || n < 1 || n > MaxTitleLength {
			errs = append(errs, bodyError("title", msgTitleLength, p.Title))
		} else {
			patch.Title = &title
		}
	}

	if p.DueDate.Set {
		patch.SetDueDate = true
		if !p.DueDate.blank() {
			due, err := parseDue(p.DueDate)
			if err != nil {
				errs = append(errs, bodyError("dueDate", msgInvalidDueDate, p.DueDate))
			}
			patch.DueDate = due
		}
	}

	if p.Priority.Set {
		priority, ok := parsePriority(p.Priority)
		if !ok || p.Priority.Null {
			errs = append(errs, bodyError("priority", msgPriority, p.Priority))
		} else {
			patch.Priority = &priority
		}
	}

	if p.Category.Set {
		category, ok := parseCategory(p.Category)
		if !ok {
			errs = append(errs, bodyError("category", msgCategoryLength, p.Category))
		}
		patch.SetCategory = true
		patch.Category = category
	}

	return patch, errs
}

func parseDue(o OptionalString) (*time.Time, error) {
	if o.NotAText {
		return nil, ErrInvalidDate
	}
	due, err := ParseISODate(strings.TrimSpace(o.Value))
	if err != nil {
		return nil, err
	}
	return &due, nil
}

func parsePriority(o OptionalString) (models.Priority, bool) {
	priority := models.Priority(o.Value)
	return priority, !o.NotAText && priority.Valid()
}

func parseCategory(o OptionalString) (*string, bool) {
	if o.blank() {
		return nil, true
	}
	if o.NotAText {
		return nil, false
	}
	category := strings.TrimSpace(o.Value)
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return nil, false
	}
	return &category, true
}

func bodyError(field, message string, o OptionalString) apperr.FieldError {
	fe := apperr.FieldError{Field: field, Message: message, Location: "body"}
	if o.Set && !o.Null {
		fe.Value = o.Value
	}
	return fe
}
