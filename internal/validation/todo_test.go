package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Varun5711/todocal/internal/models"
)

func decodePayload(t *testing.T, body string) TodoPayload {
	t.Helper()
	var p TodoPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return p
}

func TestOptionalString_Unmarshal(t *testing.T) {
	p := decodePayload(t, `{"title":"x","dueDate":null,"priority":5}`)

	if !p.Title.Set || p.Title.Null || p.Title.Value != "x" {
		t.Errorf("unexpected title: %+v", p.Title)
	}
	if !p.DueDate.Set || !p.DueDate.Null {
		t.Errorf("expected dueDate to be an explicit null, got %+v", p.DueDate)
	}
	if !p.Priority.NotAText {
		t.Errorf("expected priority to be flagged as non-string, got %+v", p.Priority)
	}
	if p.Category.Set {
		t.Errorf("expected category to be absent, got %+v", p.Category)
	}
}

func TestValidateCreate_Defaults(t *testing.T) {
	draft, errs := ValidateCreate(decodePayload(t, `{"title":"  Pay bills  "}`))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if draft.Title != "Pay bills" {
		t.Errorf("expected trimmed title, got %q", draft.Title)
	}
	if draft.Priority != models.PriorityMedium {
		t.Errorf("expected medium priority, got %s", draft.Priority)
	}
	if draft.DueDate != nil || draft.Category != nil {
		t.Errorf("expected no due date or category, got %v %v", draft.DueDate, draft.Category)
	}
}

func TestValidateCreate_AllFields(t *testing.T) {
	body := `{"title":"Pay bills","dueDate":"2024-03-15","priority":"high","category":" home "}`
	draft, errs := ValidateCreate(decodePayload(t, body))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if draft.DueDate == nil || !draft.DueDate.Equal(want) {
		t.Errorf("expected due date %v, got %v", want, draft.DueDate)
	}
	if draft.Priority != models.PriorityHigh {
		t.Errorf("expected high priority, got %s", draft.Priority)
	}
	if draft.Category == nil || *draft.Category != "home" {
		t.Errorf("expected category 'home', got %v", draft.Category)
	}
}

func TestValidateCreate_EmptyValuesMeanNone(t *testing.T) {
	draft, errs := ValidateCreate(decodePayload(t, `{"title":"a","dueDate":"","priority":"","category":"   "}`))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if draft.DueDate != nil || draft.Category != nil || draft.Priority != models.PriorityMedium {
		t.Errorf("unexpected draft: %+v", draft)
	}
}

func TestValidateCreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"missing title", `{}`, "title", "Title is required"},
		{"blank title", `{"title":"   "}`, "title", "Title is required"},
		{"long title", `{"title":"` + strings.Repeat("a", 201) + `"}`, "title", "Title must be between 1 and 200 characters"},
		{"bad due date", `{"title":"a","dueDate":"tomorrow"}`, "dueDate", "Invalid due date format"},
		{"bad priority", `{"title":"a","priority":"urgent"}`, "priority", "Priority must be low, medium, or high"},
		{"long category", `{"title":"a","category":"` + strings.Repeat("c", 51) + `"}`, "category", "Category cannot exceed 50 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateCreate(decodePayload(t, tt.body))
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if errs[0].Field != tt.field || errs[0].Message != tt.message {
				t.Errorf("expected %s: %s, got %s: %s", tt.field, tt.message, errs[0].Field, errs[0].Message)
			}
			if errs[0].Location != "body" {
				t.Errorf("expected location body, got %s", errs[0].Location)
			}
		})
	}
}

func TestValidateCreate_CollectsAllErrors(t *testing.T) {
	_, errs := ValidateCreate(decodePayload(t, `{"dueDate":"nope","priority":"urgent"}`))
	if len(errs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateUpdate_OnlySuppliedFields(t *testing.T) {
	patch, errs := ValidateUpdate(decodePayload(t, `{"priority":"low"}`))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if patch.Priority == nil || *patch.Priority != models.PriorityLow {
		t.Errorf("expected low priority, got %v", patch.Priority)
	}
	if patch.Title != nil || patch.SetDueDate || patch.SetCategory {
		t.Errorf("expected only priority in patch, got %+v", patch)
	}
}

func TestValidateUpdate_NullClears(t *testing.T) {
	patch, errs := ValidateUpdate(decodePayload(t, `{"dueDate":null,"category":null}`))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if !patch.SetDueDate || patch.DueDate != nil {
		t.Errorf("expected due date clear, got %+v", patch)
	}
	if !patch.SetCategory || patch.Category != nil {
		t.Errorf("expected category clear, got %+v", patch)
	}
}

func TestValidateUpdate_EmptyPatch(t *testing.T) {
	patch, errs := ValidateUpdate(decodePayload(t, `{}`))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if !patch.IsEmpty() {
		t.Errorf("expected empty patch, got %+v", patch)
	}
}

func TestValidateUpdate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty title", `{"title":""}`, "title"},
		{"null title", `{"title":null}`, "title"},
		{"null priority", `{"priority":null}`, "priority"},
		{"bad priority", `{"priority":"HIGH"}`, "priority"},
		{"bad due date", `{"dueDate":"31/12/2024"}`, "dueDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateUpdate(decodePayload(t, tt.body))
			if len(errs) != 1 || errs[0].Field != tt.field {
				t.Errorf("expected one %s error, got %v", tt.field, errs)
			}
		})
	}
}
