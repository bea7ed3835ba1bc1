package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo field names follow the JSON contract the web client already speaks.
type Todo struct {
	ID          string     `json:"_id"`
	UserID      string     `json:"user"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	Priority    Priority   `json:"priority"`
	Category    *string    `json:"category"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TimeRange is a closed-open window [From, To) unless ToInclusive is set.
type TimeRange struct {
	From        time.Time
	To          time.Time
	ToInclusive bool
}

func (r TimeRange) Contains(t time.Time) bool {
	if t.Before(r.From) {
		return false
	}
	if r.ToInclusive {
		return !t.After(r.To)
	}
	return t.Before(r.To)
}

// TodoFilter selects a user's todos. Nil fields are not applied.
type TodoFilter struct {
	UserID    string
	Due       *TimeRange
	Completed *bool
	Priority  *Priority
}

func (f TodoFilter) Matches(t *Todo) bool {
	if t.UserID != f.UserID {
		return false
	}
	if f.Due != nil && (t.DueDate == nil || !f.Due.Contains(*t.DueDate)) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// TodoPatch carries the fields of a partial update. The Set flags tell a
// missing field apart from an explicit clear.
type TodoPatch struct {
	Title       *string
	SetDueDate  bool
	DueDate     *time.Time
	Priority    *Priority
	SetCategory bool
	Category    *string
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && !p.SetDueDate && p.Priority == nil && !p.SetCategory
}

func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.SetDueDate {
		t.DueDate = p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.SetCategory {
		t.Category = p.Category
	}
}

type MonthlyStats struct {
	Month          string `json:"month"`
	TotalTodos     int64  `json:"totalTodos"`
	CompletedTodos int64  `json:"completedTodos"`
	PendingTodos   int64  `json:"pendingTodos"`
	OverdueTodos   int64  `json:"overdueTodos"`
	CompletionRate int64  `json:"completionRate"`
}
