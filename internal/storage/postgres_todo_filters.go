package storage

import (
	"fmt"
	"strings"

	"github.com/Varun5711/todocal/internal/models"
)

const todoColumns = `id, user_id, title, completed, due_date, completed_at, priority, category, created_at, updated_at`

// Null due dates sort first, as they did in the document store the client
// was built against.
const todoOrder = `ORDER BY due_date ASC NULLS FIRST, created_at DESC, id ASC`

type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		b.args = append(b.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(b.args))
	}
	b.conds = append(b.conds, fmt.Sprintf(format, placeholders...))
}

func (b *whereBuilder) addRange(column string, r models.TimeRange) {
	upper := "<"
	if r.ToInclusive {
		upper = "<="
	}
	b.add(column+" >= %s AND "+column+" "+upper+" %s", r.From, r.To)
}

func (b *whereBuilder) String() string {
	return strings.Join(b.conds, " AND ")
}

// buildTodoWhere renders a filter as a WHERE body and its positional args.
// The owner condition is always first.
func buildTodoWhere(f models.TodoFilter) (string, []any) {
	b := &whereBuilder{}
	b.add("user_id = %s", f.UserID)

	if f.Due != nil {
		b.addRange("due_date", *f.Due)
	}
	if f.Completed != nil {
		b.add("completed = %s", *f.Completed)
	}
	if f.Priority != nil {
		b.add("priority = %s", string(*f.Priority))
	}

	return b.String(), b.args
}

// buildTodoSet renders a patch as a SET body. Positional args continue after
// the offset already used by the caller.
func buildTodoSet(p models.TodoPatch, offset int) (string, []any) {
	var sets []string
	var args []any

	next := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, offset+len(args)))
	}

	if p.Title != nil {
		next("title", *p.Title)
	}
	if p.SetDueDate {
		next("due_date", p.DueDate)
	}
	if p.Priority != nil {
		next("priority", string(*p.Priority))
	}
	if p.SetCategory {
		next("category", p.Category)
	}

	return strings.Join(sets, ", "), args
}
