package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Varun5711/todocal/internal/auth"
	"github.com/Varun5711/todocal/internal/cache"
	"github.com/Varun5711/todocal/internal/logger"
	"github.com/Varun5711/todocal/internal/middleware"
	"github.com/Varun5711/todocal/internal/models"
	"github.com/Varun5711/todocal/internal/service"
	"github.com/Varun5711/todocal/internal/storage"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "server-test-secret"

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

type testServer struct {
	app   *fiber.App
	clock *clock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.New("server-test")
	clk := &clock{now: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}

	users := service.NewUserService(
		storage.NewMemoryUserStorage(),
		auth.NewPasswordHasher(bcrypt.MinCost),
		auth.NewJWTManager(testSecret, auth.DefaultTokenDuration),
		cache.NewMultiTierCache(100, nil, time.Minute),
		log,
	)
	todos := service.NewTodoService(storage.NewMemoryTodoStorage(), clk.Now)

	app := New(Deps{
		Users:       users,
		Todos:       todos,
		Log:         log,
		Environment: "test",
		CORSOrigin:  "http://localhost:5173",
		Clock:       clk.Now,
	})

	return &testServer{app: app, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("failed to decode %s: %v", data, err)
	}
	return v
}

type authBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *testServer) register(t *testing.T, email string) authBody {
	t.Helper()
	status, data := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Tester",
		"email":    email,
		"password": "secret1",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d: %s", status, data)
	}
	return decode[authBody](t, data)
}

func (s *testServer) createTodo(t *testing.T, token string, body map[string]interface{}) models.Todo {
	t.Helper()
	status, data := s.do(t, http.MethodPost, "/api/todos", token, body)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from create, got %d: %s", status, data)
	}
	return decode[models.Todo](t, data)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	status, data := s.do(t, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	body := decode[map[string]string](t, data)
	if body["status"] != "OK" || body["environment"] != "test" || body["timestamp"] != "2024-03-05T09:00:00Z" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	registered := s.register(t, "ada@example.com")
	if !registered.Success || registered.Token == "" || registered.User.Email != "ada@example.com" {
		t.Fatalf("unexpected register body: %+v", registered)
	}

	status, data := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret1",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", status, data)
	}
	login := decode[authBody](t, data)

	status, data = s.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d: %s", status, data)
	}
	me := decode[authBody](t, data)
	if me.User.ID != registered.User.ID {
		t.Errorf("expected me to return %s, got %s", registered.User.ID, me.User.ID)
	}
	if bytes.Contains(data, []byte("password")) {
		t.Errorf("password material leaked: %s", data)
	}
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "dup@example.com")

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"missing fields", map[string]string{"email": "x@example.com"}, "Please provide name, email, and password"},
		{"short password", map[string]string{"name": "X", "email": "x@example.com", "password": "123"}, "Password must be at least 6 characters long"},
		{"duplicate", map[string]string{"name": "X", "email": "DUP@example.com", "password": "secret1"}, "User with this email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
			body := decode[middleware.ErrorResponse](t, data)
			if body.Error.Message != tt.message || body.Error.Status != http.StatusBadRequest {
				t.Errorf("unexpected error: %+v", body.Error)
			}
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ada@example.com")

	status, data := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if body := decode[middleware.ErrorResponse](t, data); body.Error.Message != "Invalid email or password" {
		t.Errorf("unexpected message: %s", body.Error.Message)
	}
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "ada@example.com")

	expired, _, err := auth.NewJWTManager(testSecret, -time.Hour).GenerateToken(user.User.ID)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	forged, _, _ := auth.NewJWTManager("another-secret", time.Hour).GenerateToken(user.User.ID)
	orphan, _, _ := auth.NewJWTManager(testSecret, time.Hour).GenerateToken("00000000-0000-0000-0000-000000000000")

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"no token", "", "No token provided. Please login to access this resource."},
		{"expired", expired, "Token expired. Please login again."},
		{"bad signature", forged, "Invalid token. Please login again."},
		{"unknown user", orphan, "User not found. Token is invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/auth/me", "/api/todos"} {
				status, data := s.do(t, http.MethodGet, path, tt.token, nil)
				if status != http.StatusUnauthorized {
					t.Fatalf("%s: expected 401, got %d", path, status)
				}
				if body := decode[middleware.ErrorResponse](t, data); body.Error.Message != tt.message {
					t.Errorf("%s: expected %q, got %q", path, tt.message, body.Error.Message)
				}
			}
		})
	}
}

func TestPayBillsScenario(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	created := s.createTodo(t, token, map[string]interface{}{
		"title":    "Pay bills",
		"dueDate":  "2024-03-10",
		"priority": "high",
	})
	if created.Completed || created.CompletedAt != nil || created.Priority != models.PriorityHigh {
		t.Fatalf("unexpected created todo: %+v", created)
	}

	status, data := s.do(t, http.MethodGet, "/api/todos?month=2024-03", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	listed := decode[[]models.Todo](t, data)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected exactly the created todo, got %+v", listed)
	}

	status, data = s.do(t, http.MethodPut, "/api/todos/"+created.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from toggle, got %d: %s", status, data)
	}
	toggled := decode[models.Todo](t, data)
	if !toggled.Completed || toggled.CompletedAt == nil {
		t.Errorf("expected completed with timestamp, got %+v", toggled)
	}

	status, data = s.do(t, http.MethodGet, "/api/todos/stats/2024-03", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from stats, got %d: %s", status, data)
	}
	stats := decode[models.MonthlyStats](t, data)
	if stats.Month != "2024-03" || stats.TotalTodos != 1 || stats.CompletedTodos != 1 || stats.PendingTodos != 0 || stats.CompletionRate != 100 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token
	created := s.createTodo(t, token, map[string]interface{}{"title": "task"})

	s.do(t, http.MethodPut, "/api/todos/"+created.ID, token, nil)
	status, data := s.do(t, http.MethodPut, "/api/todos/"+created.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	again := decode[models.Todo](t, data)
	if again.Completed != created.Completed || again.CompletedAt != nil {
		t.Errorf("expected original state, got %+v", again)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com").Token
	intruder := s.register(t, "intruder@example.com").Token

	todo := s.createTodo(t, owner, map[string]interface{}{"title": "private"})
	path := "/api/todos/" + todo.ID

	requests := []struct {
		method string
		body   interface{}
	}{
		{http.MethodPut, nil},
		{http.MethodPatch, map[string]string{"title": "mine now"}},
		{http.MethodDelete, nil},
	}

	for _, r := range requests {
		status, data := s.do(t, r.method, path, intruder, r.body)
		if status != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", r.method, status)
		}
		if body := decode[middleware.ErrorResponse](t, data); body.Error.Message != "Todo not found" {
			t.Errorf("%s: unexpected message %q", r.method, body.Error.Message)
		}
	}

	_, data := s.do(t, http.MethodGet, "/api/todos", intruder, nil)
	if listed := decode[[]models.Todo](t, data); len(listed) != 0 {
		t.Errorf("expected intruder to see no todos, got %d", len(listed))
	}

	_, data = s.do(t, http.MethodGet, "/api/todos", owner, nil)
	listed := decode[[]models.Todo](t, data)
	if len(listed) != 1 || listed[0].Title != "private" || listed[0].Completed {
		t.Errorf("expected owner's todo untouched, got %+v", listed)
	}
}

func TestListFilters(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	s.createTodo(t, token, map[string]interface{}{"title": "on the 5th", "dueDate": "2024-03-05", "priority": "low"})
	s.createTodo(t, token, map[string]interface{}{"title": "on the 15th", "dueDate": "2024-03-15", "priority": "high"})
	s.createTodo(t, token, map[string]interface{}{"title": "april", "dueDate": "2024-04-02"})
	s.createTodo(t, token, map[string]interface{}{"title": "undated"})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"undated", "on the 5th", "on the 15th", "april"}},
		{"?date=2024-03-15", []string{"on the 15th"}},
		{"?month=2024-03", []string{"on the 5th", "on the 15th"}},
		{"?priority=high", []string{"on the 15th"}},
		{"?status=completed", []string{}},
		{"?date=2024-03-15&startDate=2024-03-01&endDate=2024-03-10", []string{"on the 5th"}},
		{"?startDate=2024-03-01", []string{"undated", "on the 5th", "on the 15th", "april"}},
		{"?month=", []string{"undated", "on the 5th", "on the 15th", "april"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, data := s.do(t, http.MethodGet, "/api/todos"+tt.query, token, nil)
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", status, data)
			}

			listed := decode[[]models.Todo](t, data)
			if len(listed) != len(tt.want) {
				t.Fatalf("expected %d todos, got %d", len(tt.want), len(listed))
			}
			for i, title := range tt.want {
				if listed[i].Title != title {
					t.Errorf("position %d: expected %q, got %q", i, title, listed[i].Title)
				}
			}
		})
	}
}

func TestListFilters_Invalid(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	status, data := s.do(t, http.MethodGet, "/api/todos?month=2024-13&status=done", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}

	body := decode[middleware.ErrorResponse](t, data)
	if body.Error.Message != "Validation failed" || len(body.Error.Details) != 2 {
		t.Errorf("unexpected error: %+v", body.Error)
	}
}

func TestOverdueCountsAcrossMonths(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	s.clock.now = time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	s.createTodo(t, token, map[string]interface{}{"title": "from february", "dueDate": "2024-02-28"})

	s.clock.now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s.createTodo(t, token, map[string]interface{}{"title": "march", "dueDate": "2024-03-30"})

	_, data := s.do(t, http.MethodGet, "/api/todos/stats/2024-03", token, nil)
	stats := decode[models.MonthlyStats](t, data)

	if stats.TotalTodos != 1 || stats.PendingTodos != 1 {
		t.Errorf("expected only march's todo in the month totals, got %+v", stats)
	}
	if stats.OverdueTodos != 1 {
		t.Errorf("expected february's todo to count as overdue, got %d", stats.OverdueTodos)
	}
}

func TestStats_InvalidMonth(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	status, data := s.do(t, http.MethodGet, "/api/todos/stats/2024-3", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body := decode[middleware.ErrorResponse](t, data); body.Error.Message != "Month must be in YYYY-MM format" {
		t.Errorf("unexpected message: %s", body.Error.Message)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token
	todo := s.createTodo(t, token, map[string]interface{}{"title": "task", "dueDate": "2024-03-10", "category": "home"})

	status, data := s.do(t, http.MethodPatch, "/api/todos/"+todo.ID, token, map[string]interface{}{
		"title":   "renamed",
		"dueDate": nil,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	updated := decode[models.Todo](t, data)
	if updated.Title != "renamed" || updated.DueDate != nil || updated.Category == nil || *updated.Category != "home" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	status, data = s.do(t, http.MethodPatch, "/api/todos/"+todo.ID, token, map[string]interface{}{"priority": "urgent"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body := decode[middleware.ErrorResponse](t, data); len(body.Error.Details) != 1 || body.Error.Details[0].Field != "priority" {
		t.Errorf("unexpected details: %+v", body.Error.Details)
	}

	status, data = s.do(t, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	deleted := decode[struct {
		Message string      `json:"message"`
		Todo    models.Todo `json:"todo"`
	}](t, data)
	if deleted.Message != "Todo deleted successfully" || deleted.Todo.ID != todo.ID {
		t.Errorf("unexpected delete body: %+v", deleted)
	}

	status, _ = s.do(t, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", status)
	}
}

func TestInvalidTodoID(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	status, data := s.do(t, http.MethodPut, "/api/todos/not-an-id", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	body := decode[middleware.ErrorResponse](t, data)
	if len(body.Error.Details) != 1 || body.Error.Details[0].Message != "Invalid todo ID" {
		t.Errorf("unexpected details: %+v", body.Error.Details)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "u@example.com").Token

	status, data := s.do(t, http.MethodPost, "/api/todos", token, map[string]interface{}{"priority": "urgent"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	body := decode[middleware.ErrorResponse](t, data)
	if len(body.Error.Details) != 2 {
		t.Errorf("expected title and priority errors, got %+v", body.Error.Details)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, data := s.do(t, http.MethodGet, "/api/nope", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body := decode[middleware.ErrorResponse](t, data); body.Error.Message != "Route not found" {
		t.Errorf("unexpected message: %s", body.Error.Message)
	}
}

func TestDocs(t *testing.T) {
	s := newTestServer(t)

	status, data := s.do(t, http.MethodGet, "/openapi.yaml", "", nil)
	if status != http.StatusOK || !bytes.HasPrefix(data, []byte("openapi:")) {
		t.Errorf("expected OpenAPI document, got %d", status)
	}

	status, _ = s.do(t, http.MethodGet, "/docs", "", nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 from /docs, got %d", status)
	}
}
