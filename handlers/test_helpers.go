package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"expensedash/api"
	"expensedash/middleware"
	"expensedash/models"
	"expensedash/security"
	"expensedash/session"
)

// Test identities matching what the fake backend issues
var (
	TestEmployee = &models.User{ID: 1, Username: "alice", Role: models.RoleEmployee}
	TestManager  = &models.User{ID: 2, Username: "mark", Role: models.RoleManager}
)

const (
	TestEmployeeToken = "tok-alice"
	TestManagerToken  = "tok-mark"
)

// fakeBackend is an in-memory stand-in for the expense backend, close
// enough for handler tests: two known accounts, expense and rule storage,
// fixed conversion rate, canned OCR text.
type fakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	expenses []models.Expense
	rules    []models.Rule
	nextID   int
	failAll  bool
	requests []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	fb := &fakeBackend{nextID: 1}

	handler := http.NewServeMux()
	handler.HandleFunc("/auth/login", fb.handleLogin)
	handler.HandleFunc("/auth/signup", fb.handleSignup)
	handler.HandleFunc("/auth/me", fb.handleMe)
	handler.HandleFunc("/expenses/pending", fb.handlePending)
	handler.HandleFunc("/expenses/", fb.handleExpenses)
	handler.HandleFunc("/rules/", fb.handleRules)
	handler.HandleFunc("/utils/convert", fb.handleConvert)
	handler.HandleFunc("/utils/ocr", fb.handleOCR)

	fb.Server = httptest.NewServer(handler)
	t.Cleanup(fb.Close)
	return fb
}

// newTestApp wires an App against a fake backend and an in-memory
// session store.
func newTestApp(t *testing.T) (*App, *fakeBackend) {
	t.Helper()

	fb := newFakeBackend(t)

	cipher := security.NewTokenCipher("test-session-key-1234567890123456")
	sessions, err := session.Open(":memory:", cipher, time.Hour)
	if err != nil {
		t.Fatalf("Error opening session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	return NewApp(api.NewClient(fb.URL), sessions), fb
}

// AuthedRequest builds a request carrying the context values the session
// probe would have set.
func AuthedRequest(method, target string, form url.Values, user *models.User, token string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	return withAuth(req, user, token)
}

// withAuth attaches the context values the session probe sets to an
// existing request.
func withAuth(req *http.Request, user *models.User, token string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserKey, user)
	ctx = context.WithValue(ctx, middleware.TokenKey, token)
	ctx = context.WithValue(ctx, middleware.SessionIDKey, "test-session-id")
	return req.WithContext(ctx)
}

// withSessionID swaps the session id a request carries in its context.
func withSessionID(req *http.Request, id string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.SessionIDKey, id))
}

func (fb *fakeBackend) record(r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.requests = append(fb.requests, r.Method+" "+r.URL.Path)
}

// requestLog returns a copy of every request seen so far.
func (fb *fakeBackend) requestLog() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.requests...)
}

// seed loads expenses into the fake backend.
func (fb *fakeBackend) seed(expenses ...models.Expense) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.expenses = append(fb.expenses, expenses...)
	for _, e := range expenses {
		if e.ID >= fb.nextID {
			fb.nextID = e.ID + 1
		}
	}
}

func (fb *fakeBackend) userForToken(r *http.Request) *models.User {
	switch r.Header.Get("Authorization") {
	case "Bearer " + TestEmployeeToken:
		return TestEmployee
	case "Bearer " + TestManagerToken:
		return TestManager
	default:
		return nil
	}
}

func (fb *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	fb.record(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	var token string
	switch {
	case r.PostFormValue("username") == "alice" && r.PostFormValue("password") == "secret":
		token = TestEmployeeToken
	case r.PostFormValue("username") == "mark" && r.PostFormValue("password") == "secret":
		token = TestManagerToken
	default:
		http.Error(w, `{"detail":"Incorrect username or password"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (fb *fakeBackend) handleSignup(w http.ResponseWriter, r *http.Request) {
	fb.record(r)

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if payload.Username == "taken" {
		http.Error(w, `{"detail":"Username already exists"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "created"})
}

func (fb *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	fb.record(r)

	user := fb.userForToken(r)
	if user == nil {
		http.Error(w, `{"detail":"Invalid auth token"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (fb *fakeBackend) handlePending(w http.ResponseWriter, r *http.Request) {
	fb.record(r)
	if fb.failAll {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	fb.mu.Lock()
	pending := []models.Expense{}
	for _, e := range fb.expenses {
		if e.Status == models.StatusPending {
			pending = append(pending, e)
		}
	}
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pending)
}

func (fb *fakeBackend) handleExpenses(w http.ResponseWriter, r *http.Request) {
	fb.record(r)
	if fb.failAll {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	// Action paths: /expenses/{id}/approve and /expenses/{id}/reject
	rest := strings.TrimPrefix(r.URL.Path, "/expenses/")
	if rest != "" {
		parts := strings.Split(rest, "/")
		if len(parts) != 2 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}

		status := models.StatusApproved
		if parts[1] == "reject" {
			status = models.StatusRejected
		}

		fb.mu.Lock()
		defer fb.mu.Unlock()
		for i := range fb.expenses {
			if fb.expenses[i].ID == id {
				fb.expenses[i].Status = status
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(fb.expenses[i])
				return
			}
		}
		http.Error(w, "expense not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		fb.mu.Lock()
		expenses := append([]models.Expense(nil), fb.expenses...)
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expenses)

	case "POST":
		user := fb.userForToken(r)
		if user == nil {
			http.Error(w, `{"detail":"Invalid auth token"}`, http.StatusUnauthorized)
			return
		}

		var payload models.NewExpense
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}

		fb.mu.Lock()
		created := models.Expense{
			ID:          fb.nextID,
			Amount:      payload.Amount,
			Currency:    payload.Currency,
			Category:    payload.Category,
			Description: payload.Description,
			Status:      models.StatusPending,
			CreatedAt:   time.Now(),
			Employee:    user.Username,
		}
		fb.nextID++
		fb.expenses = append(fb.expenses, created)
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(created)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (fb *fakeBackend) handleRules(w http.ResponseWriter, r *http.Request) {
	fb.record(r)
	if fb.failAll {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case "GET":
		fb.mu.Lock()
		rules := append([]models.Rule(nil), fb.rules...)
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rules)

	case "POST":
		var payload models.NewRule
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}

		fb.mu.Lock()
		created := models.Rule{ID: fb.nextID, Category: payload.Category, Limit: payload.Limit}
		fb.nextID++
		fb.rules = append(fb.rules, created)
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(created)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (fb *fakeBackend) handleConvert(w http.ResponseWriter, r *http.Request) {
	fb.record(r)
	if fb.failAll {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		http.Error(w, "bad amount", http.StatusBadRequest)
		return
	}

	// Fixed rate keeps assertions simple
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.ConversionResult{ConvertedAmount: amount * 83.5})
}

func (fb *fakeBackend) handleOCR(w http.ResponseWriter, r *http.Request) {
	fb.record(r)
	if fb.failAll {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, "bad multipart body", http.StatusBadRequest)
		return
	}
	if _, _, err := r.FormFile("file"); err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.OCRResult{Text: "TOTAL 42.00"})
}
