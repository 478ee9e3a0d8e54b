package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expensedash/models"
)

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/auth/login" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form-encoded content type, got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Error parsing form: %v", err)
		}
		if r.PostFormValue("username") != "alice" || r.PostFormValue("password") != "secret" {
			t.Errorf("Unexpected credentials: %v", r.PostForm)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: "tok-123", TokenType: "bearer"})
	}))
	defer backend.Close()

	token, err := NewClient(backend.URL).Login("alice", "secret")
	if err != nil {
		t.Fatalf("Error logging in: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("Expected token 'tok-123', got '%s'", token)
	}
}

func TestLoginFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer backend.Close()

	_, err := NewClient(backend.URL).Login("alice", "wrong")
	if err == nil {
		t.Fatal("Expected error for failed login, got nil")
	}
	if !IsAuthError(err) {
		t.Errorf("Expected IsAuthError to be true, got %v", err)
	}
}

func TestMeAttachesBearerToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-123" {
			t.Errorf("Expected bearer header, got '%s'", auth)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.User{ID: 1, Username: "alice", Role: "manager"})
	}))
	defer backend.Close()

	user, err := NewClient(backend.URL).Me("tok-123")
	if err != nil {
		t.Fatalf("Error fetching identity: %v", err)
	}
	if user.Username != "alice" || user.Role != "manager" {
		t.Errorf("Unexpected user: %+v", user)
	}
}

func TestCreateExpensePostsJSON(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/expenses/" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}

		var payload models.NewExpense
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Error decoding payload: %v", err)
		}
		if payload.Amount != 250 || payload.Category != "Travel" {
			t.Errorf("Unexpected payload: %+v", payload)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.Expense{
			ID:       7,
			Amount:   payload.Amount,
			Currency: payload.Currency,
			Category: payload.Category,
			Status:   models.StatusPending,
			Employee: "alice",
		})
	}))
	defer backend.Close()

	created, err := NewClient(backend.URL).CreateExpense("tok-123", models.NewExpense{
		Amount:   250,
		Currency: "USD",
		Category: "Travel",
	})
	if err != nil {
		t.Fatalf("Error creating expense: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Errorf("Expected status 'pending', got '%s'", created.Status)
	}
}

func TestApproveExpenseHitsActionPath(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.Expense{ID: 7, Status: models.StatusApproved})
	}))
	defer backend.Close()

	updated, err := NewClient(backend.URL).ApproveExpense("tok-123", 7)
	if err != nil {
		t.Fatalf("Error approving expense: %v", err)
	}
	if gotPath != "POST /expenses/7/approve" {
		t.Errorf("Expected 'POST /expenses/7/approve', got '%s'", gotPath)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("Expected status 'approved', got '%s'", updated.Status)
	}
}

func TestConvertParsesResult(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/utils/convert" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("amount") != "100" || query.Get("from") != "USD" || query.Get("to") != "INR" {
			t.Errorf("Unexpected query: %v", query)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ConversionResult{ConvertedAmount: 8350})
	}))
	defer backend.Close()

	converted, err := NewClient(backend.URL).Convert("tok-123", 100, "USD", "INR")
	if err != nil {
		t.Fatalf("Error converting: %v", err)
	}
	if converted != 8350 {
		t.Errorf("Expected 8350, got %v", converted)
	}
}

func TestOCRSendsMultipartFile(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Error parsing multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Error reading file field: %v", err)
		}
		defer file.Close()

		if header.Filename != "receipt.png" {
			t.Errorf("Expected filename 'receipt.png', got '%s'", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.OCRResult{Text: "TOTAL 42.00"})
	}))
	defer backend.Close()

	text, err := NewClient(backend.URL).OCR("tok-123", "receipt.png", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Error running OCR: %v", err)
	}
	if text != "TOTAL 42.00" {
		t.Errorf("Expected 'TOTAL 42.00', got '%s'", text)
	}
}

func TestBackendErrorIsTyped(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	_, err := NewClient(backend.URL).ListExpenses("tok-123")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.StatusCode)
	}
	if IsAuthError(err) {
		t.Error("A 500 should not count as an auth error")
	}
}
