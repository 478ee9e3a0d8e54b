package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"expensedash/api"
	"expensedash/handlers"
	"expensedash/middleware"
	"expensedash/security"
	"expensedash/session"

	"github.com/gorilla/mux"
)

func main() {
	// Where the expense backend lives
	backendURL := os.Getenv("BACKEND_API_URL")
	if backendURL == "" {
		backendURL = "http://127.0.0.1:8000"
	}
	log.Printf("Using expense backend at %s", backendURL)

	// Key for sealing bearer tokens in the session database
	sessionKey := os.Getenv("SESSION_ENCRYPTION_KEY")
	if sessionKey == "" {
		log.Println("Warning: SESSION_ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		sessionKey = "default-key-for-development-only"
	}
	cipher := security.NewTokenCipher(sessionKey)

	sessionTTL := 12 * time.Hour
	if hours := os.Getenv("SESSION_TTL_HOURS"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil && parsed > 0 {
			sessionTTL = time.Duration(parsed) * time.Hour
		} else {
			log.Printf("Warning: invalid SESSION_TTL_HOURS %q, keeping default", hours)
		}
	}

	sessionDBPath := os.Getenv("SESSION_DB_PATH")
	if sessionDBPath == "" {
		sessionDBPath = "./sessions.db"
	}

	sessions, err := session.Open(sessionDBPath, cipher, sessionTTL)
	if err != nil {
		log.Fatal(err)
	}
	defer sessions.Close()
	sessions.StartPurging(time.Hour)

	backend := api.NewClient(backendURL)
	app := handlers.NewApp(backend, sessions)
	probe := &middleware.SessionProbe{Sessions: sessions, Backend: backend}

	// Create router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.EnableCORS)

	registerRoutes(r, app, probe)

	// Configure the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	// Start the server
	log.Printf("Starting server on port %s...", port)
	log.Fatal(srv.ListenAndServe())
}

// registerRoutes sets up all page, action and JSON routes
func registerRoutes(r *mux.Router, app *handlers.App, probe *middleware.SessionProbe) {
	// Public routes (no session required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")
	r.HandleFunc("/", app.ShowLogin).Methods("GET")
	r.HandleFunc("/login", app.ShowLogin).Methods("GET")
	r.HandleFunc("/login", app.Login).Methods("POST")
	r.HandleFunc("/register", app.ShowRegister).Methods("GET")
	r.HandleFunc("/register", app.Register).Methods("POST")

	// JSON endpoints for the pages' incremental refreshes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(probe.RequireSession)
	apiRouter.HandleFunc("/me", app.CurrentUser).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/expenses", app.ProxyExpenses).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/expenses/pending", app.ProxyPendingExpenses).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/rules", app.ProxyRules).Methods("GET", "OPTIONS")

	// Session-gated pages and actions
	protectedRouter := r.PathPrefix("").Subrouter()
	protectedRouter.Use(probe.RequireSession)

	protectedRouter.HandleFunc("/logout", app.Logout).Methods("POST")
	protectedRouter.HandleFunc("/dashboard", app.Dashboard).Methods("GET")
	protectedRouter.HandleFunc("/dashboard/profile", app.Profile).Methods("GET")
	protectedRouter.HandleFunc("/dashboard/expenses", app.ExpensesPage).Methods("GET")
	protectedRouter.HandleFunc("/dashboard/expenses", app.SubmitExpense).Methods("POST")
	protectedRouter.HandleFunc("/dashboard/rules", app.RulesPage).Methods("GET")
	protectedRouter.HandleFunc("/dashboard/rules", app.CreateRule).Methods("POST")
	protectedRouter.HandleFunc("/utils/currency", app.CurrencyPage).Methods("GET")
	protectedRouter.HandleFunc("/utils/ocr", app.OCRPage).Methods("GET")
	protectedRouter.HandleFunc("/utils/ocr", app.OCRUpload).Methods("POST")

	// Approval routes need an approver role on top of a session
	approvalRouter := protectedRouter.PathPrefix("/dashboard/approvals").Subrouter()
	approvalRouter.Use(middleware.RequireApprover)
	approvalRouter.HandleFunc("", app.ApprovalsPage).Methods("GET")
	approvalRouter.HandleFunc("/{id}/approve", app.ApproveExpense).Methods("POST")
	approvalRouter.HandleFunc("/{id}/reject", app.RejectExpense).Methods("POST")
}
