package handlers

import (
	"encoding/json"
	"net/http"

	"expensedash/api"
	"expensedash/session"
)

// App owns the shared backend client and session store that every handler
// needs.
type App struct {
	Backend  *api.Client
	Sessions *session.Store
}

func NewApp(backend *api.Client, sessions *session.Store) *App {
	return &App{Backend: backend, Sessions: sessions}
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// pageNumbers returns 1..n for the pagination links.
func pageNumbers(n int) []int {
	numbers := make([]int, n)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
