package handlers

import (
	"encoding/json"
	"net/http"

	"expensedash/api"
	"expensedash/middleware"
)

// JSON passthrough endpoints for the pages' incremental refreshes. They
// forward the caller's token, so the backend applies the same role scope
// it applies everywhere else.

func (a *App) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized: No user found", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (a *App) ProxyExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.Backend.ListExpenses(middleware.GetTokenFromContext(r))
	if err != nil {
		writeProxyError(w, "Failed to fetch expenses", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(expenses)
}

func (a *App) ProxyPendingExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.Backend.ListPendingExpenses(middleware.GetTokenFromContext(r))
	if err != nil {
		writeProxyError(w, "Failed to fetch pending expenses", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(expenses)
}

func (a *App) ProxyRules(w http.ResponseWriter, r *http.Request) {
	rules, err := a.Backend.ListRules(middleware.GetTokenFromContext(r))
	if err != nil {
		writeProxyError(w, "Failed to fetch rules", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rules)
}

func writeProxyError(w http.ResponseWriter, msg string, err error) {
	if api.IsAuthError(err) {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}
	http.Error(w, msg+": "+err.Error(), http.StatusBadGateway)
}
