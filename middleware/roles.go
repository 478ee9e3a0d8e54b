package middleware

import (
	"net/http"
	"strings"
)

// RequireApprover only lets managers and admins through. It must run
// after RequireSession. This is view gating only: the backend re-checks
// the role on every approve/reject call and stays the actual authority.
func RequireApprover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			http.Error(w, "Unauthorized: No user found", http.StatusUnauthorized)
			return
		}

		if !user.IsApprover() {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, "Forbidden: approver role required", http.StatusForbidden)
				return
			}
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
