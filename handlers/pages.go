package handlers

import (
	"net/http"

	"expensedash/middleware"
	"expensedash/models"
)

type userPageData struct {
	User *models.User
}

// Dashboard renders the landing page with role-conditional cards.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "dashboard.html", userPageData{
		User: middleware.GetUserFromContext(r),
	})
}

// Profile shows the current user's identity.
func (a *App) Profile(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "profile.html", userPageData{
		User: middleware.GetUserFromContext(r),
	})
}
