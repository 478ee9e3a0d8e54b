package handlers

import (
	"log"
	"net/http"
	"strings"

	"expensedash/api"
	"expensedash/middleware"
	"expensedash/models"
)

type loginPageData struct {
	Username string
	Error    string
	Notice   string
}

type registerPageData struct {
	Username string
	Role     string
	Error    string
}

// ShowLogin renders the login page. A visitor with a live session goes
// straight to the dashboard.
func (a *App) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if _, err := a.Sessions.Get(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	data := loginPageData{}
	switch {
	case r.URL.Query().Get("registered") == "1":
		data.Notice = "Registration successful! You can now log in."
	case r.URL.Query().Get("loggedout") == "1":
		data.Notice = "You have been logged out."
	}
	renderPage(w, http.StatusOK, "login.html", data)
}

// Login exchanges the submitted credentials for a backend token and
// opens a session. A failed login re-renders the form without
// navigating.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	token, err := a.Backend.Login(username, password)
	if err != nil {
		if !api.IsAuthError(err) {
			log.Printf("Error logging in %s: %v", username, err)
		}
		renderPage(w, http.StatusUnauthorized, "login.html", loginPageData{
			Username: username,
			Error:    "Invalid username or password",
		})
		return
	}

	// The token is opaque; /auth/me tells us who it belongs to
	user, err := a.Backend.Me(token)
	if err != nil {
		log.Printf("Error resolving identity for %s: %v", username, err)
		renderPage(w, http.StatusBadGateway, "login.html", loginPageData{
			Username: username,
			Error:    "Login failed. Try again.",
		})
		return
	}

	sessionID, err := a.Sessions.Create(token, user.Username, user.Role)
	if err != nil {
		log.Printf("Error creating session for %s: %v", username, err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout deletes the session and clears the cookie.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetSessionIDFromContext(r); id != "" {
		if err := a.Sessions.Delete(id); err != nil {
			log.Printf("Error deleting session %s: %v", id, err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login?loggedout=1", http.StatusSeeOther)
}

// ShowRegister renders the signup page.
func (a *App) ShowRegister(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "register.html", registerPageData{Role: models.RoleEmployee})
}

// Register creates an account through the backend and sends the visitor
// to the login page.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	role := r.PostFormValue("role")
	if !models.ValidRole(role) {
		role = models.RoleEmployee
	}

	data := registerPageData{Username: username, Role: role}

	if username == "" || password == "" {
		data.Error = "Username and password are required"
		renderPage(w, http.StatusBadRequest, "register.html", data)
		return
	}

	if err := a.Backend.Signup(username, password, role); err != nil {
		log.Printf("Error registering %s: %v", username, err)
		data.Error = "Registration failed. Try again."
		renderPage(w, http.StatusBadRequest, "register.html", data)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}
