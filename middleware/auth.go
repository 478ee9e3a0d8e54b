package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"expensedash/api"
	"expensedash/models"
	"expensedash/session"
)

// Define context keys
type contextKey string

const UserKey contextKey = "user"
const TokenKey contextKey = "token"
const SessionIDKey contextKey = "session_id"

// SessionCookieName is the cookie carrying the session id.
const SessionCookieName = "expensedash_session"

// SessionProbe resolves the current user on every protected request: the
// cookie names a stored session, and the backend's /auth/me confirms the
// token is still good. One best-effort call per request, no retry.
type SessionProbe struct {
	Sessions *session.Store
	Backend  *api.Client
}

// RequireSession is the middleware guarding every protected route.
func (p *SessionProbe) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == "OPTIONS" {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			p.reject(w, r)
			return
		}

		sess, err := p.Sessions.Get(cookie.Value)
		if err != nil {
			if err != session.ErrNotFound {
				log.Printf("Error loading session: %v", err)
			}
			p.reject(w, r)
			return
		}

		user, err := p.Backend.Me(sess.Token)
		if err != nil {
			// The backend no longer accepts the token; drop the session
			if api.IsAuthError(err) {
				if delErr := p.Sessions.Delete(sess.ID); delErr != nil {
					log.Printf("Error deleting stale session: %v", delErr)
				}
			} else {
				log.Printf("Error probing identity: %v", err)
			}
			p.reject(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		ctx = context.WithValue(ctx, TokenKey, sess.Token)
		ctx = context.WithValue(ctx, SessionIDKey, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject clears the cookie and sends the visitor to the login page, or a
// 401 for JSON endpoints.
func (p *SessionProbe) reject(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.Error(w, "Unauthorized: no valid session", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// GetUserFromContext retrieves the authenticated user from the request
// context, or nil when the probe did not run.
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetTokenFromContext retrieves the session's bearer token.
func GetTokenFromContext(r *http.Request) string {
	token, ok := r.Context().Value(TokenKey).(string)
	if !ok {
		return ""
	}
	return token
}

// GetSessionIDFromContext retrieves the session id.
func GetSessionIDFromContext(r *http.Request) string {
	id, ok := r.Context().Value(SessionIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
