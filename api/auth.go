package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"expensedash/models"
)

// Login exchanges credentials for a bearer token. The backend's token
// endpoint takes form-encoded fields, not JSON.
func (c *Client) Login(username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequest("POST", c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token models.TokenResponse
	if err := c.send("", req, &token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Signup registers a new account.
func (c *Client) Signup(username, password, role string) error {
	payload := map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}
	return c.doJSON("", "POST", "/auth/signup", payload, nil)
}

// Me resolves the identity behind a token. A failure here means the
// session is no longer valid.
func (c *Client) Me(token string) (*models.User, error) {
	var user models.User
	if err := c.doJSON(token, "GET", "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
