package api

import "expensedash/models"

// ListRules fetches the category spending limits.
func (c *Client) ListRules(token string) ([]models.Rule, error) {
	var rules []models.Rule
	if err := c.doJSON(token, "GET", "/rules/", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateRule adds a new category limit. Rules are advisory; the backend
// stores them and nothing on this side checks expenses against them.
func (c *Client) CreateRule(token string, rule models.NewRule) (*models.Rule, error) {
	var created models.Rule
	if err := c.doJSON(token, "POST", "/rules/", rule, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
