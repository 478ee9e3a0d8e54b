package api

import (
	"fmt"

	"expensedash/models"
)

// ListExpenses fetches every expense visible to the caller. The backend
// decides the scope per role (employees only see their own); no ownership
// filtering happens on this side.
func (c *Client) ListExpenses(token string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := c.doJSON(token, "GET", "/expenses/", nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListPendingExpenses fetches the expenses awaiting a decision.
func (c *Client) ListPendingExpenses(token string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := c.doJSON(token, "GET", "/expenses/pending", nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// CreateExpense submits a new expense claim.
func (c *Client) CreateExpense(token string, expense models.NewExpense) (*models.Expense, error) {
	var created models.Expense
	if err := c.doJSON(token, "POST", "/expenses/", expense, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ApproveExpense requests the pending -> approved transition. The
// transition itself is computed by the backend, never here.
func (c *Client) ApproveExpense(token string, id int) (*models.Expense, error) {
	var updated models.Expense
	path := fmt.Sprintf("/expenses/%d/approve", id)
	if err := c.doJSON(token, "POST", path, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RejectExpense requests the pending -> rejected transition.
func (c *Client) RejectExpense(token string, id int) (*models.Expense, error) {
	var updated models.Expense
	path := fmt.Sprintf("/expenses/%d/reject", id)
	if err := c.doJSON(token, "POST", path, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
