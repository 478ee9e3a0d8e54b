package models

import "time"

type Expense struct {
	ID          int       `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // pending, approved, rejected
	CreatedAt   time.Time `json:"created_at"`
	Employee    string    `json:"employee"`
}

// NewExpense is the payload for submitting an expense. Status is never
// sent; the backend always creates expenses as pending.
type NewExpense struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}
