package services

import (
	"strings"

	"expensedash/models"
)

// ExpensePageSize is the fixed page size for every expense table.
const ExpensePageSize = 5

// ExpenseFilter describes what the expense table should show.
type ExpenseFilter struct {
	Status string // "all" or one of the expense statuses
	Search string // case-insensitive substring over employee, category, description
	Page   int    // 1-based, clamped into range
}

// ExpensePage is the slice of the filtered set shown on the current page.
type ExpensePage struct {
	Items     []models.Expense
	Page      int
	PageCount int
	Total     int
}

// VisibleExpenses applies the status filter, the search filter and
// pagination to the expenses the backend returned for this session.
// Ownership scoping already happened server-side, so no ownership filter
// is applied here. The requested page is clamped so a filter change can
// never strand the view on an empty page.
func VisibleExpenses(expenses []models.Expense, filter ExpenseFilter) ExpensePage {
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	filtered := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if filter.Status != "" && filter.Status != "all" && e.Status != filter.Status {
			continue
		}
		if term != "" && !matchesSearch(e, term) {
			continue
		}
		filtered = append(filtered, e)
	}

	pageCount := (len(filtered) + ExpensePageSize - 1) / ExpensePageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * ExpensePageSize
	end := start + ExpensePageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return ExpensePage{
		Items:     filtered[start:end],
		Page:      page,
		PageCount: pageCount,
		Total:     len(filtered),
	}
}

// matchesSearch reports whether the term appears in the employee name,
// category or description. Amount is not searched.
func matchesSearch(e models.Expense, term string) bool {
	return strings.Contains(strings.ToLower(e.Employee), term) ||
		strings.Contains(strings.ToLower(e.Category), term) ||
		strings.Contains(strings.ToLower(e.Description), term)
}

// NormalizeStatusFilter maps the status query parameter onto a known
// filter value, defaulting to "all".
func NormalizeStatusFilter(status string) string {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		return status
	default:
		return "all"
	}
}
