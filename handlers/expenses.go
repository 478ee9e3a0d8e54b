package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"expensedash/middleware"
	"expensedash/models"
	"expensedash/services"
)

type expenseForm struct {
	Amount      string
	Currency    string
	Category    string
	Description string
}

type expensesPageData struct {
	User        *models.User
	Page        services.ExpensePage
	PageNumbers []int
	Status      string
	Search      string
	Form        expenseForm
	Error       string
	Notice      string
}

// ExpensesPage renders the expense table with the status filter, search
// and pagination from the query string, plus the submission form.
func (a *App) ExpensesPage(w http.ResponseWriter, r *http.Request) {
	a.renderExpenses(w, r, expenseForm{Currency: "USD"}, "", http.StatusOK)
}

func (a *App) renderExpenses(w http.ResponseWriter, r *http.Request, form expenseForm, formError string, status int) {
	query := r.URL.Query()
	data := expensesPageData{
		User:   middleware.GetUserFromContext(r),
		Form:   form,
		Error:  formError,
		Status: services.NormalizeStatusFilter(query.Get("status")),
		Search: query.Get("q"),
	}
	if query.Get("notice") == "submitted" {
		data.Notice = "Expense submitted."
	}
	pageNum, _ := strconv.Atoi(query.Get("page"))

	// Always a fresh fetch; the displayed list is never locally patched
	expenses, err := a.Backend.ListExpenses(middleware.GetTokenFromContext(r))
	if err != nil {
		log.Printf("Error fetching expenses: %v", err)
		if data.Error == "" {
			data.Error = "Failed to load expenses."
		}
	}

	data.Page = services.VisibleExpenses(expenses, services.ExpenseFilter{
		Status: data.Status,
		Search: data.Search,
		Page:   pageNum,
	})
	data.PageNumbers = pageNumbers(data.Page.PageCount)

	renderPage(w, status, "expenses.html", data)
}

// SubmitExpense posts a new claim to the backend. Success redirects back
// to the list, which clears the form and refetches; failure re-renders
// with the entered values preserved.
func (a *App) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := expenseForm{
		Amount:      strings.TrimSpace(r.PostFormValue("amount")),
		Currency:    strings.TrimSpace(r.PostFormValue("currency")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if form.Currency == "" {
		form.Currency = "USD"
	}

	// Non-numeric input is rejected here instead of being forwarded
	amount, err := strconv.ParseFloat(form.Amount, 64)
	if err != nil {
		a.renderExpenses(w, r, form, "Amount must be a number", http.StatusBadRequest)
		return
	}

	_, err = a.Backend.CreateExpense(middleware.GetTokenFromContext(r), models.NewExpense{
		Amount:      amount,
		Currency:    form.Currency,
		Category:    form.Category,
		Description: form.Description,
	})
	if err != nil {
		log.Printf("Error submitting expense: %v", err)
		a.renderExpenses(w, r, form, "Failed to submit expense.", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/dashboard/expenses?notice=submitted", http.StatusSeeOther)
}
