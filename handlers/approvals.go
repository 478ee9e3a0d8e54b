package handlers

import (
	"log"
	"net/http"
	"strconv"

	"expensedash/middleware"
	"expensedash/models"

	"github.com/gorilla/mux"
)

type approvalsPageData struct {
	User     *models.User
	Expenses []models.Expense
	Error    string
	Notice   string
}

// ApprovalsPage lists the expenses awaiting a decision. Only reachable by
// managers and admins (RequireApprover); the backend re-checks the role
// on each action anyway.
func (a *App) ApprovalsPage(w http.ResponseWriter, r *http.Request) {
	data := approvalsPageData{User: middleware.GetUserFromContext(r)}

	switch r.URL.Query().Get("notice") {
	case "approved":
		data.Notice = "Expense approved."
	case "rejected":
		data.Notice = "Expense rejected."
	case "failed":
		data.Error = "Action failed. Try again."
	}

	pending, err := a.Backend.ListPendingExpenses(middleware.GetTokenFromContext(r))
	if err != nil {
		log.Printf("Error fetching pending expenses: %v", err)
		if data.Error == "" {
			data.Error = "Failed to load pending expenses."
		}
	}
	data.Expenses = pending

	renderPage(w, http.StatusOK, "approvals.html", data)
}

// ApproveExpense requests the approve transition, then redirects back so
// the pending list is refetched.
func (a *App) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	a.decideExpense(w, r, "approve")
}

// RejectExpense requests the reject transition.
func (a *App) RejectExpense(w http.ResponseWriter, r *http.Request) {
	a.decideExpense(w, r, "reject")
}

func (a *App) decideExpense(w http.ResponseWriter, r *http.Request, action string) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid expense id", http.StatusBadRequest)
		return
	}

	token := middleware.GetTokenFromContext(r)
	if action == "approve" {
		_, err = a.Backend.ApproveExpense(token, id)
	} else {
		_, err = a.Backend.RejectExpense(token, id)
	}
	if err != nil {
		// No local state changed, so nothing to roll back
		log.Printf("Error running %s on expense %d: %v", action, id, err)
		http.Redirect(w, r, "/dashboard/approvals?notice=failed", http.StatusSeeOther)
		return
	}

	notice := "approved"
	if action == "reject" {
		notice = "rejected"
	}
	http.Redirect(w, r, "/dashboard/approvals?notice="+notice, http.StatusSeeOther)
}
