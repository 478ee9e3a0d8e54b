package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"expensedash/middleware"
	"expensedash/models"
)

type ruleForm struct {
	Category string
	Limit    string
}

type rulesPageData struct {
	User   *models.User
	Rules  []models.Rule
	Form   ruleForm
	Error  string
	Notice string
}

// RulesPage lists the category spending limits and the create form.
// Rules are advisory; nothing here checks expenses against them.
func (a *App) RulesPage(w http.ResponseWriter, r *http.Request) {
	a.renderRules(w, r, ruleForm{}, "", http.StatusOK)
}

func (a *App) renderRules(w http.ResponseWriter, r *http.Request, form ruleForm, formError string, status int) {
	data := rulesPageData{
		User:  middleware.GetUserFromContext(r),
		Form:  form,
		Error: formError,
	}
	if r.URL.Query().Get("notice") == "created" {
		data.Notice = "Rule added."
	}

	rules, err := a.Backend.ListRules(middleware.GetTokenFromContext(r))
	if err != nil {
		log.Printf("Error fetching rules: %v", err)
		if data.Error == "" {
			data.Error = "Failed to load rules."
		}
	}
	data.Rules = rules

	renderPage(w, status, "rules.html", data)
}

// CreateRule posts a new category limit, then redirects back to refetch
// the list.
func (a *App) CreateRule(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := ruleForm{
		Category: strings.TrimSpace(r.PostFormValue("category")),
		Limit:    strings.TrimSpace(r.PostFormValue("limit")),
	}

	limit, err := strconv.ParseFloat(form.Limit, 64)
	if err != nil {
		a.renderRules(w, r, form, "Limit must be a number", http.StatusBadRequest)
		return
	}

	_, err = a.Backend.CreateRule(middleware.GetTokenFromContext(r), models.NewRule{
		Category: form.Category,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("Error creating rule: %v", err)
		a.renderRules(w, r, form, "Failed to add rule.", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/dashboard/rules?notice=created", http.StatusSeeOther)
}
