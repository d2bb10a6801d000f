package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/chart"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

type noticesResponse struct {
	Notices []alert.Notice `json:"notices"`
}

type incomeResponse struct {
	Income  core.Money     `json:"income"`
	Notices []alert.Notice `json:"notices"`
}

type expenseResponse struct {
	Expense core.Expense   `json:"expense"`
	Notices []alert.Notice `json:"notices"`
}

type budgetResponse struct {
	Budget  core.BudgetGoal `json:"budget"`
	Notices []alert.Notice  `json:"notices"`
}

type categoriesResponse struct {
	Categories []string       `json:"categories"`
	Notices    []alert.Notice `json:"notices,omitempty"`
}

type expensesResponse struct {
	Month    core.YearMonth `json:"month"`
	Total    core.Money     `json:"total"`
	Expenses []core.Expense `json:"expenses"`
}

type classifyResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

// parseBody parses the request body or writes a 400.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body",
			log.NewFields().WithError(err, log.ErrorTypeValidation).ToSlice()...)
		badRequest(w, "malformed request body")
		return nil, false
	}
	return p, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				log.NewFields().WithError(err, log.ErrorTypeStorage).ToSlice()...)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	notices, err := s.svc.SetIncome(r.Context(), p.Get("income"))
	if err != nil {
		writeError(w, r, "set_income", err)
		return
	}
	income, _ := s.svc.Store().MonthlyIncome()
	writeJSON(w, http.StatusOK, incomeResponse{Income: income, Notices: notices})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	in := services.ExpenseInput{
		Date:        p.Get("date"),
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
		Category:    p.Get("category"),
	}

	e, notices, err := s.svc.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseResponse{Expense: e, Notices: notices})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ym, err := parseMonth(r.URL.Query(), s.svc.CurrentMonth())
	if err != nil {
		writeError(w, r, log.OpLoad, err)
		return
	}
	items := s.svc.MonthExpenses(ym)
	var total core.Money
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	if items == nil {
		items = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expensesResponse{Month: ym, Total: total, Expenses: items})
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	notices, err := s.svc.AddLoan(r.Context(), services.LoanInput{Name: p.Get("name"), Amount: p.Get("amount")})
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	writeJSON(w, http.StatusCreated, noticesResponse{Notices: notices})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	goal, notices, err := s.svc.SetBudget(r.Context(), services.BudgetInput{
		Category:    p.Get("category"),
		BudgetLimit: p.Get("budgetLimit"),
		SavingsGoal: p.Get("savingsGoal"),
	})
	if err != nil {
		writeError(w, r, log.OpUpsert, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{Budget: goal, Notices: notices})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: s.svc.Store().Categories()})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	notices, err := s.svc.AddCategory(r.Context(), p.Get("name"))
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoriesResponse{Categories: s.svc.Store().Categories(), Notices: notices})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ym, err := parseMonth(r.URL.Query(), s.svc.CurrentMonth())
	if err != nil {
		writeError(w, r, log.OpLoad, err)
		return
	}
	d := s.svc.Dashboard(ym)
	if d.Expenses == nil {
		d.Expenses = []core.Expense{}
	}
	if d.Goals == nil {
		d.Goals = []string{}
	}
	if d.Alerts == nil {
		d.Alerts = []alert.Notice{}
	}
	writeJSON(w, http.StatusOK, d)
}

// handleChart renders the month's category split. A month without spending
// answers 204.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ym, err := parseMonth(r.URL.Query(), s.svc.CurrentMonth())
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}
	png, err := s.chart.PNG(s.svc.ChartSeries(ym))
	if errors.Is(err, chart.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.svc.Alerts()
	if alerts == nil {
		alerts = []alert.Notice{}
	}
	writeJSON(w, http.StatusOK, map[string][]alert.Notice{"alerts": alerts})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	desc := sanitizeInput(r.URL.Query().Get("description"))
	writeJSON(w, http.StatusOK, classifyResponse{Description: desc, Category: s.svc.Classify(desc)})
}
