package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/classify"
	"budgetbuddy/internal/kv/memory"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/middleware/ratelimit"
	"budgetbuddy/internal/services"
)

var testNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	store := ledger.New(memory.New())
	svc := services.NewBudgetService(store, classify.Default(), alert.NewEngine(),
		alert.NewFeed(time.Hour, 100), services.WithClock(func() time.Time { return testNow }))
	return NewServer(":0", svc, opts...)
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateExpense_JSONClassifies(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/expenses", "application/json",
		`{"date":"2024-03-02","amount":250.5,"description":"Biryani night"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[struct {
		Expense struct {
			Date     string  `json:"date"`
			Amount   float64 `json:"amount"`
			Category string  `json:"category"`
		} `json:"expense"`
		Notices []alert.Notice `json:"notices"`
	}](t, rec)
	assert.Equal(t, "2024-03-02", got.Expense.Date)
	assert.Equal(t, 250.5, got.Expense.Amount)
	assert.Equal(t, "Food", got.Expense.Category)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, "Added ₹250.50 to Food on 2024-03-02 🤑", got.Notices[0].Message)
}

func TestCreateExpense_FormBody(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{
		"date":        {"2024-03-05"},
		"amount":      {"80"},
		"description": {"Metro card"},
		"category":    {"Transport"},
	}
	rec := do(t, s, http.MethodPost, "/expenses", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, s.svc.Store().Expenses(), 1)
}

func TestCreateExpense_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing date", `{"amount":"10","description":"x"}`, "date"},
		{"zero amount", `{"date":"2024-03-01","amount":"0","description":"x"}`, "amount"},
		{"negative amount", `{"date":"2024-03-01","amount":"-5","description":"x"}`, "amount"},
		{"blank description", `{"date":"2024-03-01","amount":"5","description":"  "}`, "description"},
		{"unknown category", `{"date":"2024-03-01","amount":"5","description":"x","category":"Pets"}`, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/expenses", "application/json", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, tt.field, decode[errorResponse](t, rec).Field)
			assert.Empty(t, s.svc.Store().Expenses())
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/income", "application/json", `{"income":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncomeBudgetAndDashboard(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/income", "application/json", `{"income":"5000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Yo! Your monthly income is set to ₹5000.00 💰",
		decode[incomeResponse](t, rec).Notices[0].Message)

	rec = do(t, s, http.MethodPost, "/budgets", "application/json",
		`{"category":"Food","budgetLimit":"1000","savingsGoal":"2000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/expenses", "application/json",
		`{"date":"2024-03-01","amount":"950","description":"Dinner"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/dashboard?month=2024-03", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[struct {
		Month  string   `json:"month"`
		Income *float64 `json:"income"`
		Chart  []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		} `json:"chart"`
		Goals    []string `json:"goals"`
		Expenses []any    `json:"expenses"`
		Alerts   []any    `json:"alerts"`
	}](t, rec)

	assert.Equal(t, "2024-03", d.Month)
	require.NotNil(t, d.Income)
	assert.Equal(t, 5000.0, *d.Income)
	require.NotEmpty(t, d.Chart)
	assert.Equal(t, "Food", d.Chart[0].Name)
	assert.Equal(t, 950.0, d.Chart[0].Amount)
	require.Len(t, d.Goals, 1)
	assert.Contains(t, d.Goals[0], "Heads up! You're at 95% of your Food budget.")
	assert.Len(t, d.Expenses, 1)
	assert.NotEmpty(t, d.Alerts)
}

func TestListExpenses(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{
		`{"date":"2024-03-09","amount":"20","description":"Bus"}`,
		`{"date":"2024-03-01","amount":"30","description":"Taxi"}`,
		`{"date":"2024-02-28","amount":"40","description":"Train"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/expenses", "application/json", body).Code)
	}

	rec := do(t, s, http.MethodGet, "/expenses?month=2024-03", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Total    float64 `json:"total"`
		Expenses []struct {
			Date string `json:"date"`
		} `json:"expenses"`
	}](t, rec)
	assert.Equal(t, 50.0, got.Total)
	require.Len(t, got.Expenses, 2)
	assert.Equal(t, "2024-03-01", got.Expenses[0].Date)
	assert.Equal(t, "2024-03-09", got.Expenses[1].Date)

	rec = do(t, s, http.MethodGet, "/expenses?month=March", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodGet, "/expenses", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"month":"2024-03"`)
}

func TestLoansFeedClassifier(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/loans", "application/json", `{"name":"HDFC Car","amount":"12000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/classify?description=hdfc+car+payment", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EMI/Loan", decode[classifyResponse](t, rec).Category)

	rec = do(t, s, http.MethodPost, "/loans", "application/json", `{"name":"","amount":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/categories", "application/json", `{"name":"Pets"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, decode[categoriesResponse](t, rec).Categories, "Pets")

	rec = do(t, s, http.MethodPost, "/categories", "application/json", `{"name":"pets"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/expenses", "application/json",
		`{"date":"2024-03-01","amount":"15","description":"Kibble","category":"Pets"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Food", decode[categoriesResponse](t, rec).Categories[0])
}

func TestChart(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/chart.png?month=2024-03", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/expenses", "application/json",
		`{"date":"2024-03-01","amount":"15","description":"Pizza"}`).Code)

	rec = do(t, s, http.MethodGet, "/chart.png?month=2024-03", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestAlertsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/alerts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alerts":[]}`, rec.Body.String())

	do(t, s, http.MethodPost, "/loans", "application/json", `{"name":"Bike","amount":"100"}`)
	do(t, s, http.MethodPost, "/income", "application/json", `{"income":"100"}`)

	rec = do(t, s, http.MethodGet, "/alerts", "", "")
	got := decode[map[string][]alert.Notice](t, rec)["alerts"]
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, "monthly income")
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/readyz", "", "").Code)

	failing := newTestServer(t, WithReadyCheck(func(context.Context) error { return errors.New("db down") }))
	rec := do(t, failing, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestMiddlewareChain(t *testing.T) {
	s := newTestServer(t, WithRateLimit(ratelimit.Config{RequestsPerMinute: 1}))

	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/.env", "", "").Code)

	body := `{"income":"10"}`
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/income", "application/json", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, http.MethodPost, "/income", "application/json", body).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/alerts", "", "").Code)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodDelete, "/expenses", "", "").Code)
}

func TestTrustedProxiesKeyRateLimitByForwardedClient(t *testing.T) {
	post := func(s *Server, client string) int {
		req := httptest.NewRequest(http.MethodPost, "/income", strings.NewReader(`{"income":"10"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.5:4000"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		s.Handler.ServeHTTP(rec, req)
		return rec.Code
	}
	limit := WithRateLimit(ratelimit.Config{RequestsPerMinute: 1})

	direct := newTestServer(t, limit)
	assert.Equal(t, http.StatusOK, post(direct, "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(direct, "198.51.100.2"))

	proxied := newTestServer(t, limit, WithTrustedProxies("203.0.113.0/24", "not-a-cidr"))
	assert.Equal(t, http.StatusOK, post(proxied, "198.51.100.1"))
	assert.Equal(t, http.StatusOK, post(proxied, "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, post(proxied, "198.51.100.1"))
}
