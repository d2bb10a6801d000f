package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/classify"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/report"
)

// Publisher fans alert messages out. *amqp.Client satisfies it.
type Publisher interface {
	PublishAlert(ctx context.Context, msg *amqp.AlertMessage) error
}

// ExpenseInput holds raw form values. A blank Category asks the classifier.
type ExpenseInput struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LoanInput struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type BudgetInput struct {
	Category    string `json:"category"`
	BudgetLimit string `json:"budgetLimit"`
	SavingsGoal string `json:"savingsGoal"`
}

// BudgetService validates user actions, applies them to the ledger and
// emits the resulting notices.
type BudgetService struct {
	store      *ledger.Store
	classifier *classify.Classifier
	engine     *alert.Engine
	feed       *alert.Feed
	publisher  Publisher
	logger     *log.Logger
	now        func() time.Time
}

type Option func(*BudgetService)

func WithPublisher(p Publisher) Option {
	return func(s *BudgetService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *BudgetService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *BudgetService) { s.now = now }
}

func NewBudgetService(store *ledger.Store, classifier *classify.Classifier, engine *alert.Engine, feed *alert.Feed, opts ...Option) *BudgetService {
	s := &BudgetService{
		store:      store,
		classifier: classifier,
		engine:     engine,
		feed:       feed,
		logger:     log.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

func (s *BudgetService) Store() *ledger.Store { return s.store }

func (s *BudgetService) Engine() *alert.Engine { return s.engine }

func (s *BudgetService) Now() time.Time { return s.now() }

// SetIncome parses and stores the monthly income.
func (s *BudgetService) SetIncome(ctx context.Context, raw string) ([]alert.Notice, error) {
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return nil, core.Invalid("monthlyIncome", err)
	}
	income := core.Money{Cents: cents}
	if err := s.store.SetMonthlyIncome(ctx, income); err != nil {
		return nil, err
	}
	return s.emit(ctx, []outgoing{{amqp.KindNotice, s.engine.IncomeSet(income)}}), nil
}

// AddExpense validates in, classifies it when no category was chosen,
// appends it and reports budget and overspend alerts.
func (s *BudgetService) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, []alert.Notice, error) {
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Expense{}, nil, core.Invalid("date", err)
	}
	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return core.Expense{}, nil, core.Invalid("amount", err)
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return core.Expense{}, nil, core.Invalid("description", core.ErrEmptyDescription)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = s.classifier.Classify(desc, s.store.Loans())
		s.logger.DebugContext(ctx, "Expense classified",
			log.FieldOperation, log.OpClassify, log.FieldDescription, desc, log.FieldCategory, category)
	}

	e := core.Expense{Date: date, Amount: core.Money{Cents: cents}, Description: desc, Category: category}
	if err := s.store.AppendExpense(ctx, e); err != nil {
		return core.Expense{}, nil, err
	}

	snap := s.store.Snapshot()
	out := []outgoing{{amqp.KindNotice, s.engine.ExpenseAdded(e)}}
	out = append(out, s.budgetAlerts(snap)...)
	for _, m := range s.engine.OverspendAlerts(report.MonthlyTotals(snap.Expenses, date.YearMonth())) {
		out = append(out, outgoing{amqp.KindOverspend, m})
	}
	return e, s.emit(ctx, out), nil
}

// AddLoan registers a loan so later descriptions mentioning it classify as
// EMI/Loan.
func (s *BudgetService) AddLoan(ctx context.Context, in LoanInput) ([]alert.Notice, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, core.Invalid("name", core.ErrEmptyName)
	}
	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return nil, core.Invalid("amount", err)
	}

	l := core.LoanRecord{Name: name, Amount: core.Money{Cents: cents}}
	if err := s.store.AppendLoan(ctx, l); err != nil {
		return nil, err
	}

	out := []outgoing{{amqp.KindNotice, s.engine.LoanAdded(l)}}
	out = append(out, s.budgetAlerts(s.store.Snapshot())...)
	return s.emit(ctx, out), nil
}

// SetBudget upserts the goal for a category. An invalid savings goal is
// treated as no goal.
func (s *BudgetService) SetBudget(ctx context.Context, in BudgetInput) (core.BudgetGoal, []alert.Notice, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return core.BudgetGoal{}, nil, core.Invalid("category", core.ErrEmptyCategory)
	}
	cents, err := core.ParseDecimalToCents(in.BudgetLimit)
	if err != nil {
		return core.BudgetGoal{}, nil, core.Invalid("budgetLimit", err)
	}

	goal, _, err := s.store.UpsertBudgetGoal(ctx, category, core.Money{Cents: cents}, core.ParseOptionalAmount(in.SavingsGoal))
	if err != nil {
		return core.BudgetGoal{}, nil, err
	}

	out := []outgoing{{amqp.KindNotice, s.engine.BudgetSet(goal)}}
	out = append(out, s.budgetAlerts(s.store.Snapshot())...)
	return goal, s.emit(ctx, out), nil
}

func (s *BudgetService) AddCategory(ctx context.Context, label string) ([]alert.Notice, error) {
	if err := s.store.RegisterCategory(ctx, label); err != nil {
		return nil, err
	}
	return s.emit(ctx, []outgoing{{amqp.KindNotice, s.engine.CategoryRegistered(strings.TrimSpace(label))}}), nil
}

// Classify previews the category a description would get.
func (s *BudgetService) Classify(description string) string {
	return s.classifier.Classify(description, s.store.Loans())
}

// Alerts returns the live alert feed, newest first.
func (s *BudgetService) Alerts() []alert.Notice {
	return s.feed.Snapshot()
}

// SendWeeklyTop pushes the current week's biggest category. Nothing is sent
// while the income is unset or the week has no expenses.
func (s *BudgetService) SendWeeklyTop(ctx context.Context) (alert.Notice, bool) {
	snap := s.store.Snapshot()
	if !snap.HasIncome {
		s.logger.DebugContext(ctx, "Weekly summary skipped, income not set")
		return alert.Notice{}, false
	}

	now := s.now()
	week := report.WeekNumber(core.NewDate(now.Year(), int(now.Month()), now.Day()))
	msg, ok := s.engine.WeeklyTopMessage(report.WeeklyTotals(snap.Expenses, week, now.Year()))
	if !ok {
		return alert.Notice{}, false
	}
	notices := s.emit(ctx, []outgoing{{amqp.KindWeekly, msg}})
	return notices[0], true
}

func (s *BudgetService) budgetAlerts(snap ledger.Snapshot) []outgoing {
	var out []outgoing
	for _, m := range s.engine.BudgetAlerts(snap.Budgets, snap.Expenses) {
		out = append(out, outgoing{amqp.KindBudget, m})
	}
	return out
}

type outgoing struct {
	kind    string
	message string
}

// emit pushes messages to the feed and, when configured, publishes them.
// Publish failures are logged; the mutation already succeeded.
func (s *BudgetService) emit(ctx context.Context, out []outgoing) []alert.Notice {
	notices := make([]alert.Notice, 0, len(out))
	for _, o := range out {
		n := s.feed.Push(o.message)[0]
		notices = append(notices, n)
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.PublishAlert(ctx, &amqp.AlertMessage{
			ID: n.ID, Kind: o.kind, Message: n.Message, Timestamp: n.CreatedAt,
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish alert",
				log.NewFields().WithOperation(log.OpPublish).WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		}
	}
	return notices
}

// Close releases the publisher if it holds a connection.
func (s *BudgetService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
