// Package ledger holds the session's records and keeps them in step with
// the key-value store. Every mutation is validated, applied in memory, then
// written under its collection key; a failed write undoes the mutation.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/kv"
	"budgetbuddy/internal/log"
)

type Store struct {
	mu     sync.RWMutex
	kv     kv.Store
	logger *log.Logger

	expenses   []core.Expense
	loans      []core.LoanRecord
	budgets    []core.BudgetGoal
	income     core.Money
	hasIncome  bool
	categories []string

	// labels accepted without registration, e.g. those a rules file emits
	extraKnown map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithKnownCategories marks labels as valid expense categories without
// persisting them.
func WithKnownCategories(labels ...string) Option {
	return func(s *Store) {
		for _, l := range labels {
			if l = strings.TrimSpace(l); l != "" {
				s.extraKnown[l] = true
			}
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns an empty store backed by store. Call Load to read persisted state.
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:         store,
		logger:     log.Discard(),
		extraKnown: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

// Open builds a store and loads it in one step.
func Open(ctx context.Context, store kv.Store, opts ...Option) (*Store, error) {
	s := New(store, opts...)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory state with what the key-value store holds.
// Missing keys yield empty collections and an unset income.
func (s *Store) Load(ctx context.Context) error {
	raw := make(map[string]string, len(kv.Keys()))
	for _, key := range kv.Keys() {
		v, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
		if ok {
			raw[key] = v
		}
	}

	expenses, err := decodeList[core.Expense](kv.KeyExpenses, raw[kv.KeyExpenses])
	if err != nil {
		return err
	}
	loans, err := decodeList[core.LoanRecord](kv.KeyLoans, raw[kv.KeyLoans])
	if err != nil {
		return err
	}
	budgets, err := decodeList[core.BudgetGoal](kv.KeyBudgets, raw[kv.KeyBudgets])
	if err != nil {
		return err
	}
	categories, err := decodeList[string](kv.KeyCategories, raw[kv.KeyCategories])
	if err != nil {
		return err
	}
	income, hasIncome, err := decodeIncome(raw[kv.KeyMonthlyIncome])
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.expenses = expenses
	s.loans = loans
	s.budgets = dedupeBudgets(budgets)
	s.categories = categories
	s.income, s.hasIncome = income, hasIncome
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		"expenses", len(expenses),
		"loans", len(loans),
		"budgets", len(budgets),
		"custom_categories", len(categories),
		"income_set", hasIncome)
	return nil
}

// dedupeBudgets keeps the last goal per category, at the position of the first.
func dedupeBudgets(in []core.BudgetGoal) []core.BudgetGoal {
	idx := make(map[string]int, len(in))
	out := make([]core.BudgetGoal, 0, len(in))
	for _, b := range in {
		if i, ok := idx[b.Category]; ok {
			out[i] = b
			continue
		}
		idx[b.Category] = len(out)
		out = append(out, b)
	}
	return out
}

// Persist writes every collection.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range kv.Keys() {
		if key == kv.KeyMonthlyIncome && !s.hasIncome {
			continue
		}
		if err := s.persistLocked(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context, key string) error {
	var (
		value string
		err   error
	)
	switch key {
	case kv.KeyExpenses:
		value, err = encodeList(key, s.expenses)
	case kv.KeyLoans:
		value, err = encodeList(key, s.loans)
	case kv.KeyBudgets:
		value, err = encodeList(key, s.budgets)
	case kv.KeyCategories:
		value, err = encodeList(key, s.categories)
	case kv.KeyMonthlyIncome:
		value = encodeIncome(s.income)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.ErrorContext(ctx, "Persist failed",
			log.NewFields().WithKey(key).WithOperation(log.OpPersist).WithError(err, log.ErrorTypeStorage).ToSlice()...)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) rejected(ctx context.Context, op string, err error) error {
	s.logger.WarnContext(ctx, "Rejected input",
		log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeValidation).ToSlice()...)
	return err
}

// AppendExpense validates e and appends it in submission order.
func (s *Store) AppendExpense(ctx context.Context, e core.Expense) error {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	if err := e.Validate(); err != nil {
		return s.rejected(ctx, log.OpAppend, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.knownLocked(e.Category) {
		return s.rejected(ctx, log.OpAppend, core.Invalid("category", fmt.Errorf("%w: %s", core.ErrUnknownCategory, e.Category)))
	}

	prev := s.expenses
	s.expenses = append(cloneSlice(prev), e)
	if err := s.persistLocked(ctx, kv.KeyExpenses); err != nil {
		s.expenses = prev
		return err
	}

	s.logger.InfoContext(ctx, "Expense appended",
		log.NewFields().WithOperation(log.OpAppend).
			WithExpense(e.Description, e.Amount.String(), e.Category).ToSlice()...)
	return nil
}

// AppendLoan validates l and appends it.
func (s *Store) AppendLoan(ctx context.Context, l core.LoanRecord) error {
	l.Name = strings.TrimSpace(l.Name)
	if err := l.Validate(); err != nil {
		return s.rejected(ctx, log.OpAppend, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.loans
	s.loans = append(cloneSlice(prev), l)
	if err := s.persistLocked(ctx, kv.KeyLoans); err != nil {
		s.loans = prev
		return err
	}

	s.logger.InfoContext(ctx, "Loan appended",
		log.FieldOperation, log.OpAppend, log.FieldLoanName, l.Name, log.FieldAmount, l.Amount.String())
	return nil
}

// UpsertBudgetGoal sets the limit and savings goal for category, replacing
// any existing goal for it. A non-positive savings goal is stored as zero.
// The returned bool reports whether a new entry was created.
func (s *Store) UpsertBudgetGoal(ctx context.Context, category string, limit, savingsGoal core.Money) (core.BudgetGoal, bool, error) {
	if savingsGoal.Cents < 0 {
		savingsGoal = core.Money{}
	}
	goal := core.BudgetGoal{
		Category:    strings.TrimSpace(category),
		BudgetLimit: limit,
		SavingsGoal: savingsGoal,
	}
	if err := goal.Validate(); err != nil {
		return core.BudgetGoal{}, false, s.rejected(ctx, log.OpUpsert, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.budgets
	next := cloneSlice(prev)
	created := true
	for i := range next {
		if next[i].Category == goal.Category {
			next[i] = goal
			created = false
			break
		}
	}
	if created {
		next = append(next, goal)
	}

	s.budgets = next
	if err := s.persistLocked(ctx, kv.KeyBudgets); err != nil {
		s.budgets = prev
		return core.BudgetGoal{}, false, err
	}

	s.logger.InfoContext(ctx, "Budget goal saved",
		log.FieldOperation, log.OpUpsert,
		log.FieldCategory, goal.Category,
		"budget_limit", goal.BudgetLimit.String(),
		"savings_goal", goal.SavingsGoal.String(),
		"created", created)
	return goal, created, nil
}

// SetMonthlyIncome records the income used for savings progress.
func (s *Store) SetMonthlyIncome(ctx context.Context, income core.Money) error {
	if err := income.Validate(); err != nil {
		return s.rejected(ctx, log.OpUpsert, core.Invalid("monthlyIncome", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, prevSet := s.income, s.hasIncome
	s.income, s.hasIncome = income, true
	if err := s.persistLocked(ctx, kv.KeyMonthlyIncome); err != nil {
		s.income, s.hasIncome = prev, prevSet
		return err
	}

	s.logger.InfoContext(ctx, "Monthly income set", log.FieldOperation, log.OpUpsert, log.FieldAmount, income.String())
	return nil
}

// RegisterCategory adds a custom expense category.
func (s *Store) RegisterCategory(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return s.rejected(ctx, log.OpRegister, core.Invalid("category", core.ErrEmptyCategory))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if containsFold(core.BuiltinCategories(), label) || containsFold(s.categories, label) {
		return s.rejected(ctx, log.OpRegister, core.Invalid("category", fmt.Errorf("%w: %s", core.ErrDuplicateCategory, label)))
	}

	prev := s.categories
	s.categories = append(cloneSlice(prev), label)
	if err := s.persistLocked(ctx, kv.KeyCategories); err != nil {
		s.categories = prev
		return err
	}

	s.logger.InfoContext(ctx, "Category registered", log.FieldOperation, log.OpRegister, log.FieldCategory, label)
	return nil
}

func (s *Store) knownLocked(label string) bool {
	if core.IsBuiltinCategory(label) || s.extraKnown[label] {
		return true
	}
	for _, c := range s.categories {
		if c == label {
			return true
		}
	}
	return false
}

// IsKnownCategory reports whether label may be used on an expense.
func (s *Store) IsKnownCategory(label string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.knownLocked(label)
}

// Categories returns the built-in labels followed by registered ones.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := core.BuiltinCategories()
	return append(out, s.categories...)
}

func (s *Store) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.expenses)
}

func (s *Store) Loans() []core.LoanRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.loans)
}

func (s *Store) Budgets() []core.BudgetGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.budgets)
}

// Budget returns the goal for category, if any.
func (s *Store) Budget(category string) (core.BudgetGoal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.budgets {
		if b.Category == category {
			return b, true
		}
	}
	return core.BudgetGoal{}, false
}

// MonthlyIncome returns the income and whether it was ever set.
func (s *Store) MonthlyIncome() (core.Money, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.income, s.hasIncome
}

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	Expenses   []core.Expense
	Loans      []core.LoanRecord
	Budgets    []core.BudgetGoal
	Income     core.Money
	HasIncome  bool
	Categories []string
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Expenses:   cloneSlice(s.expenses),
		Loans:      cloneSlice(s.loans),
		Budgets:    cloneSlice(s.budgets),
		Income:     s.income,
		HasIncome:  s.hasIncome,
		Categories: append(core.BuiltinCategories(), s.categories...),
	}
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in), len(in)+1)
	copy(out, in)
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
