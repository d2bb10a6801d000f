// Package sheets stores ledger keys in a Google Sheets tab: the key in
// column A and its serialized value in column B.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetbuddy/internal/kv"
	"budgetbuddy/internal/log"
)

// MaxCellChars is the Sheets limit for a single cell.
const MaxCellChars = 50000

var (
	ErrMissingSpreadsheetID = errors.New("missing spreadsheet id")
	ErrMissingCredentials   = errors.New("missing service account credentials")
	ErrValueTooLarge        = errors.New("value exceeds sheet cell limit")
)

var _ kv.Store = (*Store)(nil)

// Config holds the Sheets backend configuration.
type Config struct {
	SpreadsheetID string
	SheetName     string

	// Service account credentials, inline JSON preferred over file.
	ServiceAccountJSON string
	ServiceAccountFile string

	Attempts   uint
	RetryDelay time.Duration
}

// valuesAPI is the subset of the Sheets values resource the store needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, rows [][]any) error
	Append(ctx context.Context, rng string, rows [][]any) error
}

type Store struct {
	api        valuesAPI
	sheet      string
	logger     *log.Logger
	attempts   uint
	retryDelay time.Duration

	// serialises the read-row-then-write sequence in Set
	mu sync.Mutex
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheetID
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newStore(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg, logger), nil
}

func newStore(api valuesAPI, cfg Config, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "BudgetBuddy"
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Store{
		api:        api,
		sheet:      cfg.SheetName,
		logger:     logger.WithComponent(log.ComponentSheets),
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, ErrMissingCredentials
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var rows [][]any
	err := s.withRetry(ctx, func() error {
		var err error
		rows, err = s.api.Get(ctx, a1(s.sheet, "A:B"))
		return err
	})
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	for _, row := range rows {
		if cell(row, 0) == key {
			return cell(row, 1), true, nil
		}
	}
	return "", false, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if len(value) > MaxCellChars {
		return fmt.Errorf("write %s (%d chars): %w", key, len(value), ErrValueTooLarge)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var keys [][]any
	err := s.withRetry(ctx, func() error {
		var err error
		keys, err = s.api.Get(ctx, a1(s.sheet, "A:A"))
		return err
	})
	if err != nil {
		return fmt.Errorf("locate %s: %w", key, err)
	}

	row := []any{key, value}
	rowNum := 0
	for i, r := range keys {
		if cell(r, 0) == key {
			rowNum = i + 1
			break
		}
	}

	err = s.withRetry(ctx, func() error {
		if rowNum > 0 {
			return s.api.Update(ctx, a1(s.sheet, fmt.Sprintf("A%d:B%d", rowNum, rowNum)), [][]any{row})
		}
		return s.api.Append(ctx, a1(s.sheet, "A:B"), [][]any{row})
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Value written to sheet", log.FieldKey, key, "row", rowNum)
	return nil
}

func (s *Store) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.RetryIf(func(err error) bool {
			if retryable(err) {
				s.logger.Warn("sheets request failed, will retry", log.FieldError, err)
				return true
			}
			return false
		}),
		retry.Attempts(s.attempts),
		retry.Delay(s.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

func retryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}

// a1 builds an A1 range, quoting the sheet name.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (v *serviceValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(v.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v *serviceValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(v.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (v *serviceValues) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Append(v.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
