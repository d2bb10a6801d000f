package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
)

// decodeList parses a stored JSON array. Blank and "null" values are empty.
func decodeList[T any](key, raw string) ([]T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func encodeList[T any](key string, items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return string(data), nil
}

// decodeIncome parses the monthly income scalar, stored as decimal text.
// Blank and "null" mean the income was never set.
func decodeIncome(raw string) (core.Money, bool, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" || raw == "null" {
		return core.Money{}, false, nil
	}
	m, err := core.ParseAmount(raw)
	if err != nil {
		return core.Money{}, false, fmt.Errorf("decode monthlyIncome %q: %w", raw, err)
	}
	return m, true, nil
}

func encodeIncome(m core.Money) string {
	return m.String()
}
