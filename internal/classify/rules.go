package classify

import (
	"encoding/json"
	"fmt"
	"os"

	"budgetbuddy/internal/core"
)

// Rule maps a regular expression over the lower-cased description to a category.
type Rule struct {
	Category string `json:"category"`
	Pattern  string `json:"pattern"`
}

// RuleSet is an ordered rule list. The first matching rule wins.
type RuleSet struct {
	Name            string `json:"name,omitempty"`
	DefaultCategory string `json:"default_category"`
	Rules           []Rule `json:"rules"`
}

// Rule set names accepted by Named.
const (
	RuleSetDefault = "default"
	RuleSetLegacy  = "legacy"
)

// LegacyRules is the keyword list without Utilities or EMI keywords. Loans
// are only recognised through registered loan names.
func LegacyRules() RuleSet {
	return RuleSet{
		Name:            RuleSetLegacy,
		DefaultCategory: core.Others,
		Rules: []Rule{
			{Category: core.Rent, Pattern: `rent|house|apartment`},
			{Category: core.Food, Pattern: `food|restaurant|cafe|dinner|lunch|breakfast|mcdo|pizza|burger|hotel`},
			{Category: core.Entertainment, Pattern: `movie|netflix|spotify|entertainment|game|gaming|concert`},
			{Category: core.Transport, Pattern: `uber|ola|taxi|bus|train|metro|transport|fuel|petrol|diesel`},
		},
	}
}

// DefaultRules is the superset: every legacy keyword plus extra food and
// streaming terms, a Utilities rule and an EMI/Loan keyword rule.
func DefaultRules() RuleSet {
	return RuleSet{
		Name:            RuleSetDefault,
		DefaultCategory: core.Others,
		Rules: []Rule{
			{Category: core.Rent, Pattern: `rent|house|apartment|landlord|lease`},
			{Category: core.Food, Pattern: `food|restaurant|cafe|dinner|lunch|breakfast|mcdo|pizza|burger|hotel|biryani|grocer|swiggy|zomato|snack`},
			{Category: core.Entertainment, Pattern: `movie|netflix|spotify|entertainment|game|gaming|concert|hotstar|prime video|youtube`},
			{Category: core.Transport, Pattern: `uber|ola|taxi|bus|train|metro|transport|fuel|petrol|diesel|cab|auto rickshaw|parking`},
			{Category: core.Utilities, Pattern: `electricity|electric bill|water bill|water|gas|internet|wifi|broadband|recharge|phone bill`},
			{Category: core.Loan, Pattern: `\bemi\b|loan|installment|instalment|mortgage`},
		},
	}
}

// Named returns a built-in rule set by name.
func Named(name string) (RuleSet, error) {
	switch name {
	case "", RuleSetDefault:
		return DefaultRules(), nil
	case RuleSetLegacy:
		return LegacyRules(), nil
	default:
		return RuleSet{}, fmt.Errorf("unknown classifier rule set %q", name)
	}
}

// LoadRuleSet reads a rule set from a JSON file. A missing default category
// falls back to Others.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules file: %w", err)
	}
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if rs.DefaultCategory == "" {
		rs.DefaultCategory = core.Others
	}
	if rs.Name == "" {
		rs.Name = path
	}
	return rs, nil
}
