// Package classify assigns a category to a free-text expense description.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"budgetbuddy/internal/core"
)

type compiledRule struct {
	category string
	re       *regexp.Regexp
}

// Classifier evaluates an ordered rule set. It is safe for concurrent use.
type Classifier struct {
	name     string
	rules    []compiledRule
	fallback string
}

// New compiles every rule up front so a bad pattern fails at startup.
func New(rs RuleSet) (*Classifier, error) {
	c := &Classifier{
		name:     rs.Name,
		rules:    make([]compiledRule, 0, len(rs.Rules)),
		fallback: rs.DefaultCategory,
	}
	if c.fallback == "" {
		c.fallback = core.Others
	}
	for i, r := range rs.Rules {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d: %w", i, core.ErrEmptyCategory)
		}
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %d (%s): empty pattern", i, r.Category)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Category, err)
		}
		c.rules = append(c.rules, compiledRule{category: r.Category, re: re})
	}
	return c, nil
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	c, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the rule set name.
func (c *Classifier) Name() string {
	return c.name
}

// Categories returns the distinct categories the rules can produce, in rule
// order, followed by the loan category and the fallback.
func (c *Classifier) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, r := range c.rules {
		add(r.category)
	}
	add(core.Loan)
	add(c.fallback)
	return out
}

// Classify returns the category of the first matching rule. When no rule
// matches, a description mentioning a known loan name is EMI/Loan; anything
// else gets the fallback category.
func (c *Classifier) Classify(description string, loans []core.LoanRecord) string {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		if r.re.MatchString(desc) {
			return r.category
		}
	}
	for _, l := range loans {
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if name != "" && strings.Contains(desc, name) {
			return core.Loan
		}
	}
	return c.fallback
}
