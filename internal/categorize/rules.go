// Package categorize infers transaction categories from descriptions using an
// ordered keyword table. The first matching rule wins.
package categorize

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dvloznov/household-finance/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Rule maps any of its keywords to Category.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Rules is evaluated in order.
type Rules []Rule

// shortKeyword is the longest keyword that must match a whole word. Brand codes like
// "imi" or "prio" otherwise hit "limite" and "prioridade".
const shortKeyword = 4

// Match returns the category of the first rule with a keyword contained in description.
func (rs Rules) Match(description string) (string, bool) {
	folded := Fold(description)
	for _, r := range rs {
		for _, kw := range r.Keywords {
			kw = strings.TrimSpace(Fold(kw))
			if kw == "" {
				continue
			}
			if containsKeyword(folded, kw) {
				return r.Category, true
			}
		}
	}
	return "", false
}

func containsKeyword(s, kw string) bool {
	if utf8.RuneCountInString(kw) > shortKeyword {
		return strings.Contains(s, kw)
	}
	for from := 0; ; {
		i := strings.Index(s[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if !wordRuneBefore(s, start) && !wordRuneAfter(s, end) {
			return true
		}
		from = start + 1
	}
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Categorizer assigns categories per transaction type.
type Categorizer struct {
	Expense         Rules  `yaml:"expense"`
	Income          Rules  `yaml:"income"`
	ExpenseFallback string `yaml:"expense_fallback"`
	IncomeFallback  string `yaml:"income_fallback"`
}

// Categorize returns the category for a description of the given type.
func (c *Categorizer) Categorize(description string, t domain.Type) string {
	switch t {
	case domain.TypeInvestment:
		return domain.CategoryInvestments
	case domain.TypeIncome:
		if cat, ok := c.Income.Match(description); ok {
			return cat
		}
		return c.IncomeFallback
	default:
		if cat, ok := c.Expense.Match(description); ok {
			return cat
		}
		return c.ExpenseFallback
	}
}

// Categories lists every category the table can produce, in rule order.
func (c *Categorizer) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, r := range c.Expense {
		add(r.Category)
	}
	for _, r := range c.Income {
		add(r.Category)
	}
	add(c.ExpenseFallback)
	add(c.IncomeFallback)
	return out
}

// LoadFile reads a YAML rule table. Missing fallbacks take the defaults.
func LoadFile(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML rule table.
func Parse(data []byte) (*Categorizer, error) {
	var c Categorizer
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("Parse: decoding rules: %w", err)
	}
	for i, r := range append(append(Rules{}, c.Expense...), c.Income...) {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("Parse: rule %d has no category", i)
		}
	}
	if c.ExpenseFallback == "" {
		c.ExpenseFallback = domain.CategoryFallback
	}
	if c.IncomeFallback == "" {
		c.IncomeFallback = domain.CategoryTransfer
	}
	return &c, nil
}

// Fold lowercases s and strips diacritics so "Transferência" matches "transferencia".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
