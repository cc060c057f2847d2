package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

// cleanModelJSON strips markdown fences and any prose around the outermost
// open/close pair. Models ignore the MIME type more often than they should.
func cleanModelJSON(raw string, open, close byte) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func decode(raw string, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

func transformStatementOutput(raw string, categories []string) ([]domain.Candidate, error) {
	var rows []interface{}
	if err := decode(raw, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(rows))
	for i, item := range rows {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("element %d is %T, want object", i, item)
		}

		dateStr, err := getStringField(obj, "date", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		date, err := civil.ParseDate(strings.TrimSpace(dateStr))
		if err != nil {
			return nil, fmt.Errorf("transaction %d: invalid date %q: %w", i, dateStr, err)
		}
		desc, err := getStringField(obj, "description", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		amount, err := getDecimalField(obj, "amount", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		typeStr, err := getStringField(obj, "type", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		typ, err := domain.ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		category, err := getStringField(obj, "category", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		c := domain.Candidate{
			Date:        date,
			Description: strings.TrimSpace(desc),
			Amount:      amount,
			Type:        typ,
			Category:    canonicalCategory(categories, category),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if c.Amount.IsZero() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func transformReceiptOutput(raw string, now time.Time, categories []string) (*domain.Candidate, error) {
	var obj map[string]interface{}
	if err := decode(raw, &obj); err != nil {
		return nil, err
	}

	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	amount, err := getDecimalField(obj, "amount", true)
	if err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	category, err := getStringField(obj, "category", true)
	if err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}

	date := civil.DateOf(now)
	dateStr, err := getOptionalStringField(obj, "date")
	if err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	if dateStr != nil {
		date, err = civil.ParseDate(*dateStr)
		if err != nil {
			return nil, fmt.Errorf("receipt: invalid date %q: %w", *dateStr, err)
		}
	}

	typ := domain.TypeExpense
	typeStr, err := getOptionalStringField(obj, "type")
	if err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	if typeStr != nil {
		typ, err = domain.ParseType(*typeStr)
		if err != nil {
			return nil, fmt.Errorf("receipt: %w", err)
		}
		if typ != domain.TypeIncome && typ != domain.TypeExpense {
			return nil, fmt.Errorf("receipt: type %q not allowed", typ)
		}
	}

	c := &domain.Candidate{
		Date:        date,
		Description: strings.TrimSpace(desc),
		Amount:      amount,
		Type:        typ,
		Category:    canonicalCategory(categories, category),
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	return c, nil
}

// canonicalCategory maps the model's spelling onto a known category when they
// only differ in case or accents. Unknown categories pass through trimmed.
func canonicalCategory(known []string, got string) string {
	got = strings.TrimSpace(got)
	folded := categorize.Fold(got)
	for _, k := range known {
		if categorize.Fold(k) == folded {
			return k
		}
	}
	return got
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

func getDecimalField(m map[string]interface{}, key string, required bool) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return decimal.Zero, fmt.Errorf("missing required field %q", key)
		}
		return decimal.Zero, nil
	}
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
