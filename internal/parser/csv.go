package parser

import (
	"encoding/csv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	csvDateColumns        = []string{"date", "data", "data movimento", "data mov.", "data valor"}
	csvDescriptionColumns = []string{"description", "descricao", "descritivo", "movimento"}
	csvAmountColumns      = []string{"amount", "montante", "valor", "importancia"}
	csvTypeColumns        = []string{"type", "tipo"}
	csvCategoryColumns    = []string{"category", "categoria"}

	csvDateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "02.01.2006"}
)

// CSVParser reads header-led CSV exports with a signed amount column.
type CSVParser struct {
	categorizer *categorize.Categorizer
}

// NewCSVParser creates a CSV parser that categorizes rows with c.
func NewCSVParser(c *categorize.Categorizer) *CSVParser {
	if c == nil {
		c = categorize.Default()
	}
	return &CSVParser{categorizer: c}
}

func (p *CSVParser) Name() string { return "csv" }

type csvColumns struct {
	date, description, amount, typ, category int
}

// Parse recognizes the document when its first record names date, description and amount columns.
// Records are read one line at a time, so a malformed line only loses itself.
func (p *CSVParser) Parse(text string) Result {
	lines := strings.Split(text, "\n")
	comma := ','
	if strings.Count(lines[0], ";") > strings.Count(lines[0], ",") {
		comma = ';'
	}

	header, err := readCSVLine(lines[0], comma)
	if err != nil {
		return NotRecognized()
	}
	cols, ok := mapColumns(header)
	if !ok {
		return NotRecognized()
	}

	candidates := []domain.Candidate{}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := readCSVLine(line, comma)
		if err != nil {
			continue
		}
		if c, ok := p.parseRecord(record, cols); ok {
			candidates = append(candidates, c)
		}
	}
	return Matched(candidates)
}

func readCSVLine(line string, comma rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimRight(line, "\r")))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	return r.Read()
}

func (p *CSVParser) parseRecord(record []string, cols csvColumns) (domain.Candidate, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, ok := parseCSVDate(field(cols.date))
	if !ok {
		return domain.Candidate{}, false
	}
	description := whitespace.ReplaceAllString(field(cols.description), " ")
	if !meaningful(description) {
		return domain.Candidate{}, false
	}
	signed, err := parseSignedAmount(field(cols.amount))
	if err != nil || signed.IsZero() {
		return domain.Candidate{}, false
	}

	var typ domain.Type
	if explicit, err := domain.ParseType(field(cols.typ)); err == nil {
		typ = explicit
	} else if signed.IsNegative() {
		typ = domain.TypeExpense
		if investmentPattern.MatchString(categorize.Fold(description)) {
			typ = domain.TypeInvestment
		}
	} else {
		typ = domain.TypeIncome
	}

	category := field(cols.category)
	if category == "" {
		category = p.categorizer.Categorize(description, typ)
	}

	return domain.Candidate{
		Date:        date,
		Description: domain.TruncateDescription(description, MaxDescriptionRunes),
		Amount:      signed.Abs(),
		Type:        typ,
		Category:    category,
	}, true
}

func mapColumns(header []string) (csvColumns, bool) {
	index := func(names []string) int {
		for i, h := range header {
			folded := strings.TrimSpace(categorize.Fold(strings.TrimPrefix(h, "\ufeff")))
			for _, n := range names {
				if folded == n {
					return i
				}
			}
		}
		return -1
	}

	cols := csvColumns{
		date:        index(csvDateColumns),
		description: index(csvDescriptionColumns),
		amount:      index(csvAmountColumns),
		typ:         index(csvTypeColumns),
		category:    index(csvCategoryColumns),
	}
	return cols, cols.date >= 0 && cols.description >= 0 && cols.amount >= 0
}

func parseCSVDate(s string) (civil.Date, bool) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// parseSignedAmount keeps the sign carried by "-" or accounting parentheses.
func parseSignedAmount(s string) (decimal.Decimal, error) {
	negative := strings.Contains(s, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))
	v, err := parseAmount(strings.Trim(s, "()"))
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		v = v.Neg()
	}
	return v, nil
}
