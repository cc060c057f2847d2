package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// maxWindowRunes bounds the text scanned after a date anchor.
	maxWindowRunes = 300
	// maxAmountTokens covers withdrawn, received and running balance.
	maxAmountTokens = 3
	// MaxDescriptionRunes caps emitted descriptions.
	MaxDescriptionRunes = 120
	// captionLookbehind is how many runes before an anchor are checked for caption phrases.
	captionLookbehind = 40
)

var (
	datePattern        = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)
	rangeAfterPattern  = regexp.MustCompile(`^\s*(?:a|até|ate|to|-)\s+\d{2}/\d{2}/\d{4}`)
	rangeBeforePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s+(?:a|ate|to|-)\s*$`)
	whitespace         = regexp.MustCompile(`\s+`)
)

var captionPhrases = []string{"extrato", "periodo", "gerado", "emitido em", "saldo inicial", "saldo final", "entre"}

// LedgerFormat describes the markers of the multi-column ledger layout.
type LedgerFormat struct {
	// RequiredMarkers must all appear for the parser to activate.
	RequiredMarkers []string `yaml:"required_markers" mapstructure:"required_markers"`
	// MainSections open the primary account section.
	MainSections []string `yaml:"main_sections" mapstructure:"main_sections"`
	// ExcludedSections open sub-account, vault or deposit sections.
	ExcludedSections []string `yaml:"excluded_sections" mapstructure:"excluded_sections"`
}

// DefaultLedgerFormat is the Revolut (PT) statement layout.
func DefaultLedgerFormat() LedgerFormat {
	return LedgerFormat{
		RequiredMarkers: []string{"Dinheiro retirado", "Dinheiro recebido"},
		MainSections:    []string{"Transações da conta"},
		ExcludedSections: []string{
			"Transações de cofres",
			"Transações do cofre",
			"Transações de depósitos",
			"Depósito a prazo",
			"Transações da subconta",
			"Conta de poupança",
		},
	}
}

// LedgerParser extracts rows from the withdrawn/received/balance ledger layout.
type LedgerParser struct {
	categorizer *categorize.Categorizer
	required    []*regexp.Regexp
	sections    *regexp.Regexp
	main        map[string]bool
}

// NewLedgerParser compiles the format markers.
func NewLedgerParser(format LedgerFormat, c *categorize.Categorizer) *LedgerParser {
	if c == nil {
		c = categorize.Default()
	}
	p := &LedgerParser{
		categorizer: c,
		main:        make(map[string]bool),
	}
	for _, m := range format.RequiredMarkers {
		p.required = append(p.required, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(m)))
	}

	markers := append(append([]string{}, format.MainSections...), format.ExcludedSections...)
	for _, m := range format.MainSections {
		p.main[strings.ToLower(m)] = true
	}
	if len(markers) > 0 {
		// Longest first so overlapping markers resolve to the most specific one.
		sort.Slice(markers, func(i, j int) bool { return len(markers[i]) > len(markers[j]) })
		quoted := make([]string, len(markers))
		for i, m := range markers {
			quoted[i] = regexp.QuoteMeta(m)
		}
		p.sections = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	}
	return p
}

func (p *LedgerParser) Name() string { return "ledger" }

// Parse declines unless every required marker is present.
func (p *LedgerParser) Parse(text string) Result {
	if len(p.required) == 0 {
		return NotRecognized()
	}
	for _, re := range p.required {
		if !re.MatchString(text) {
			return NotRecognized()
		}
	}

	candidates := []domain.Candidate{}
	for _, section := range p.mainSections(text) {
		candidates = append(candidates, p.extract(section)...)
	}
	return Matched(candidates)
}

// mainSections returns the text of the primary account. When no main marker is present
// everything before the first excluded section is used.
func (p *LedgerParser) mainSections(text string) []string {
	if p.sections == nil {
		return []string{text}
	}
	locs := p.sections.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var main []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if p.main[strings.ToLower(text[loc[0]:loc[1]])] {
			main = append(main, text[loc[1]:end])
		}
	}
	if len(main) == 0 {
		main = append(main, text[:locs[0][0]])
	}
	return main
}

func (p *LedgerParser) extract(section string) []domain.Candidate {
	anchors := datePattern.FindAllStringSubmatchIndex(section, -1)

	var out []domain.Candidate
	for i := 0; i < len(anchors); i++ {
		a := anchors[i]
		if p.isCaption(section, a[0], a[1]) {
			continue
		}
		date, ok := anchorDate(section, a)
		if !ok {
			continue
		}

		// A second date right after the first (value date) belongs to the same row.
		windowStart := a[1]
		for i+1 < len(anchors) && strings.TrimSpace(section[windowStart:anchors[i+1][0]]) == "" {
			i++
			windowStart = anchors[i][1]
		}
		windowEnd := len(section)
		if i+1 < len(anchors) {
			windowEnd = anchors[i+1][0]
		}

		window := capRunes(section[windowStart:windowEnd], maxWindowRunes)
		if c, ok := p.parseRow(date, window); ok {
			out = append(out, c)
		}
	}
	return out
}

func (p *LedgerParser) isCaption(text string, start, end int) bool {
	before := categorize.Fold(lookbehind(text, start, captionLookbehind))
	for _, phrase := range captionPhrases {
		if strings.Contains(before, phrase) {
			return true
		}
	}
	if rangeBeforePattern.MatchString(before) {
		return true
	}
	return rangeAfterPattern.MatchString(text[end:])
}

func (p *LedgerParser) parseRow(date civil.Date, window string) (domain.Candidate, bool) {
	locs := amountLocations(window)
	if len(locs) == 0 {
		return domain.Candidate{}, false
	}
	description := strings.Trim(whitespace.ReplaceAllString(window[:locs[0][0]], " "), " -–:|")
	if !meaningful(description) {
		return domain.Candidate{}, false
	}

	tokens := findAmounts(window, maxAmountTokens)
	if len(tokens) == 0 {
		return domain.Candidate{}, false
	}
	amount := pickMovement(tokens, isInbound(description))
	if !amount.IsPositive() {
		return domain.Candidate{}, false
	}

	typ := classify(description)
	return domain.Candidate{
		Date:        date,
		Description: domain.TruncateDescription(description, MaxDescriptionRunes),
		Amount:      amount,
		Type:        typ,
		Category:    p.categorizer.Categorize(description, typ),
	}, true
}

// pickMovement chooses the row magnitude. With two or more tokens the last one is the
// running balance; of the remaining, the first is withdrawn and the second received.
func pickMovement(tokens []amountToken, inbound bool) decimal.Decimal {
	movements := tokens
	if len(tokens) >= 2 {
		movements = tokens[:len(tokens)-1]
	}
	if len(movements) == 1 {
		return movements[0].value
	}

	primary, alternate := movements[0].value, movements[1].value
	if inbound {
		primary, alternate = alternate, primary
	}
	if primary.IsZero() {
		return alternate
	}
	return primary
}

func anchorDate(text string, loc []int) (civil.Date, bool) {
	day, _ := strconv.Atoi(text[loc[2]:loc[3]])
	month, _ := strconv.Atoi(text[loc[4]:loc[5]])
	year, _ := strconv.Atoi(text[loc[6]:loc[7]])
	d := civil.Date{Year: year, Month: time.Month(month), Day: day}
	return d, d.IsValid()
}

// meaningful requires at least two letters or digits.
func meaningful(s string) bool {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
			if n >= 2 {
				return true
			}
		}
	}
	return false
}

// lookbehind returns up to n runes before pos on the anchor's own line. Text after the
// last amount token is kept so the previous row's description never counts.
func lookbehind(text string, pos, n int) string {
	start := pos
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	s := text[start:pos]
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	if locs := amountLocations(s); len(locs) > 0 {
		s = s[locs[len(locs)-1][1]:]
	}
	return s
}

func capRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
