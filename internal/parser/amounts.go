package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/shopspring/decimal"
)

const numberPattern = `\d{1,3}(?:[.,\x{00A0}\x{202F}]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`

// prefixAmountPattern matches "€45.30", "€ 1.000,00" and "$12".
var prefixAmountPattern = regexp.MustCompile(`(?:[€$£]|EUR)\s?-?(?:` + numberPattern + `)`)

// suffixAmountPattern matches "45,30 €" and "12.00 EUR".
var suffixAmountPattern = regexp.MustCompile(`-?(?:` + numberPattern + `)\s?(?:€|EUR)`)

// exchangeRateSuffix matches text that introduces a conversion rate rather than a movement.
var exchangeRateSuffix = regexp.MustCompile(`(?:cambio|taxa de conversao|\brate\b)\s*[:=]?\s*$|=\s*$`)

var groupingStripper = strings.NewReplacer(".", "", ",", "", "\u00a0", "", "\u202f", "")

var symbolStripper = strings.NewReplacer("€", "", "$", "", "£", "", "EUR", "", "-", "", " ", "", "\u00a0", "", "\u202f", "")

// parseAmount converts a currency token into a non-negative magnitude. The last
// separator followed by one or two digits is the decimal point; others group thousands.
func parseAmount(token string) (decimal.Decimal, error) {
	s := symbolStripper.Replace(strings.TrimSpace(token))
	if s == "" {
		return decimal.Zero, fmt.Errorf("parseAmount: empty token %q", token)
	}

	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		if frac := len(s) - i - 1; frac >= 1 && frac <= 2 {
			s = groupingStripper.Replace(s[:i]) + "." + s[i+1:]
		} else {
			s = groupingStripper.Replace(s)
		}
	} else {
		s = groupingStripper.Replace(s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parseAmount: %q: %w", token, err)
	}
	return d.Abs(), nil
}

type amountToken struct {
	start, end int
	value      decimal.Decimal
}

// amountLocations returns the currency tokens of window. A statement writes every amount
// in one style, so the trailing-symbol form is only considered when no token carries a
// leading symbol. Otherwise digits closing a description ("Pingo Doce 0456 €45.30")
// would read as an amount.
func amountLocations(window string) [][]int {
	if locs := prefixAmountPattern.FindAllStringIndex(window, -1); len(locs) > 0 {
		return locs
	}
	var locs [][]int
	for _, loc := range suffixAmountPattern.FindAllStringIndex(window, -1) {
		if loc[0] > 0 && isWordByte(window[loc[0]-1]) {
			continue
		}
		locs = append(locs, loc)
	}
	return locs
}

func isWordByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

// findAmounts returns up to max amount tokens in window, skipping exchange-rate figures.
func findAmounts(window string, max int) []amountToken {
	var tokens []amountToken
	for _, loc := range amountLocations(window) {
		if len(tokens) == max {
			break
		}
		if exchangeRateSuffix.MatchString(categorize.Fold(window[:loc[0]])) {
			continue
		}
		value, err := parseAmount(window[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		tokens = append(tokens, amountToken{start: loc[0], end: loc[1], value: value})
	}
	return tokens
}
