package expense

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Range buckets a transaction by amount.
type Range string

const (
	RangeSmall     Range = "small"
	RangeMedium    Range = "medium"
	RangeLarge     Range = "large"
	RangeVeryLarge Range = "very_large"
)

// Label is the display name of the range.
func (r Range) Label() string {
	switch r {
	case RangeSmall:
		return "Small (₹0-500)"
	case RangeMedium:
		return "Medium (₹500-2,000)"
	case RangeLarge:
		return "Large (₹2,000-10,000)"
	case RangeVeryLarge:
		return "Very Large (₹10,000+)"
	default:
		return string(r)
	}
}

// RangeOf buckets amount. Lower bounds are inclusive.
func RangeOf(amount float64) Range {
	switch {
	case amount < 500:
		return RangeSmall
	case amount < 2000:
		return RangeMedium
	case amount < 10000:
		return RangeLarge
	default:
		return RangeVeryLarge
	}
}

// Transaction is one statement line that carried both a date and an amount.
type Transaction struct {
	// Date is ISO formatted when the statement date parsed, otherwise as written.
	Date        string
	Amount      float64
	Credit      bool
	Range       Range
	Description string
}

// Type is "credit" or "debit".
func (t Transaction) Type() string {
	if t.Credit {
		return "credit"
	}
	return "debit"
}

var (
	datePattern   = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
	amountPattern = regexp.MustCompile(`[₹$]?\s*\d{1,3}(?:,?\d{3})*(?:\.\d+)?`)
	creditPattern = regexp.MustCompile(`(?i)\b(credit|deposit|cr)\b`)
	dateLayouts   = []string{"2/1/2006", "2-1-2006", "2/1/06", "2-1-06"}
)

// ParseTransactions scans statement text line by line. Lines without a date and an
// amount are skipped; the largest amount on a line is taken as the transaction amount.
func ParseTransactions(text string) []Transaction {
	var out []Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		loc := datePattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := line[:loc[0]] + " " + line[loc[1]:]

		amount, ok := largestAmount(rest)
		if !ok {
			continue
		}
		out = append(out, Transaction{
			Date:        normaliseDate(line[loc[0]:loc[1]]),
			Amount:      amount,
			Credit:      creditPattern.MatchString(line),
			Range:       RangeOf(amount),
			Description: line,
		})
	}
	return out
}

func largestAmount(s string) (float64, bool) {
	found := false
	var best float64
	for _, m := range amountPattern.FindAllString(s, -1) {
		cleaned := strings.NewReplacer("₹", "", "$", "", ",", "", " ", "").Replace(m)
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

func normaliseDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// DebitShareByRange returns each range's percentage of the total debited amount.
// Ranges without debits are omitted; an empty result means no debits were found.
func DebitShareByRange(txns []Transaction) map[Range]float64 {
	totals := map[Range]float64{}
	var sum float64
	for _, t := range txns {
		if t.Credit {
			continue
		}
		totals[t.Range] += t.Amount
		sum += t.Amount
	}
	if sum == 0 {
		return map[Range]float64{}
	}
	for r, v := range totals {
		totals[r] = v / sum * 100
	}
	return totals
}
