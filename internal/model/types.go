package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string // uppercase code
}

// NewMoney builds a Money value, upper-casing the currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   amount,
		Currency: strings.ToUpper(currency),
	}
}

// RateEntry is one priced booking (or compensation) extracted from a mail
// message. Student holds the raw matched name; canonicalization happens when
// the entry is folded into the rate index.
type RateEntry struct {
	Student    string
	Money      Money
	ReceivedAt time.Time
}

// LessonEvent is one calendar lesson for today. Student is already the
// canonical key (the calendar reader normalizes before returning).
type LessonEvent struct {
	Student string
	StartAt time.Time
}

// Row is one student/amount line in the summary.
type Row struct {
	Student string
	Money   Money
}

// CurrencyTotal is the summed amount for one currency, kept in first-seen
// order rather than in a map so the report renders deterministically.
type CurrencyTotal struct {
	Currency string
	Amount   decimal.Decimal
}

// Result is the output of one reconciliation run.
type Result struct {
	Rows     []Row
	Unknown  []string // calendar students with no known rate
	Totals   []CurrencyTotal
	KRWTotal decimal.Decimal // grand total converted to KRW, rounded to 0 dp
}

// TotalFor returns the summed amount for a currency code, if present.
func (r Result) TotalFor(currency string) (decimal.Decimal, bool) {
	currency = strings.ToUpper(currency)
	for _, t := range r.Totals {
		if t.Currency == currency {
			return t.Amount, true
		}
	}
	return decimal.Decimal{}, false
}

// Currencies returns the currency codes present in the totals, in first-seen
// order.
func (r Result) Currencies() []string {
	out := make([]string, 0, len(r.Totals))
	for _, t := range r.Totals {
		out = append(out, t.Currency)
	}
	return out
}
