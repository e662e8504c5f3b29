package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ramsbaby/lessonledger/internal/model"
	"github.com/ramsbaby/lessonledger/internal/normalize"
)

// RateSource converts a currency into KRW. KRW itself must always yield
// exactly 1.
type RateSource interface {
	KRWPer(ctx context.Context, currency string) (decimal.Decimal, error)
}

// Engine performs one reconciliation run.
type Engine struct {
	fx     RateSource
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine over a rate source.
func New(fx RateSource, opts ...Option) *Engine {
	e := &Engine{
		fx:     fx,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile joins today's calendar events against the rate index, appends
// compensation entries for students not already matched, and totals the
// result per currency and in KRW.
//
// Row order is calendar order followed by compensations in source order. A
// compensation never overrides an existing matched row for the same student:
// first come, from the event match, wins.
func (e *Engine) Reconcile(
	ctx context.Context,
	events []model.LessonEvent,
	rates map[string]model.Money,
	compensations []model.RateEntry,
) (model.Result, error) {
	var res model.Result

	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		money, ok := rates[ev.Student]
		if !ok {
			res.Unknown = append(res.Unknown, ev.Student)
			continue
		}
		res.Rows = append(res.Rows, model.Row{Student: ev.Student, Money: money})
		seen[ev.Student] = true
	}

	for _, comp := range compensations {
		key := normalize.CanonicalName(comp.Student)
		if key == "" || seen[key] {
			continue
		}
		res.Rows = append(res.Rows, model.Row{Student: key, Money: comp.Money})
		seen[key] = true
	}

	res.Totals = sumByCurrency(res.Rows)

	grand, err := e.convertTotal(ctx, res.Totals)
	if err != nil {
		return model.Result{}, err
	}
	res.KRWTotal = grand

	e.logger.Info("reconciliation complete",
		"rows", len(res.Rows),
		"unknown", len(res.Unknown),
		"currencies", len(res.Totals),
		"krw_total", res.KRWTotal.String(),
	)
	return res, nil
}

// sumByCurrency groups rows by upper-cased currency code in first-seen order.
// Decimal addition, no intermediate rounding.
func sumByCurrency(rows []model.Row) []model.CurrencyTotal {
	var totals []model.CurrencyTotal
	pos := make(map[string]int)

	for _, row := range rows {
		cur := strings.ToUpper(row.Money.Currency)
		i, ok := pos[cur]
		if !ok {
			pos[cur] = len(totals)
			totals = append(totals, model.CurrencyTotal{Currency: cur, Amount: row.Money.Amount})
			continue
		}
		totals[i].Amount = totals[i].Amount.Add(row.Money.Amount)
	}
	return totals
}

// convertTotal folds the per-currency totals into KRW and rounds the grand
// total to whole won, half up. Display rounding of the per-currency amounts
// happens later and never feeds back into this sum.
func (e *Engine) convertTotal(ctx context.Context, totals []model.CurrencyTotal) (decimal.Decimal, error) {
	grand := decimal.Zero
	for _, t := range totals {
		rate, err := e.fx.KRWPer(ctx, t.Currency)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("convert %s total: %w", t.Currency, err)
		}
		grand = grand.Add(t.Amount.Mul(rate))
	}
	return grand.Round(0), nil
}
