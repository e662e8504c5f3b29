// Package engine joins calendar events to extracted rates, folds in same-day
// compensation entries, and computes per-currency and KRW-converted totals.
//
// The engine owns the canonical-name join: raw extracted names become keys
// here (via BuildRateIndex), while calendar events arrive already
// canonicalized by the calendar reader.
package engine
