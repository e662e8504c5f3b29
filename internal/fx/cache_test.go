package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeProvider is a scriptable Provider that counts calls.
type fakeProvider struct {
	name  string
	rate  decimal.Decimal
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchKRW(_ context.Context, _ string) (decimal.Decimal, error) {
	p.calls++
	if p.err != nil {
		return decimal.Decimal{}, p.err
	}
	return p.rate, nil
}

func newTestService(t *testing.T, providers []Provider, now *time.Time) *Service {
	t.Helper()
	return NewService(providers,
		WithTTL(30*time.Minute),
		WithClock(func() time.Time { return *now }),
	)
}

func TestKRWPer_ReportingCurrencyIsOne(t *testing.T) {
	a := &fakeProvider{name: "a", rate: decimal.NewFromInt(1350)}
	now := time.Now()
	s := newTestService(t, []Provider{a}, &now)

	got, err := s.KRWPer(context.Background(), "krw")
	if err != nil {
		t.Fatalf("KRWPer(krw) error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("KRWPer(krw) = %s, want 1", got)
	}
	if a.calls != 0 {
		t.Errorf("provider calls = %d, want 0 for the reporting currency", a.calls)
	}
}

func TestKRWPer_CachesWithinTTL(t *testing.T) {
	a := &fakeProvider{name: "a", rate: decimal.NewFromInt(1350)}
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := newTestService(t, []Provider{a}, &now)

	for i := 0; i < 2; i++ {
		got, err := s.KRWPer(context.Background(), "USD")
		if err != nil {
			t.Fatalf("KRWPer error: %v", err)
		}
		if !got.Equal(decimal.NewFromInt(1350)) {
			t.Errorf("KRWPer = %s, want 1350", got)
		}
	}
	if a.calls != 1 {
		t.Errorf("provider calls = %d, want 1 within TTL", a.calls)
	}

	// After expiry exactly one new provider call happens.
	now = now.Add(31 * time.Minute)
	a.rate = decimal.NewFromInt(1360)

	got, err := s.KRWPer(context.Background(), "USD")
	if err != nil {
		t.Fatalf("KRWPer error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1360)) {
		t.Errorf("KRWPer after expiry = %s, want 1360", got)
	}
	if a.calls != 2 {
		t.Errorf("provider calls = %d, want 2 after TTL expiry", a.calls)
	}
}

func TestKRWPer_FailoverToSecondProvider(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", rate: decimal.NewFromInt(1340)}
	now := time.Now()
	s := newTestService(t, []Provider{a, b}, &now)

	got, err := s.KRWPer(context.Background(), "USD")
	if err != nil {
		t.Fatalf("KRWPer error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1340)) {
		t.Errorf("KRWPer = %s, want 1340 from provider b", got)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", a.calls, b.calls)
	}
}

func TestKRWPer_StaleFallbackWhenAllProvidersFail(t *testing.T) {
	a := &fakeProvider{name: "a", rate: decimal.NewFromInt(1350)}
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := newTestService(t, []Provider{a}, &now)

	if _, err := s.KRWPer(context.Background(), "USD"); err != nil {
		t.Fatalf("seed lookup error: %v", err)
	}

	// Entry goes stale, then the provider dies.
	now = now.Add(2 * time.Hour)
	a.err = errors.New("down")

	got, err := s.KRWPer(context.Background(), "USD")
	if err != nil {
		t.Fatalf("KRWPer should degrade to stale value, got error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1350)) {
		t.Errorf("KRWPer = %s, want stale 1350", got)
	}
}

func TestKRWPer_NoDataAnywhereFails(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", err: errors.New("down")}
	now := time.Now()
	s := newTestService(t, []Provider{a, b}, &now)

	_, err := s.KRWPer(context.Background(), "USD")
	var unavailable *RateUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want *RateUnavailableError", err)
	}
	if unavailable.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", unavailable.Currency)
	}
}

func TestSnapshot_ExposesFreshnessMetadata(t *testing.T) {
	a := &fakeProvider{name: "quotes-r-us", rate: decimal.NewFromInt(1350)}
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := newTestService(t, []Provider{a}, &now)

	snap, err := s.Snapshot(context.Background(), "usd")
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if !snap.KRWPer.Equal(decimal.NewFromInt(1350)) {
		t.Errorf("KRWPer = %s, want 1350", snap.KRWPer)
	}
	if snap.Source != "quotes-r-us" {
		t.Errorf("Source = %q, want %q", snap.Source, "quotes-r-us")
	}
	if !snap.AsOf.Equal(now) {
		t.Errorf("AsOf = %v, want %v", snap.AsOf, now)
	}
}

func TestKRWPer_ConcurrentLookupsSingleFetch(t *testing.T) {
	a := &fakeProvider{name: "a", rate: decimal.NewFromInt(1350)}
	now := time.Now()
	s := newTestService(t, []Provider{a}, &now)

	// Serialize through the per-currency lock: exactly one provider fetch
	// even when many goroutines race on a cold cache.
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := s.KRWPer(context.Background(), "USD")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("KRWPer error: %v", err)
		}
	}
	if a.calls != 1 {
		t.Errorf("provider calls = %d, want 1", a.calls)
	}
}
