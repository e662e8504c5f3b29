package fx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ramsbaby/lessonledger/internal/metrics"
)

// DefaultTTL is the freshness window for cached rates.
const DefaultTTL = 30 * time.Minute

var one = decimal.NewFromInt(1)

// RateUnavailableError means no provider answered and no cached value of any
// age exists. Fatal to a run: the grand total cannot be computed without it.
type RateUnavailableError struct {
	Currency string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no KRW rate available for %s", e.Currency)
}

// Snapshot is a rate plus its freshness metadata, disclosed in the report.
type Snapshot struct {
	KRWPer decimal.Decimal
	AsOf   time.Time
	Source string
}

// entry is the cache slot for one currency. Each slot has its own lock so a
// slow provider fetch for one currency never blocks lookups of another; the
// lock covers the whole check-fetch-store cycle to avoid losing an update
// between fetch and store. Stale values are kept, never deleted: they are the
// fallback of last resort.
type entry struct {
	mu     sync.Mutex
	has    bool
	rate   decimal.Decimal
	at     time.Time
	source string
}

// Service is the process-wide rate cache. It is the only state that outlives
// a single reconciliation run.
type Service struct {
	providers []Provider
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex // guards entries map shape only
	entries map[string]*entry
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTTL overrides the freshness window.
func WithTTL(d time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a rate cache over an ordered provider chain.
func NewService(providers []Provider, opts ...ServiceOption) *Service {
	s := &Service{
		providers: providers,
		ttl:       DefaultTTL,
		logger:    slog.Default(),
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KRWPer returns the KRW value of one unit of currency. KRW itself is always
// exactly 1 and never touches the cache or providers.
func (s *Service) KRWPer(ctx context.Context, currency string) (decimal.Decimal, error) {
	cur := strings.ToUpper(currency)
	if cur == "KRW" {
		return one, nil
	}

	e := s.entryFor(cur)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.now()
	if e.has && now.Sub(e.at) < s.ttl {
		metrics.FxCacheHits.Inc()
		return e.rate, nil
	}

	for _, p := range s.providers {
		rate, err := p.FetchKRW(ctx, cur)
		if err != nil {
			metrics.FxProviderFailures.WithLabelValues(p.Name()).Inc()
			s.logger.Warn("fx provider failed",
				"provider", p.Name(),
				"currency", cur,
				"err", err,
			)
			continue
		}
		e.has = true
		e.rate = rate
		e.at = now
		e.source = p.Name()
		s.logger.Info("fx rate refreshed",
			"currency", cur,
			"rate", rate.String(),
			"source", p.Name(),
		)
		return rate, nil
	}

	if e.has {
		s.logger.Warn("all fx providers failed, using stale rate",
			"currency", cur,
			"age", now.Sub(e.at),
			"source", e.source,
		)
		return e.rate, nil
	}

	return decimal.Decimal{}, &RateUnavailableError{Currency: cur}
}

// Snapshot returns the current rate plus freshness metadata for user-facing
// disclosure.
func (s *Service) Snapshot(ctx context.Context, currency string) (Snapshot, error) {
	cur := strings.ToUpper(currency)
	if cur == "KRW" {
		return Snapshot{KRWPer: one, AsOf: s.now(), Source: "identity"}, nil
	}

	rate, err := s.KRWPer(ctx, cur)
	if err != nil {
		return Snapshot{}, err
	}

	e := s.entryFor(cur)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.has {
		// Unreachable unless the entry was somehow reset; report the rate
		// with the lookup time.
		return Snapshot{KRWPer: rate, AsOf: s.now(), Source: "unknown"}, nil
	}
	return Snapshot{KRWPer: e.rate, AsOf: e.at, Source: e.source}, nil
}

// entryFor returns the cache slot for a currency, creating it on first use.
func (s *Service) entryFor(cur string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[cur]
	if !ok {
		e = &entry{}
		s.entries[cur] = e
	}
	return e
}
