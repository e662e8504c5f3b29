package engine

import (
	"time"

	"github.com/ramsbaby/lessonledger/internal/model"
	"github.com/ramsbaby/lessonledger/internal/normalize"
)

// BuildRateIndex folds extracted rate entries into the canonical-name lookup
// the engine joins against. When two emails price the same student the entry
// with the later ReceivedAt wins; equal timestamps fall back to last-write-
// wins in iteration order, matching chronological mailbox delivery.
func BuildRateIndex(entries []model.RateEntry) map[string]model.Money {
	index := make(map[string]model.Money, len(entries))
	latest := make(map[string]time.Time, len(entries))

	for _, e := range entries {
		key := normalize.CanonicalName(e.Student)
		if key == "" {
			continue
		}
		if at, ok := latest[key]; ok && e.ReceivedAt.Before(at) {
			continue
		}
		index[key] = e.Money
		latest[key] = e.ReceivedAt
	}
	return index
}
