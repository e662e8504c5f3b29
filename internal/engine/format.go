package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount for display in its currency: KRW at zero
// decimal places, everything else at most two, half-up. A value with fewer
// significant decimals keeps its natural scale instead of being padded
// ("15" stays "15", "16.4" stays "16.4").
func FormatAmount(v decimal.Decimal, currency string) string {
	maxScale := int32(2)
	if strings.EqualFold(currency, "KRW") {
		maxScale = 0
	}

	n := v.Round(maxScale)
	for scale := int32(0); scale < maxScale; scale++ {
		if n.Equal(n.Truncate(scale)) {
			return n.StringFixed(scale)
		}
	}
	return n.StringFixed(maxScale)
}
