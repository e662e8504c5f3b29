package fx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Default provider timeouts.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultRequestTimeout = 7 * time.Second
)

// Provider fetches the KRW value of one unit of a currency from an external
// quote service.
type Provider interface {
	Name() string
	FetchKRW(ctx context.Context, currency string) (decimal.Decimal, error)
}

// ProviderError represents a non-success response from a quote provider.
// A non-2xx status or an undecodable payload both land here; neither is a
// crash, just a signal to move down the failover chain.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fx provider %s: http %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fx provider %s: %s", e.Provider, e.Message)
}

// DefaultChain builds the standard failover chain with the given provider
// timeouts. exchangerate.host answers first; open.er-api.com is the backup.
func DefaultChain(connectTimeout, requestTimeout time.Duration) []Provider {
	hc := newProviderHTTPClient(connectTimeout, requestTimeout)
	return []Provider{
		NewExchangerateHost(WithExchangerateHostHTTPClient(hc)),
		NewERAPI(WithERAPIHTTPClient(hc)),
	}
}

// newProviderHTTPClient builds the shared HTTP client shape for provider
// adapters: explicit connect timeout plus an overall request deadline.
func newProviderHTTPClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
		},
	}
}
