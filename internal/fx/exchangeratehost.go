package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

const exchangerateHostURL = "https://api.exchangerate.host"

// ExchangerateHost is the first provider in the failover chain.
type ExchangerateHost struct {
	baseURL    string
	httpClient *http.Client
}

// ExchangerateHostOption configures an ExchangerateHost provider.
type ExchangerateHostOption func(*ExchangerateHost)

// WithExchangerateHostBaseURL overrides the API base URL (used in tests).
func WithExchangerateHostBaseURL(u string) ExchangerateHostOption {
	return func(p *ExchangerateHost) { p.baseURL = u }
}

// WithExchangerateHostHTTPClient sets a custom HTTP client.
func WithExchangerateHostHTTPClient(hc *http.Client) ExchangerateHostOption {
	return func(p *ExchangerateHost) { p.httpClient = hc }
}

// NewExchangerateHost creates the exchangerate.host provider adapter.
func NewExchangerateHost(opts ...ExchangerateHostOption) *ExchangerateHost {
	p := &ExchangerateHost{
		baseURL:    exchangerateHostURL,
		httpClient: newProviderHTTPClient(DefaultConnectTimeout, DefaultRequestTimeout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *ExchangerateHost) Name() string { return "exchangerate.host" }

// FetchKRW implements Provider.
func (p *ExchangerateHost) FetchKRW(ctx context.Context, currency string) (decimal.Decimal, error) {
	fullURL := fmt.Sprintf("%s/latest?base=%s&symbols=KRW", p.baseURL, url.QueryEscape(currency))

	body, err := fetchJSON(ctx, p.httpClient, p.Name(), fullURL)
	if err != nil {
		return decimal.Decimal{}, err
	}

	var resp struct {
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Decimal{}, &ProviderError{Provider: p.Name(), Message: "malformed payload: " + err.Error()}
	}
	rate, ok := resp.Rates["KRW"]
	if !ok {
		return decimal.Decimal{}, &ProviderError{Provider: p.Name(), Message: "no KRW rate in payload"}
	}
	return rate, nil
}

// fetchJSON performs a GET and returns the body, mapping transport errors and
// non-2xx statuses to ProviderError.
func fetchJSON(ctx context.Context, hc *http.Client, provider, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "lessonledger/1.0")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return body, nil
}
