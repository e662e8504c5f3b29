package fx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const erAPIURL = "https://open.er-api.com"

// ERAPI is the second provider in the failover chain (open.er-api.com).
type ERAPI struct {
	baseURL    string
	httpClient *http.Client
}

// ERAPIOption configures an ERAPI provider.
type ERAPIOption func(*ERAPI)

// WithERAPIBaseURL overrides the API base URL (used in tests).
func WithERAPIBaseURL(u string) ERAPIOption {
	return func(p *ERAPI) { p.baseURL = u }
}

// WithERAPIHTTPClient sets a custom HTTP client.
func WithERAPIHTTPClient(hc *http.Client) ERAPIOption {
	return func(p *ERAPI) { p.httpClient = hc }
}

// NewERAPI creates the open.er-api.com provider adapter.
func NewERAPI(opts ...ERAPIOption) *ERAPI {
	p := &ERAPI{
		baseURL:    erAPIURL,
		httpClient: newProviderHTTPClient(DefaultConnectTimeout, DefaultRequestTimeout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *ERAPI) Name() string { return "open.er-api.com" }

// FetchKRW implements Provider.
func (p *ERAPI) FetchKRW(ctx context.Context, currency string) (decimal.Decimal, error) {
	fullURL := p.baseURL + "/v6/latest/" + url.PathEscape(currency)

	body, err := fetchJSON(ctx, p.httpClient, p.Name(), fullURL)
	if err != nil {
		return decimal.Decimal{}, err
	}

	var resp struct {
		Result string                     `json:"result"`
		Rates  map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Decimal{}, &ProviderError{Provider: p.Name(), Message: "malformed payload: " + err.Error()}
	}
	if !strings.EqualFold(resp.Result, "success") {
		return decimal.Decimal{}, &ProviderError{Provider: p.Name(), Message: "result=" + resp.Result}
	}
	rate, ok := resp.Rates["KRW"]
	if !ok {
		return decimal.Decimal{}, &ProviderError{Provider: p.Name(), Message: "no KRW rate in payload"}
	}
	return rate, nil
}
