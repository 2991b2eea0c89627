package universe

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"VolScan/internal/domain/repository"
	xhttp "VolScan/pkg/http"
)

const (
	DefaultNasdaqURL = "https://api.nasdaq.com/api/screener/stocks"
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxSymbolLen     = 5
)

// NasdaqProvider lists symbols from the NASDAQ stock screener.
type NasdaqProvider struct {
	url  string
	http *xhttp.Client
}

var _ repository.UniverseProvider = (*NasdaqProvider)(nil)

func NewNasdaqProvider(url string, httpClient *xhttp.Client) *NasdaqProvider {
	if url == "" {
		url = DefaultNasdaqURL
	}
	return &NasdaqProvider{url: url, http: httpClient}
}

func (p *NasdaqProvider) Name() string { return "nasdaq" }

type screenerResponse struct {
	Data struct {
		Rows []struct {
			Symbol string `json:"symbol"`
		} `json:"rows"`
	} `json:"data"`
}

func (p *NasdaqProvider) Provide(ctx context.Context) ([]string, error) {
	var resp screenerResponse
	err := p.http.GetJSON(ctx, xhttp.Request{
		URL:    p.url,
		Query:  url.Values{"tableonly": {"true"}, "limit": {"10000"}, "offset": {"0"}},
		Header: map[string]string{"User-Agent": browserUserAgent},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("nasdaq screener: %w", err)
	}

	seen := make(map[string]struct{}, len(resp.Data.Rows))
	var out []string
	for _, row := range resp.Data.Rows {
		if len(row.Symbol) > maxSymbolLen {
			continue
		}
		out = appendUnique(out, seen, row.Symbol)
	}
	if len(out) == 0 {
		return nil, errors.New("nasdaq screener returned no symbols")
	}
	return out, nil
}
