package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"VolScan/internal/domain/models"
	"VolScan/internal/domain/repository"
	xhttp "VolScan/pkg/http"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client reads intraday bars from the Yahoo Finance chart API.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

var _ repository.MarketDataSource = (*Client)(nil)

func New(baseURL string, httpClient *xhttp.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns bars for ticker sorted by time. Rate limiting, server errors
// and network failures are transient; everything else is permanent.
func (c *Client) Fetch(ctx context.Context, ticker, interval, lookback string) ([]models.PriceBar, error) {
	body, err := c.http.Get(ctx, xhttp.Request{
		URL:   fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker)),
		Query: url.Values{"interval": {interval}, "range": {lookback}},
	})
	if err != nil {
		return nil, classify(ticker, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, models.NewPermanentError(ticker, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err))
	}
	if e := resp.Chart.Error; e != nil {
		return nil, models.NewPermanentError(ticker, fmt.Errorf("%w: %s: %s", models.ErrUnknownSymbol, e.Code, e.Description))
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, models.NewPermanentError(ticker, models.ErrNoData)
	}

	r := resp.Chart.Result[0]
	q := r.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		cl := at(q.Close, i)
		if cl == nil {
			continue
		}
		bars = append(bars, models.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      deref(at(q.Open, i)),
			High:      deref(at(q.High, i)),
			Low:       deref(at(q.Low, i)),
			Close:     *cl,
			Volume:    deref(at(q.Volume, i)),
		})
	}
	if len(bars) == 0 {
		return nil, models.NewPermanentError(ticker, models.ErrNoData)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

func classify(ticker string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		if se.Retryable() {
			return models.NewTransientError(ticker, err)
		}
		if se.StatusCode == 404 {
			return models.NewPermanentError(ticker, fmt.Errorf("%w: %v", models.ErrUnknownSymbol, err))
		}
		return models.NewPermanentError(ticker, err)
	}
	if errors.Is(err, context.Canceled) {
		return models.NewPermanentError(ticker, err)
	}
	// timeouts and transport failures
	return models.NewTransientError(ticker, err)
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
