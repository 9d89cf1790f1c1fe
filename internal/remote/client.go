package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/model"
)

// DefaultURL serves the latest EUR based reference rates.
const DefaultURL = "https://api.frankfurter.app/latest?from=EUR"

// Client wraps a REST endpoint answering {"base","date","rates"} documents.
type Client struct {
	// url is requested as is
	url string

	// client for HTTP requests
	client http.Client
}

// NewClient constructs a valid Client. A zero timeout means 5 seconds.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:    url,
		client: http.Client{Timeout: timeout},
	}
}

type response struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Latest loads the current rates, expressed against EUR. The base currency is
// always part of the result and comes first; the rest is sorted by code.
// Every error wraps apperrors.ErrNetwork.
func (c *Client) Latest(ctx context.Context) ([]model.Currency, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building http request: %w", apperrors.ErrNetwork, err)
	}
	request.Header.Set("Accept", "application/json")

	httpResponse, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: http get: %w", apperrors.ErrNetwork, err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", apperrors.ErrNetwork, httpResponse.Status)
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading json: %w", apperrors.ErrNetwork, err)
	}

	var body response
	if err := json.Unmarshal(bytes, &body); err != nil {
		return nil, fmt.Errorf("%w: decoding json: %w", apperrors.ErrNetwork, err)
	}

	return toCurrencies(body)
}

// toCurrencies rebases the payload on EUR when the service answered with
// another base.
func toCurrencies(body response) ([]model.Currency, error) {
	base := strings.ToUpper(strings.TrimSpace(body.Base))
	if base == "" {
		base = model.BaseISOCode
	}

	rates := make(map[string]float64, len(body.Rates)+1)
	for code, rate := range body.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	if _, ok := rates[base]; !ok {
		rates[base] = 1
	}

	if base != model.BaseISOCode {
		eur, ok := rates[model.BaseISOCode]
		if !ok || eur <= 0 {
			return nil, fmt.Errorf("%w: payload based on %s carries no %s rate", apperrors.ErrNetwork, base, model.BaseISOCode)
		}
		for code, rate := range rates {
			rates[code] = rate / eur
		}
		rates[model.BaseISOCode] = 1
	}

	codes := make([]string, 0, len(rates))
	for code := range rates {
		if code != model.BaseISOCode {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	out := make([]model.Currency, 0, len(rates))
	out = append(out, model.Currency{ISOCode: model.BaseISOCode, RateBasedOnEuro: rates[model.BaseISOCode]})
	for _, code := range codes {
		out = append(out, model.Currency{ISOCode: code, RateBasedOnEuro: rates[code]})
	}
	return out, nil
}
