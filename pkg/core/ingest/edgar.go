// Package ingest retrieves fact documents: live from SEC EDGAR's XBRL
// companyfacts API, or from a local directory of per-year JSON dumps. The
// core never reads process-wide configuration; everything the client needs
// arrives through an explicit Config.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zaguri8/earning-projections/pkg/core/facts"
)

const (
	defaultTickerMapURL    = "https://www.sec.gov/files/company_tickers.json"
	defaultCompanyFactsURL = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"
)

// Config carries the EDGAR client settings. SEC requires a descriptive
// User-Agent identifying the caller.
type Config struct {
	UserAgent       string
	TickerMapURL    string
	CompanyFactsURL string // format string taking the zero-padded CIK
	HTTPClient      *http.Client
}

// DefaultConfig returns a Config pointing at the public SEC endpoints.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:       userAgent,
		TickerMapURL:    defaultTickerMapURL,
		CompanyFactsURL: defaultCompanyFactsURL,
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Client fetches companyfacts data and flattens it into per-fiscal-year
// documents.
type Client struct {
	cfg Config
	log *zap.Logger
}

// NewClient builds an EDGAR client. A nil logger disables logging.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("edgar client requires a User-Agent identifying the caller")
	}
	if cfg.TickerMapURL == "" {
		cfg.TickerMapURL = defaultTickerMapURL
	}
	if cfg.CompanyFactsURL == "" {
		cfg.CompanyFactsURL = defaultCompanyFactsURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, log: log}, nil
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// TickerToCIK resolves a ticker to its 10-digit zero-padded CIK, e.g.
// "AAPL" to "0000320193".
func (c *Client) TickerToCIK(ctx context.Context, ticker string) (string, error) {
	var entries map[string]tickerEntry
	if err := c.getJSON(ctx, c.cfg.TickerMapURL, &entries); err != nil {
		return "", fmt.Errorf("fetch ticker map: %w", err)
	}

	upper := strings.ToUpper(ticker)
	for _, e := range entries {
		if strings.ToUpper(e.Ticker) == upper {
			return fmt.Sprintf("%010d", e.CIK), nil
		}
	}
	return "", fmt.Errorf("ticker %q not found in SEC mapping", ticker)
}

type companyFacts struct {
	Facts map[string]map[string]conceptFacts `json:"facts"`
}

type conceptFacts struct {
	Units map[string][]factEntry `json:"units"`
}

type factEntry struct {
	Start string       `json:"start"`
	End   string       `json:"end"`
	Val   *json.Number `json:"val"`
	FY    int          `json:"fy"`
	FP    string       `json:"fp"`
	Form  string       `json:"form"`
	Filed string       `json:"filed"`
}

// FetchYearFacts downloads the companyfacts JSON and extracts the US-GAAP
// 10-K facts for one fiscal year as a flat concept-to-value document. When a
// concept was reported more than once, the entry with the newest filing date
// wins.
func (c *Client) FetchYearFacts(ctx context.Context, ticker string, year int) (map[string]any, error) {
	cik, err := c.TickerToCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var cf companyFacts
	url := fmt.Sprintf(c.cfg.CompanyFactsURL, cik)
	if err := c.getJSON(ctx, url, &cf); err != nil {
		return nil, fmt.Errorf("fetch companyfacts for %s: %w", ticker, err)
	}

	type dated struct {
		value float64
		filed string
	}
	newest := make(map[string]dated)

	for concept, cdata := range cf.Facts["us-gaap"] {
		for _, entries := range cdata.Units {
			for _, e := range entries {
				if e.Form != "10-K" || e.FY != year || e.Val == nil {
					continue
				}
				v, err := e.Val.Float64()
				if err != nil {
					continue
				}
				if prev, ok := newest[concept]; !ok || e.Filed > prev.filed {
					newest[concept] = dated{value: v, filed: e.Filed}
				}
			}
		}
	}

	if len(newest) == 0 {
		return nil, fmt.Errorf("no 10-K facts for %s fiscal year %d", ticker, year)
	}

	flat := make(map[string]any, len(newest))
	for concept, d := range newest {
		flat[concept] = d.value
	}
	c.log.Info("fetched year facts",
		zap.String("ticker", ticker), zap.Int("year", year), zap.Int("concepts", len(flat)))
	return flat, nil
}

// FetchYearDocument is FetchYearFacts wrapped as a fact document node.
func (c *Client) FetchYearDocument(ctx context.Context, ticker string, year int) (*facts.Node, error) {
	flat, err := c.FetchYearFacts(ctx, ticker, year)
	if err != nil {
		return nil, err
	}
	return facts.FromAny(flat), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SEC returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
