package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickerMapJSON = `{
  "0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
  "1": {"cik_str": 789019, "ticker": "MSFT", "title": "Microsoft Corp"}
}`

const companyFactsJSON = `{
  "facts": {
    "us-gaap": {
      "Revenues": {
        "units": {
          "USD": [
            {"start": "2022-01-01", "end": "2022-12-31", "val": 90, "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2023-02-01"},
            {"start": "2023-01-01", "end": "2023-12-31", "val": 100, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2024-02-01"},
            {"start": "2023-01-01", "end": "2023-12-31", "val": 105, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2025-02-01"},
            {"start": "2023-01-01", "end": "2023-03-31", "val": 25, "fy": 2023, "fp": "Q1", "form": "10-Q", "filed": "2023-05-01"}
          ]
        }
      },
      "NetIncomeLoss": {
        "units": {
          "USD": [
            {"start": "2023-01-01", "end": "2023-12-31", "val": 12, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2024-02-01"}
          ]
        }
      }
    }
  }
}`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/company_tickers.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(tickerMapJSON))
	})
	mux.HandleFunc("/companyfacts/CIK0000320193.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(companyFactsJSON))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		UserAgent:       "earning-projections test suite test@example.com",
		TickerMapURL:    server.URL + "/company_tickers.json",
		CompanyFactsURL: server.URL + "/companyfacts/CIK%s.json",
		HTTPClient:      server.Client(),
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresUserAgent(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}

func TestTickerToCIK(t *testing.T) {
	client := testClient(t, testServer(t))

	cik, err := client.TickerToCIK(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", cik)

	_, err = client.TickerToCIK(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestFetchYearFacts(t *testing.T) {
	client := testClient(t, testServer(t))

	flat, err := client.FetchYearFacts(context.Background(), "AAPL", 2023)
	require.NoError(t, err)

	assert.Equal(t, 105.0, flat["Revenues"], "restated filing wins over the original")
	assert.Equal(t, 12.0, flat["NetIncomeLoss"])
	assert.Len(t, flat, 2, "10-Q and other-year entries are filtered out")
}

func TestFetchYearFactsNoAnnualData(t *testing.T) {
	client := testClient(t, testServer(t))

	_, err := client.FetchYearFacts(context.Background(), "AAPL", 1999)
	assert.Error(t, err)
}

func TestFetchYearDocument(t *testing.T) {
	client := testClient(t, testServer(t))

	doc, err := client.FetchYearDocument(context.Background(), "AAPL", 2023)
	require.NoError(t, err)

	child, ok := doc.Field("Revenues")
	require.True(t, ok)
	assert.Equal(t, 105.0, child.Scalar())
}
