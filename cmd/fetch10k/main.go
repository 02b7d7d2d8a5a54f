package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaguri8/earning-projections/pkg/core/ingest"
)

func main() {
	// Load environment variables
	godotenv.Load()

	var (
		ticker    = flag.String("ticker", "", "ticker symbol to fetch (required)")
		startYear = flag.Int("start-year", 0, "first fiscal year to fetch (required)")
		endYear   = flag.Int("end-year", 0, "last fiscal year to fetch (default: start-year)")
		outputDir = flag.String("output-dir", "data", "directory for TICKER_YEAR.json dumps")
		userAgent = flag.String("user-agent", os.Getenv("EDGAR_USER_AGENT"), "User-Agent for EDGAR requests")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *ticker == "" || *startYear == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *endYear == 0 {
		*endYear = *startYear
	}
	if *endYear < *startYear {
		log.Fatal("end-year precedes start-year",
			zap.Int("start", *startYear), zap.Int("end", *endYear))
	}

	client, err := ingest.NewClient(ingest.DefaultConfig(*userAgent), log)
	if err != nil {
		log.Fatal("init EDGAR client", zap.Error(err))
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatal("create output dir", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	symbol := strings.ToUpper(*ticker)
	for year := *startYear; year <= *endYear; year++ {
		doc, err := client.FetchYearFacts(ctx, symbol, year)
		if err != nil {
			log.Warn("fetch failed", zap.Int("year", year), zap.Error(err))
			continue
		}
		if len(doc) == 0 {
			log.Warn("no annual facts", zap.Int("year", year))
			continue
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			log.Fatal("marshal facts", zap.Int("year", year), zap.Error(err))
		}
		path := filepath.Join(*outputDir, fmt.Sprintf("%s_%d.json", symbol, year))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatal("write dump", zap.String("path", path), zap.Error(err))
		}
		log.Info("saved", zap.String("path", path), zap.Int("facts", len(doc)))
	}
}
