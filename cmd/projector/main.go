package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/export"
	"github.com/zaguri8/earning-projections/pkg/core/facts"
	"github.com/zaguri8/earning-projections/pkg/core/ingest"
	"github.com/zaguri8/earning-projections/pkg/core/pipeline"
	"github.com/zaguri8/earning-projections/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	var (
		ticker        = flag.String("ticker", "", "ticker symbol to analyze (required)")
		inputDir      = flag.String("input-dir", "data", "directory of TICKER_YEAR.json fact dumps")
		outputDir     = flag.String("output-dir", "out", "directory for CSV/JSON/HTML artifacts")
		configPath    = flag.String("config", "", "optional YAML file overriding default assumptions")
		currentYear   = flag.Int("current-year", 0, "first projected year (default: this year)")
		projYears     = flag.Int("proj-years", 0, "number of years to project (overrides config)")
		yearsBack     = flag.Int("years-back", 0, "number of historical years to load (overrides config)")
		growthBear    = flag.Float64("growth-bear", -1, "bear revenue growth rate (overrides config)")
		growthBase    = flag.Float64("growth-base", -1, "base revenue growth rate (overrides config)")
		growthBull    = flag.Float64("growth-bull", -1, "bull revenue growth rate (overrides config)")
		targetMargin  = flag.Float64("target-margin", -1, "explicit target net margin for loss-makers")
		yearsToProfit = flag.Int("years-to-profitability", -1, "explicit years to reach the target margin")
		fromLive      = flag.Bool("live", false, "fetch facts from EDGAR instead of local files")
		userAgent     = flag.String("user-agent", os.Getenv("EDGAR_USER_AGENT"), "User-Agent for EDGAR requests (live mode)")
		dbURL         = flag.String("db", os.Getenv("DATABASE_URL"), "optional Postgres URL to persist the run")
		listAvailable = flag.Bool("list-available", false, "list tickers and years found in input-dir, then exit")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *listAvailable {
		if err := listInputDir(*inputDir); err != nil {
			log.Fatal("list available", zap.Error(err))
		}
		return
	}

	if *ticker == "" {
		flag.Usage()
		os.Exit(2)
	}

	params, err := resolveParams(*configPath, *currentYear, *projYears, *yearsBack,
		*growthBear, *growthBase, *growthBull, *targetMargin, *yearsToProfit)
	if err != nil {
		log.Fatal("resolve assumptions", zap.Error(err))
	}

	docs, err := loadDocuments(log, params, *ticker, *inputDir, *fromLive, *userAgent)
	if err != nil {
		log.Fatal("load fact documents", zap.Error(err))
	}

	orch := pipeline.NewOrchestrator(params, log)
	result, err := orch.Run(strings.ToUpper(*ticker), docs)
	if err != nil {
		log.Fatal("run pipeline", zap.Error(err))
	}

	if err := export.WriteResult(*outputDir, result); err != nil {
		log.Fatal("write artifacts", zap.Error(err))
	}
	if err := export.WriteDashboard(filepath.Join(*outputDir, "dashboard.html"), result); err != nil {
		log.Fatal("write dashboard", zap.Error(err))
	}
	log.Info("artifacts written",
		zap.String("ticker", result.Ticker),
		zap.String("dir", *outputDir))

	if *dbURL != "" {
		if err := persistRun(log, *dbURL, result); err != nil {
			log.Fatal("persist run", zap.Error(err))
		}
	}
}

func resolveParams(configPath string, currentYear, projYears, yearsBack int,
	growthBear, growthBase, growthBull, targetMargin float64, yearsToProfit int) (assumption.Params, error) {

	var params assumption.Params
	var err error
	if configPath != "" {
		params, err = assumption.LoadParams(configPath)
		if err != nil {
			return params, err
		}
	} else {
		params = assumption.DefaultParams()
	}

	if currentYear > 0 {
		params.CurrentYear = currentYear
	}
	if params.CurrentYear == 0 {
		params.CurrentYear = time.Now().Year()
	}
	if projYears > 0 {
		params.ProjectionYears = projYears
	}
	if yearsBack > 0 {
		params.YearsBack = yearsBack
	}
	if growthBear >= 0 {
		params.RevenueGrowth[assumption.ScenarioBear] = growthBear
	}
	if growthBase >= 0 {
		params.RevenueGrowth[assumption.ScenarioBase] = growthBase
	}
	if growthBull >= 0 {
		params.RevenueGrowth[assumption.ScenarioBull] = growthBull
	}
	if targetMargin >= 0 {
		params.TargetNetMargin = &targetMargin
	}
	if yearsToProfit >= 0 {
		params.YearsToProfitability = &yearsToProfit
	}
	return params, params.Validate()
}

func loadDocuments(log *zap.Logger, params assumption.Params, ticker, inputDir string, live bool, userAgent string) (map[int]*facts.Node, error) {
	years := params.HistoricalYears()
	if !live {
		loader := ingest.NewLoader(inputDir, log)
		return loader.LoadRange(ticker, years[0], years[len(years)-1]), nil
	}

	client, err := ingest.NewClient(ingest.DefaultConfig(userAgent), log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	docs := make(map[int]*facts.Node, len(years))
	for _, year := range years {
		doc, err := client.FetchYearDocument(ctx, ticker, year)
		if err != nil {
			log.Warn("skipping year", zap.Int("year", year), zap.Error(err))
			continue
		}
		docs[year] = doc
	}
	return docs, nil
}

func listInputDir(inputDir string) error {
	loader := ingest.NewLoader(inputDir, nil)
	available, err := loader.Available()
	if err != nil {
		return err
	}
	tickers := make([]string, 0, len(available))
	for t := range available {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		years := available[t]
		parts := make([]string, len(years))
		for i, y := range years {
			parts[i] = fmt.Sprintf("%d", y)
		}
		fmt.Printf("%-8s %s\n", t, strings.Join(parts, " "))
	}
	return nil
}

func persistRun(log *zap.Logger, dbURL string, result *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := store.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := store.NewAnalysisRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	runID, err := repo.SaveRun(ctx, result)
	if err != nil {
		return err
	}
	log.Info("run persisted", zap.String("run_id", runID.String()))
	return nil
}
