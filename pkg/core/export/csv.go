// Package export writes analysis results to disk: CSV tables per scenario,
// JSON valuation summaries, and an HTML dashboard rendered from markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
	"github.com/zaguri8/earning-projections/pkg/core/pipeline"
)

// WriteTableCSV writes metric rows as CSV: one row per year, one column per
// metric. Undefined values render as empty cells.
func WriteTableCSV(path string, rows []*metrics.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"year"}
	for _, m := range metrics.Columns() {
		header = append(header, string(m))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := []string{strconv.Itoa(row.Year)}
		for _, m := range metrics.Columns() {
			record = append(record, formatCell(row.Value(m)))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.Year, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteValuationsJSON writes the per-scenario valuation summaries.
func WriteValuationsJSON(path string, result *pipeline.Result) error {
	return writeJSON(path, result.Valuations)
}

// WriteStatsJSON writes the summary statistics computed over the run.
func WriteStatsJSON(path string, result *pipeline.Result) error {
	return writeJSON(path, result.Stats)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WritePricesJSON writes the implied share-price path per scenario, priced
// at each scenario's earnings multiple.
func WritePricesJSON(path string, result *pipeline.Result) error {
	prices := make(map[assumption.Scenario][]PricePoint, len(result.Projections))
	for scenario, table := range result.Projections {
		projector := PriceProjector{
			PERatio:              result.Params.PEFor(scenario),
			TargetPE:             result.Params.PEFor(scenario),
			YearsToProfitability: table.Assumptions.YearsToProfitability,
		}
		prices[scenario] = projector.Project(table.Rows)
	}
	return writeJSON(path, prices)
}

// WriteResult writes the complete artifact set for a run into dir:
// historical.csv, one CSV per scenario, valuations.json, prices.json and
// summary.json.
func WriteResult(dir string, result *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := WriteTableCSV(filepath.Join(dir, "historical.csv"), result.History.Rows()); err != nil {
		return err
	}
	for scenario, table := range result.Projections {
		name := fmt.Sprintf("%s.csv", scenario)
		if err := WriteTableCSV(filepath.Join(dir, name), table.Rows); err != nil {
			return err
		}
	}
	if err := WriteValuationsJSON(filepath.Join(dir, "valuations.json"), result); err != nil {
		return err
	}
	if err := WritePricesJSON(filepath.Join(dir, "prices.json"), result); err != nil {
		return err
	}
	return WriteStatsJSON(filepath.Join(dir, "summary.json"), result)
}
