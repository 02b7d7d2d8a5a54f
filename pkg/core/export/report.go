package export

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
	"github.com/zaguri8/earning-projections/pkg/core/pipeline"
)

var reportMetrics = []metrics.Metric{
	metrics.MetricRevenue,
	metrics.MetricOperatingIncome,
	metrics.MetricNetIncome,
	metrics.MetricEPS,
	metrics.MetricFCF,
	metrics.MetricNetMargin,
}

// BuildReport renders a run as a markdown document: valuation summaries,
// summary statistics and a compact table per scenario.
func BuildReport(result *pipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Earnings Projection\n\n", result.Ticker)

	b.WriteString("## Valuation\n\n")
	b.WriteString("| Scenario | DCF Value | PE Value | Final Year FCF |\n")
	b.WriteString("| --- | ---: | ---: | ---: |\n")
	for _, s := range assumption.Scenarios() {
		summary, ok := result.Valuations[s]
		if !ok {
			fmt.Fprintf(&b, "| %s | n/a | n/a | n/a |\n", s)
			continue
		}
		fmt.Fprintf(&b, "| %s | %.0f | %.0f | %.0f |\n",
			s, summary.DCFValue, summary.PEValue, summary.FinalYearFCF)
	}
	b.WriteString("\n")

	b.WriteString("## Historical Averages\n\n")
	fmt.Fprintf(&b, "- Net margin: %s\n", formatPct(result.Stats.HistoricalAvgNetMargin))
	fmt.Fprintf(&b, "- FCF margin: %s\n", formatPct(result.Stats.HistoricalAvgFCFMargin))
	b.WriteString("\n")

	b.WriteString("## History\n\n")
	writeMetricTable(&b, result.History.Rows())

	scenarios := make([]assumption.Scenario, 0, len(result.Projections))
	for s := range result.Projections {
		scenarios = append(scenarios, s)
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i] < scenarios[j] })

	for _, s := range scenarios {
		table := result.Projections[s]
		fmt.Fprintf(&b, "## Projection — %s\n\n", s)
		fmt.Fprintf(&b, "Revenue growth %s", formatPct(&table.Assumptions.RevenueGrowth))
		if table.Assumptions.TargetNetMargin != nil {
			fmt.Fprintf(&b, ", converging to %s net margin over %d years",
				formatPct(table.Assumptions.TargetNetMargin), table.Assumptions.YearsToProfitability)
		}
		b.WriteString(".\n\n")
		writeMetricTable(&b, table.Rows)
	}
	return b.String()
}

func writeMetricTable(b *strings.Builder, rows []*metrics.Record) {
	b.WriteString("| Year |")
	for _, m := range reportMetrics {
		fmt.Fprintf(b, " %s |", m)
	}
	b.WriteString("\n|")
	for i := 0; i < len(reportMetrics)+1; i++ {
		b.WriteString(" ---: |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %d |", row.Year)
		for _, m := range reportMetrics {
			fmt.Fprintf(b, " %s |", formatReportCell(m, row.Value(m)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func formatReportCell(m metrics.Metric, v *float64) string {
	if v == nil {
		return "—"
	}
	switch m {
	case metrics.MetricEPS:
		return fmt.Sprintf("%.2f", *v)
	case metrics.MetricNetMargin, metrics.MetricGrossMargin, metrics.MetricOperatingMargin, metrics.MetricFCFMargin:
		return fmt.Sprintf("%.1f%%", *v*100)
	default:
		return fmt.Sprintf("%.0f", *v)
	}
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
table { border-collapse: collapse; margin: 1rem 0; width: 100%%; }
th, td { border: 1px solid #d0d0e0; padding: 0.35rem 0.6rem; font-size: 0.9rem; }
th { background: #f0f0f8; }
td { text-align: right; }
h1, h2 { color: #16213e; }
</style>
</head>
<body>
%s
</body>
</html>
`

// WriteDashboard renders the markdown report to a standalone HTML page.
func WriteDashboard(path string, result *pipeline.Result) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(BuildReport(result)), &body); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	title := fmt.Sprintf("%s — Earnings Projection", result.Ticker)
	page := fmt.Sprintf(htmlShell, title, body.String())
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	return nil
}
