package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"go.uber.org/zap"

	"github.com/zaguri8/earning-projections/pkg/core/facts"
)

// Loader reads fact documents from a local input directory of
// TICKER_YEAR.json dumps.
type Loader struct {
	dir string
	log *zap.Logger
}

// NewLoader builds a loader over one directory. A nil logger disables
// logging.
func NewLoader(dir string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{dir: dir, log: log}
}

// LoadYear finds and decodes the document for one ticker and fiscal year.
// Several filename spellings are tried before falling back to any JSON file
// whose name mentions both the ticker and the year.
func (l *Loader) LoadYear(ticker string, year int) (*facts.Node, error) {
	names := []string{
		fmt.Sprintf("%s_%d.json", ticker, year),
		fmt.Sprintf("%s_%d.json", strings.ToUpper(ticker), year),
		fmt.Sprintf("%s_%d.json", strings.ToLower(ticker), year),
		fmt.Sprintf("%s_%d_xbrl.json", ticker, year),
		fmt.Sprintf("%s_%d_xbrl.json", strings.ToUpper(ticker), year),
		fmt.Sprintf("%s_%d_xbrl.json", strings.ToLower(ticker), year),
	}
	for _, name := range names {
		path := filepath.Join(l.dir, name)
		if _, err := os.Stat(path); err == nil {
			return l.loadFile(path)
		}
	}

	matches, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(ticker)
	yearStr := strconv.Itoa(year)
	for _, path := range matches {
		name := strings.ToUpper(filepath.Base(path))
		if strings.Contains(name, upper) && strings.Contains(name, yearStr) {
			return l.loadFile(path)
		}
	}

	return nil, fmt.Errorf("no fact document for %s %d in %s", ticker, year, l.dir)
}

// LoadRange loads the documents for a span of fiscal years, inclusive.
// Missing years are logged and skipped; a partial history is usable, an
// aborted batch is not.
func (l *Loader) LoadRange(ticker string, startYear, endYear int) map[int]*facts.Node {
	docs := make(map[int]*facts.Node)
	for year := startYear; year <= endYear; year++ {
		doc, err := l.LoadYear(ticker, year)
		if err != nil {
			l.log.Warn("skipping year",
				zap.String("ticker", ticker), zap.Int("year", year), zap.Error(err))
			continue
		}
		docs[year] = doc
	}
	return docs
}

// Available scans the directory and reports which tickers and years have
// documents, keyed by upper-cased ticker.
func (l *Loader) Available() (map[string][]int, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	available := make(map[string][]int)
	for _, path := range matches {
		stem := strings.TrimSuffix(filepath.Base(path), ".json")
		parts := strings.Split(stem, "_")
		if len(parts) < 2 {
			continue
		}
		year, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		ticker := strings.ToUpper(parts[0])
		available[ticker] = append(available[ticker], year)
	}
	return available, nil
}

func (l *Loader) loadFile(path string) (*facts.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	l.log.Info("loaded fact document", zap.String("path", path))
	return doc, nil
}

// DecodeDocument parses raw document bytes tolerantly: strict JSON first,
// then HJSON for files with comments or relaxed punctuation, then a repair
// pass for truncated or sloppily generated dumps. Only when all three fail
// is the document rejected.
func DecodeDocument(data []byte) (*facts.Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return facts.FromAny(v), nil
	}

	if err := hjson.Unmarshal(data, &v); err == nil {
		return facts.FromAny(v), nil
	}

	repaired, err := jsonrepair.RepairJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("unparseable fact document: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return nil, fmt.Errorf("unparseable fact document after repair: %w", err)
	}
	return facts.FromAny(v), nil
}
