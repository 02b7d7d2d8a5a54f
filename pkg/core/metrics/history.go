package metrics

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/zaguri8/earning-projections/pkg/core/facts"
)

// Table is a year-ordered collection of metric records. Once built it is
// never mutated; it is the sole input to every scenario projection.
type Table struct {
	rows []*Record
}

// NewTable builds a table from records, sorted by ascending year.
func NewTable(rows []*Record) *Table {
	sorted := make([]*Record, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return &Table{rows: sorted}
}

// Rows returns the records in ascending year order.
func (t *Table) Rows() []*Record {
	if t == nil {
		return nil
	}
	return t.rows
}

// Len returns the number of years in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Years returns the fiscal years covered, ascending.
func (t *Table) Years() []int {
	years := make([]int, 0, t.Len())
	for _, r := range t.Rows() {
		years = append(years, r.Year)
	}
	return years
}

// Row returns the record for one fiscal year, or nil.
func (t *Table) Row(year int) *Record {
	for _, r := range t.Rows() {
		if r.Year == year {
			return r
		}
	}
	return nil
}

// LastRow returns the most recent year's record, or nil for an empty table.
func (t *Table) LastRow() *Record {
	if t.Len() == 0 {
		return nil
	}
	return t.rows[len(t.rows)-1]
}

// BuildHistory extracts each year's document into a historical table. Years
// are independent, so extraction fans out concurrently; a missing document
// for one year is logged and skipped without aborting the rest. A document
// that resolves nothing still produces a sparse row — degraded output beats
// an aborted batch.
func BuildHistory(docs map[int]*facts.Node, log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		rows []*Record
	)

	for year, doc := range docs {
		if doc == nil {
			log.Warn("no fact document for year, skipping", zap.Int("year", year))
			continue
		}
		wg.Add(1)
		go func(year int, doc *facts.Node) {
			defer wg.Done()
			record := ExtractYear(doc, year)
			mu.Lock()
			rows = append(rows, record)
			mu.Unlock()
		}(year, doc)
	}
	wg.Wait()

	return NewTable(rows)
}
