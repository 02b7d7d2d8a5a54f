package metrics

import (
	"github.com/zaguri8/earning-projections/pkg/core/facts"
)

// ExtractYear resolves every canonical metric against one fact document for
// the target fiscal year and computes the derived ratios. Metrics that could
// not be resolved stay nil; extraction itself never fails.
func ExtractYear(doc *facts.Node, targetYear int) *Record {
	return ExtractYearWithTable(doc, targetYear, DefaultAliases())
}

// ExtractYearWithTable is ExtractYear with an explicit alias table.
func ExtractYearWithTable(doc *facts.Node, targetYear int, table *AliasTable) *Record {
	record := &Record{Year: targetYear}

	if isFlatDocument(doc) {
		extractFlat(doc, record, table)
	} else {
		resolver := facts.NewResolver(doc)
		for _, m := range table.Metrics() {
			record.set(m, resolver.Resolve(table.Aliases(m), targetYear, table.PrioritySections(m)))
		}
	}

	record.CalculateDerived()
	return record
}

// isFlatDocument reports whether every top-level value is already a plain
// number, the shape produced by the companyfacts downloader. Flat documents
// need no period disambiguation and are read by direct key lookup.
func isFlatDocument(doc *facts.Node) bool {
	if doc.Kind() != facts.KindMapping || doc.Len() == 0 {
		return false
	}
	for _, key := range doc.FieldKeys() {
		child, _ := doc.Field(key)
		if child.Kind() != facts.KindScalar {
			return false
		}
		switch child.Scalar().(type) {
		case float64, float32, int, int64:
		default:
			return false
		}
	}
	return true
}

func extractFlat(doc *facts.Node, record *Record, table *AliasTable) {
	for _, m := range table.Metrics() {
		for _, alias := range table.Aliases(m) {
			child, ok := doc.Field(alias)
			if !ok {
				continue
			}
			if v := facts.NormalizeValue(child); v != nil {
				record.set(m, v)
				break
			}
		}
	}
}
