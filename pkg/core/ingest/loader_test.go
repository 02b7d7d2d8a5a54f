package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaguri8/earning-projections/pkg/core/facts"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func revenueOf(t *testing.T, doc *facts.Node) float64 {
	t.Helper()
	child, ok := doc.Field("Revenues")
	require.True(t, ok)
	v := facts.NormalizeValue(child)
	require.NotNil(t, v)
	return *v
}

func TestLoadYearExactName(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "ACME_2023.json", `{"Revenues": 100}`)

	doc, err := NewLoader(dir, nil).LoadYear("ACME", 2023)
	require.NoError(t, err)
	assert.Equal(t, 100.0, revenueOf(t, doc))
}

func TestLoadYearCaseAndSuffixVariants(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "acme_2023_xbrl.json", `{"Revenues": 200}`)

	doc, err := NewLoader(dir, nil).LoadYear("ACME", 2023)
	require.NoError(t, err)
	assert.Equal(t, 200.0, revenueOf(t, doc))
}

func TestLoadYearGlobFallback(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "facts_ACME_fy2023_dump.json", `{"Revenues": 300}`)

	doc, err := NewLoader(dir, nil).LoadYear("acme", 2023)
	require.NoError(t, err)
	assert.Equal(t, 300.0, revenueOf(t, doc))
}

func TestLoadYearMissing(t *testing.T) {
	_, err := NewLoader(t.TempDir(), nil).LoadYear("ACME", 2023)
	assert.Error(t, err)
}

func TestLoadRangeSkipsMissingYears(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "ACME_2021.json", `{"Revenues": 100}`)
	writeDoc(t, dir, "ACME_2023.json", `{"Revenues": 300}`)

	docs := NewLoader(dir, nil).LoadRange("ACME", 2021, 2023)
	require.Len(t, docs, 2)
	assert.Contains(t, docs, 2021)
	assert.Contains(t, docs, 2023)
	assert.NotContains(t, docs, 2022)
}

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "ACME_2022.json", `{}`)
	writeDoc(t, dir, "acme_2023.json", `{}`)
	writeDoc(t, dir, "OTHR_2023.json", `{}`)
	writeDoc(t, dir, "notes.json", `{}`)

	available, err := NewLoader(dir, nil).Available()
	require.NoError(t, err)

	want := map[string][]int{
		"ACME": {2022, 2023},
		"OTHR": {2023},
	}
	assert.Empty(t, cmp.Diff(want, available))
}

func TestDecodeDocumentStrictJSON(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"Revenues": 100, "CostOfSales": 60}`))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Len())
}

func TestDecodeDocumentHJSON(t *testing.T) {
	// Comments and unquoted keys: rejected by strict JSON, valid HJSON.
	raw := `{
  # annual figures
  Revenues: 100
  CostOfSales: 60
}`
	doc, err := DecodeDocument([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 100.0, revenueOf(t, doc))
}

func TestDecodeDocumentRepairsTruncatedJSON(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"Revenues": 100, "CostOfSales": 60`))
	require.NoError(t, err)
	assert.Equal(t, 100.0, revenueOf(t, doc))
}
