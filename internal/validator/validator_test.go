package validator

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/ingester"
	"github.com/askiada/go-linker/pkg/catalog"
	"github.com/askiada/go-linker/pkg/linker"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestTruncateDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1950", truncateDate("1950-06-15", catalog.DayPrecision, catalog.YearPrecision))
	assert.Equal(t, "1950-06", truncateDate("1950-06-15", catalog.MonthPrecision, catalog.DayPrecision))
	assert.Equal(t, "1950-06-15", truncateDate("1950-06-15", catalog.DayPrecision, catalog.DayPrecision))
}

func TestDatesAgree(t *testing.T) {
	t.Parallel()

	// Year-only on one side agrees with any date in the same year.
	agree, comparable := datesAgree(
		strPtr("1950-01-01"), intPtr(catalog.YearPrecision),
		strPtr("1950-06-15"), intPtr(catalog.DayPrecision))
	assert.True(t, comparable)
	assert.True(t, agree)

	agree, comparable = datesAgree(
		strPtr("1950-06-15"), intPtr(catalog.DayPrecision),
		strPtr("1951-06-15"), intPtr(catalog.DayPrecision))
	assert.True(t, comparable)
	assert.False(t, agree)

	_, comparable = datesAgree(nil, nil, strPtr("1950-06-15"), intPtr(catalog.DayPrecision))
	assert.False(t, comparable)
}

func TestTidsByQID(t *testing.T) {
	t.Parallel()

	samples := []linker.Sample{
		{ID: "Q1", TIDs: []string{"100"}},
		{ID: "Q2", TIDs: []string{"100", "200"}},
		{ID: "Q3"},
	}

	qidsByTID, tids := tidsByQID(samples)
	assert.Equal(t, []string{"100", "200"}, tids)
	assert.Equal(t, []string{"Q1", "Q2"}, qidsByTID["100"])
	assert.Equal(t, []string{"Q2"}, qidsByTID["200"])
}

func TestCheckBioRowMismatch(t *testing.T) {
	t.Parallel()

	v := New(nil, slog.Default())
	result := &Result{Deprecate: ingester.Invalid{}}

	sample := linker.Sample{
		ID:            "Q1",
		TIDs:          []string{"100"},
		Born:          strPtr("1950-06-15"),
		BornPrecision: intPtr(catalog.DayPrecision),
		Gender:        "male",
	}
	row := db.BioRow{
		CatalogID:     "100",
		Born:          strPtr("1962-03-02"),
		BornPrecision: intPtr(catalog.DayPrecision),
		Gender:        "male",
	}

	v.checkBioRow(sample, "100", row, result)
	require.Contains(t, result.Deprecate, "100")
	assert.Equal(t, []string{"Q1"}, result.Deprecate["100"])
	assert.Empty(t, result.Additions)
}

func TestCheckBioRowAdditions(t *testing.T) {
	t.Parallel()

	v := New(nil, slog.Default())
	result := &Result{Deprecate: ingester.Invalid{}}

	sample := linker.Sample{ID: "Q1", TIDs: []string{"100"}}
	row := db.BioRow{
		CatalogID:     "100",
		Born:          strPtr("1950-06-15"),
		BornPrecision: intPtr(catalog.DayPrecision),
		Gender:        "female",
	}

	v.checkBioRow(sample, "100", row, result)
	assert.Empty(t, result.Deprecate)
	require.Len(t, result.Additions, 2)
	assert.Equal(t, catalog.DateOfBirthPID, result.Additions[0].PID)
	assert.Equal(t, "1950-06-15", result.Additions[0].Value)
	require.NotNil(t, result.Additions[0].DatePrecision)
	assert.Equal(t, catalog.DayPrecision, *result.Additions[0].DatePrecision)
	assert.Equal(t, catalog.SexOrGenderPID, result.Additions[1].PID)
	assert.Equal(t, "Q6581072", result.Additions[1].Value)
	assert.Nil(t, result.Additions[1].DatePrecision)
}

func TestCheckBioRowDatePrecisionDefaults(t *testing.T) {
	t.Parallel()

	v := New(nil, slog.Default())
	result := &Result{Deprecate: ingester.Invalid{}}

	// Catalog rows without a stored precision still yield full-date
	// statements.
	sample := linker.Sample{ID: "Q1", TIDs: []string{"100"}}
	row := db.BioRow{CatalogID: "100", Died: strPtr("1987-06-22")}

	v.checkBioRow(sample, "100", row, result)
	require.Len(t, result.Additions, 1)
	assert.Equal(t, catalog.DateOfDeathPID, result.Additions[0].PID)
	require.NotNil(t, result.Additions[0].DatePrecision)
	assert.Equal(t, catalog.DayPrecision, *result.Additions[0].DatePrecision)
}

func TestCheckBioRowGenderOnlyOnOneSide(t *testing.T) {
	t.Parallel()

	v := New(nil, slog.Default())
	result := &Result{Deprecate: ingester.Invalid{}}

	// Gender missing on the catalog side is not a mismatch.
	sample := linker.Sample{ID: "Q1", TIDs: []string{"100"}, Gender: "male"}
	row := db.BioRow{CatalogID: "100"}

	v.checkBioRow(sample, "100", row, result)
	assert.Empty(t, result.Deprecate)
	assert.Empty(t, result.Additions)
}
