package ingester

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/pkg/catalog"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	return rows
}

func testSetup(t *testing.T) (*Ingester, *catalog.Catalog, *catalog.Entity, string) {
	t.Helper()

	cat, err := catalog.Get(catalog.Discogs)
	require.NoError(t, err)
	entity, err := cat.Entity(catalog.Musician)
	require.NoError(t, err)

	sharedDir := t.TempDir()

	return New(nil, sharedDir, slog.Default()), cat, entity, sharedDir
}

func TestAddIdentifiersNoUpload(t *testing.T) {
	t.Parallel()

	ing, cat, entity, sharedDir := testSetup(t)

	err := ing.AddIdentifiers(context.Background(), cat, entity, map[string]string{
		"Q1": "12345",
	})
	require.NoError(t, err)

	rows := readCSV(t, catalog.StatementsPath(sharedDir, cat.Name, entity.Kind, "identifiers"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"qid", "pid", "tid"}, rows[0])
	assert.Equal(t, []string{"Q1", catalog.DiscogsArtistPID, "12345"}, rows[1])
}

func TestAddStatementsNoUpload(t *testing.T) {
	t.Parallel()

	ing, cat, entity, sharedDir := testSetup(t)

	err := ing.AddStatements(context.Background(), cat, entity, []Statement{
		{QID: "Q1", PID: catalog.SexOrGenderPID, Value: "Q6581097"},
	})
	require.NoError(t, err)

	rows := readCSV(t, catalog.StatementsPath(sharedDir, cat.Name, entity.Kind, "statements"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Q1", catalog.SexOrGenderPID, "Q6581097", ""}, rows[1])
}

func TestDeleteAndDeprecateNoUpload(t *testing.T) {
	t.Parallel()

	ing, cat, entity, sharedDir := testSetup(t)

	invalid := Invalid{"12345": {"Q1", "Q2"}}

	require.NoError(t, ing.DeleteIdentifiers(context.Background(), cat, entity, invalid))
	rows := readCSV(t, catalog.StatementsPath(sharedDir, cat.Name, entity.Kind, "deleted_identifiers"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"tid", "qid", "pid"}, rows[0])

	require.NoError(t, ing.DeprecateIdentifiers(context.Background(), cat, entity, invalid))
	rows = readCSV(t, catalog.StatementsPath(sharedDir, cat.Name, entity.Kind, "deprecated_identifiers"))
	require.Len(t, rows, 3)
}

func TestAddWorksNoUpload(t *testing.T) {
	t.Parallel()

	ing, cat, entity, sharedDir := testSetup(t)

	err := ing.AddWorks(context.Background(), cat, entity, []WorkStatement{
		{WorkQID: "Q100", PID: catalog.PerformerPID, PersonQID: "Q1", PersonTID: "12345"},
	})
	require.NoError(t, err)

	rows := readCSV(t, catalog.StatementsPath(sharedDir, cat.Name, entity.Kind, "works"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Q100", catalog.PerformerPID, "Q1", "12345"}, rows[1])
}

func TestStatementValue(t *testing.T) {
	t.Parallel()

	item := statementValue(Statement{Value: "Q6581097"})
	assert.IsType(t, map[string]any{}, item)

	str := statementValue(Statement{Value: "nm0000001"})
	assert.Equal(t, "nm0000001", str)

	// Dates target time-datatype properties, so they carry their
	// precision instead of going out as plain strings.
	precision := catalog.YearPrecision
	date := statementValue(Statement{Value: "1950-01-01", DatePrecision: &precision})
	value, ok := date.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+1950-01-01T00:00:00Z", value["time"])
	assert.Equal(t, catalog.YearPrecision, value["precision"])
}
