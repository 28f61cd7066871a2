package importer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/pkg/catalog"
)

func writeDump(t *testing.T, lines string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dump.tsv.gz")
	file, err := os.Create(path)
	require.NoError(t, err)

	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte(lines))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	return path
}

func TestTSVReader(t *testing.T) {
	t.Parallel()

	path := writeDump(t, "nconst\tprimaryName\tbirthYear\nnm0000001\tFred Astaire\t1899\nnm0000002\tLauren Bacall\t\\N\n")

	reader, err := OpenTSV(path)
	require.NoError(t, err)
	defer reader.Close()

	record, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "nm0000001", reader.Field(record, "nconst"))
	assert.Equal(t, "Fred Astaire", reader.Field(record, "primaryName"))
	assert.Equal(t, "1899", reader.Field(record, "birthYear"))

	record, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "", reader.Field(record, "birthYear"), "null marker should come out empty")
	assert.Equal(t, "", reader.Field(record, "unknownColumn"))

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestYearToDate(t *testing.T) {
	t.Parallel()

	date, precision := yearToDate("1899")
	require.NotNil(t, date)
	require.NotNil(t, precision)
	assert.Equal(t, "1899-01-01", *date)
	assert.Equal(t, catalog.YearPrecision, *precision)

	date, precision = yearToDate("")
	assert.Nil(t, date)
	assert.Nil(t, precision)
}

func TestParsePerson(t *testing.T) {
	t.Parallel()

	path := writeDump(t, "nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles\n"+
		"nm0000001\tFred Astaire\t1899\t1987\tactor,soundtrack\ttt0050419,tt0053137\n")

	reader, err := OpenTSV(path)
	require.NoError(t, err)
	defer reader.Close()

	record, err := reader.Next()
	require.NoError(t, err)

	extractor := NewIMDbExtractor(t.TempDir(), slog.Default())
	parsed := extractor.parsePerson(reader, record)
	require.NotNil(t, parsed)

	assert.Equal(t, []string{catalog.Actor, catalog.Musician}, parsed.kinds)
	assert.Equal(t, "nm0000001", parsed.row.CatalogID)
	assert.Equal(t, "male", parsed.row.Gender)
	assert.Equal(t, "fred astaire", parsed.row.NameTokens)
	require.NotNil(t, parsed.row.Born)
	assert.Equal(t, "1899-01-01", *parsed.row.Born)
	assert.Equal(t, catalog.ActorQID+" "+catalog.MusicianQID, parsed.row.Occupations)
	require.Len(t, parsed.rels, 2)
	assert.Equal(t, "tt0050419", parsed.rels[0].ToCatalogID)
}

func TestParsePersonMiscellaneousOnly(t *testing.T) {
	t.Parallel()

	path := writeDump(t, "nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles\n"+
		"nm0000100\tSomeone Obscure\t\\N\t\\N\tmiscellaneous\t\\N\n")

	reader, err := OpenTSV(path)
	require.NoError(t, err)
	defer reader.Close()

	record, err := reader.Next()
	require.NoError(t, err)

	extractor := NewIMDbExtractor(t.TempDir(), slog.Default())
	parsed := extractor.parsePerson(reader, record)
	require.NotNil(t, parsed)

	assert.Equal(t, personKinds, parsed.kinds)
	assert.Equal(t, "", parsed.row.Gender)
	assert.Empty(t, parsed.rels)
}

func TestParsePersonSkipsUnusableProfessions(t *testing.T) {
	t.Parallel()

	path := writeDump(t, "nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles\n"+
		"nm0000200\tNo Profession\t\\N\t\\N\t\\N\t\\N\n"+
		"nm0000201\tCamera Person\t1950\t\\N\tcinematographer\t\\N\n"+
		"nm0000202\tCamera Writer\t1950\t\\N\tcinematographer,writer\t\\N\n")

	reader, err := OpenTSV(path)
	require.NoError(t, err)
	defer reader.Close()

	extractor := NewIMDbExtractor(t.TempDir(), slog.Default())

	// No professions at all: no table can hold the person.
	record, err := reader.Next()
	require.NoError(t, err)
	assert.Nil(t, extractor.parsePerson(reader, record))

	// Professions outside the mapping select no table either.
	record, err = reader.Next()
	require.NoError(t, err)
	assert.Nil(t, extractor.parsePerson(reader, record))

	// A mapped profession still wins over unmapped ones.
	record, err = reader.Next()
	require.NoError(t, err)
	parsed := extractor.parsePerson(reader, record)
	require.NotNil(t, parsed)
	assert.Equal(t, []string{catalog.Writer}, parsed.kinds)
}

func TestExtractorFor(t *testing.T) {
	t.Parallel()

	extractor, err := ExtractorFor(catalog.IMDb, t.TempDir(), slog.Default())
	require.NoError(t, err)
	assert.Equal(t, catalog.IMDb, extractor.Catalog().Name)
	assert.Len(t, extractor.DumpURLs(), 2)

	_, err = ExtractorFor(catalog.Discogs, t.TempDir(), slog.Default())
	assert.Error(t, err)
}
