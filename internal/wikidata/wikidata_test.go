package wikidata

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/pkg/catalog"
)

func TestResolver(t *testing.T) {
	t.Parallel()

	resolver := NewResolver([]Formatter{
		{PID: catalog.DiscogsArtistPID, URLPattern: "https://www.discogs.com/artist/$1", IDRegex: `[1-9]\d*`},
		{PID: catalog.IMDbIDPID, URLPattern: "https://www.imdb.com/name/$1/"},
		{PID: "P999", URLPattern: "https://broken.example.com/no-placeholder"},
	}, nil, slog.Default())

	pid, id, ok := resolver.Resolve("https://www.discogs.com/artist/1000")
	require.True(t, ok)
	assert.Equal(t, catalog.DiscogsArtistPID, pid)
	assert.Equal(t, "1000", id)

	// Scheme, www and trailing slash variations still match.
	pid, id, ok = resolver.Resolve("http://discogs.com/artist/42/")
	require.True(t, ok)
	assert.Equal(t, catalog.DiscogsArtistPID, pid)
	assert.Equal(t, "42", id)

	pid, id, ok = resolver.Resolve("https://www.imdb.com/name/nm0000001/")
	require.True(t, ok)
	assert.Equal(t, catalog.IMDbIDPID, pid)
	assert.Equal(t, "nm0000001", id)

	_, _, ok = resolver.Resolve("https://example.com/somewhere/else")
	assert.False(t, ok)
}

func TestResolverGroupedIDRegex(t *testing.T) {
	t.Parallel()

	// Identifier regexes may carry alternation groups of their own;
	// the whole identifier must come back, not an inner fragment.
	resolver := NewResolver([]Formatter{
		{PID: "P1234", URLPattern: "https://example.org/artist/$1", IDRegex: `(old|new)-\d+`},
	}, nil, slog.Default())

	pid, id, ok := resolver.Resolve("https://example.org/artist/old-42")
	require.True(t, ok)
	assert.Equal(t, "P1234", pid)
	assert.Equal(t, "old-42", id)

	_, id, ok = resolver.Resolve("https://example.org/artist/new-7")
	require.True(t, ok)
	assert.Equal(t, "new-7", id)
}

func TestResolverSkipsMalformedFormatters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	resolver := NewResolver([]Formatter{
		{PID: "P999", URLPattern: "https://broken.example.com/no-placeholder"},
		{PID: catalog.IMDbIDPID, URLPattern: "https://www.imdb.com/name/$1/"},
	}, nil, log)

	_, _, ok := resolver.Resolve("https://broken.example.com/no-placeholder")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "skipping formatter")
	assert.Contains(t, buf.String(), "P999")

	_, _, ok = resolver.Resolve("https://www.imdb.com/name/nm0000001/")
	assert.True(t, ok)
}

func TestResolverFormatterOf(t *testing.T) {
	t.Parallel()

	resolver := NewResolver([]Formatter{
		{PID: catalog.IMDbIDPID, URLPattern: "https://www.imdb.com/name/$1/"},
	}, nil, slog.Default())

	pattern, ok := resolver.formatterOf(catalog.IMDbIDPID)
	require.True(t, ok)
	assert.Equal(t, "https://www.imdb.com/name/$1/", pattern)

	_, ok = resolver.formatterOf("P1953")
	assert.False(t, ok)
}

func TestIsMaxLag(t *testing.T) {
	t.Parallel()

	assert.True(t, isMaxLag(`{"error":{"code":"maxlag","info":"Waiting for a database server"}}`))
	assert.False(t, isMaxLag(`{"error":{"code":"badtoken","info":"Invalid CSRF token"}}`))
	assert.False(t, isMaxLag(""))
}

func TestQueryBuilders(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.Discogs)
	require.NoError(t, err)
	musician, err := cat.Entity(catalog.Musician)
	require.NoError(t, err)

	query := identifierQuery(musician)
	assert.Contains(t, query, "wdt:P31/wdt:P279* wd:"+catalog.MusicianQID)
	assert.Contains(t, query, "wdt:"+catalog.DiscogsArtistPID)

	subjects := subjectQuery(musician)
	assert.Contains(t, subjects, "FILTER NOT EXISTS")

	imdb, err := catalog.Get(catalog.IMDb)
	require.NoError(t, err)
	actor, err := imdb.Entity(catalog.Actor)
	require.NoError(t, err)

	// Occupation-selected kinds query through P106 instead of P31.
	occupation := identifierQuery(actor)
	assert.Contains(t, occupation, "wdt:"+catalog.OccupationPID+" wd:"+catalog.ActorQID)
	assert.NotContains(t, occupation, "P31")
}

func TestSnakValues(t *testing.T) {
	t.Parallel()

	stringSnak := snak{}
	stringSnak.DataValue.Type = "string"
	stringSnak.DataValue.Value = "nm0000001"
	assert.Equal(t, "nm0000001", stringSnak.stringValue())

	itemSnak := snak{}
	itemSnak.DataValue.Type = "wikibase-entityid"
	itemSnak.DataValue.Value = map[string]any{"id": "Q6581097"}
	assert.Equal(t, "Q6581097", itemSnak.entityID())

	timeSnak := snak{}
	timeSnak.DataValue.Type = "time"
	timeSnak.DataValue.Value = map[string]any{
		"time":      "+1882-01-01T00:00:00Z",
		"precision": float64(catalog.YearPrecision),
	}
	date, precision := timeSnak.timeValue()
	require.NotNil(t, date)
	require.NotNil(t, precision)
	assert.Equal(t, "1882-01-01", *date)
	assert.Equal(t, catalog.YearPrecision, *precision)
}

func TestMatchesValue(t *testing.T) {
	t.Parallel()

	stringSnak := snak{}
	stringSnak.DataValue.Type = "string"
	stringSnak.DataValue.Value = "nm0000001"
	assert.True(t, matchesValue(stringSnak, StringValue("nm0000001")))
	assert.False(t, matchesValue(stringSnak, StringValue("nm0000002")))

	itemSnak := snak{}
	itemSnak.DataValue.Type = "wikibase-entityid"
	itemSnak.DataValue.Value = map[string]any{"id": "Q6581097"}
	assert.True(t, matchesValue(itemSnak, ItemValue("Q6581097")))
	assert.False(t, matchesValue(itemSnak, ItemValue("Q6581072")))
	assert.False(t, matchesValue(itemSnak, StringValue("Q6581097")))

	timeSnak := snak{}
	timeSnak.DataValue.Type = "time"
	timeSnak.DataValue.Value = map[string]any{
		"time":      "+1882-01-01T00:00:00Z",
		"precision": float64(catalog.YearPrecision),
	}
	assert.True(t, matchesValue(timeSnak, TimeValue("1882-01-01", catalog.YearPrecision)))
	assert.False(t, matchesValue(timeSnak, TimeValue("1882-01-01", catalog.DayPrecision)))
	assert.False(t, matchesValue(timeSnak, ItemValue("Q1")))
}

func TestEntityToRecord(t *testing.T) {
	t.Parallel()

	entity := entityData{
		ID: "Q1",
		Labels: map[string]monolingual{
			"en": {Value: "John Doe"},
		},
		Aliases: map[string][]monolingual{
			"en": {{Value: "Johnny Doe"}},
		},
		Descriptions: map[string]monolingual{
			"en": {Value: "American musician"},
		},
		Claims: map[string][]claim{},
	}

	born := claim{}
	born.MainSnak.DataValue.Type = "time"
	born.MainSnak.DataValue.Value = map[string]any{
		"time":      "+1950-06-15T00:00:00Z",
		"precision": float64(catalog.DayPrecision),
	}
	entity.Claims[catalog.DateOfBirthPID] = []claim{born}

	gender := claim{}
	gender.MainSnak.DataValue.Type = "wikibase-entityid"
	gender.MainSnak.DataValue.Value = map[string]any{"id": "Q6581097"}
	entity.Claims[catalog.SexOrGenderPID] = []claim{gender}

	imdbID := claim{}
	imdbID.MainSnak.DataValue.Type = "string"
	imdbID.MainSnak.DataValue.Value = "nm0000001"
	entity.Claims[catalog.IMDbIDPID] = []claim{imdbID}

	// P856 (official website) has datatype URL: its value is a URL
	// already and needs no formatter.
	website := claim{}
	website.MainSnak.DataValue.Type = "string"
	website.MainSnak.DataValue.Value = "https://johndoe.example.com"
	entity.Claims["P856"] = []claim{website}

	resolver := NewResolver([]Formatter{
		{PID: catalog.IMDbIDPID, URLPattern: "https://www.imdb.com/name/$1/"},
	}, []string{"P856"}, slog.Default())

	rec := entity.toRecord(resolver)
	assert.Equal(t, "Q1", rec.QID)
	assert.Equal(t, []string{"John Doe", "Johnny Doe"}, rec.Names)
	assert.Equal(t, "American musician", rec.Description)
	require.NotNil(t, rec.Born)
	assert.Equal(t, "1950-06-15", *rec.Born)
	assert.Equal(t, "male", rec.Gender)
	assert.ElementsMatch(t, []string{
		"https://www.imdb.com/name/nm0000001/",
		"https://johndoe.example.com",
	}, rec.URLs)
}
