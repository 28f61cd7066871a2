package linker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/wikidata"
	"github.com/askiada/go-linker/pkg/catalog"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestFromWikidataRecord(t *testing.T) {
	t.Parallel()

	rec := wikidata.Record{
		QID:           "Q1",
		Names:         []string{"John Doe", "Johnny Doe", "John Doe"},
		Born:          strPtr("1950-06-15"),
		BornPrecision: intPtr(catalog.DayPrecision),
		URLs:          []string{"https://example.com/john", "https://example.com/john"},
		Description:   "American folk musician",
		TIDs:          []string{"12345"},
	}

	sample := FromWikidataRecord(rec)
	assert.Equal(t, "Q1", sample.ID)
	assert.Equal(t, []string{"John Doe", "Johnny Doe"}, sample.Names)
	assert.Equal(t, []string{"john", "doe", "johnny"}, sample.NameTokens)
	assert.Equal(t, []string{"https://example.com/john"}, sample.URLs)
	assert.Equal(t, []string{"example", "john"}, sample.URLTokens)
	assert.Equal(t, []string{"american", "folk", "musician"}, sample.DescriptionTokens)
	assert.Equal(t, []string{"12345"}, sample.TIDs)
}

func TestFromTargetRecordsAggregates(t *testing.T) {
	t.Parallel()

	records := []db.TargetRecord{
		{
			TID:           "12345",
			Name:          "John Doe",
			NameTokens:    "john doe",
			URL:           "https://example.com/a",
			Born:          strPtr("1950-01-01"),
			BornPrecision: intPtr(catalog.YearPrecision),
		},
		{
			TID:           "12345",
			Name:          "John Doe",
			NameTokens:    "john doe",
			URL:           "https://example.com/b",
			Born:          strPtr("1950-06-15"),
			BornPrecision: intPtr(catalog.DayPrecision),
			Gender:        "male",
		},
	}

	sample := FromTargetRecords("12345", records)
	assert.Equal(t, []string{"John Doe"}, sample.Names)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, sample.URLs)
	assert.Equal(t, []string{"example", "a", "b"}, sample.URLTokens)
	// The more precise date wins the merge.
	require.NotNil(t, sample.Born)
	assert.Equal(t, "1950-06-15", *sample.Born)
	require.NotNil(t, sample.BornPrecision)
	assert.Equal(t, catalog.DayPrecision, *sample.BornPrecision)
	assert.Equal(t, "male", sample.Gender)
}

func TestURLExactMatch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, catalog.FeatureMissingValue, urlExactMatch(nil, []string{"https://a"}))
	assert.Equal(t, 1.0, urlExactMatch([]string{"https://a"}, []string{"https://a"}))
	assert.Equal(t, 0.5, urlExactMatch([]string{"https://a", "https://b"}, []string{"https://a"}))
	assert.Equal(t, 0.0, urlExactMatch([]string{"https://a"}, []string{"https://b"}))
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, catalog.FeatureMissingValue, nameSimilarity(nil, []string{"john"}))
	assert.Equal(t, 1.0, nameSimilarity([]string{"john doe"}, []string{"john doe"}))

	// "john" vs "joan": one substitution over length four.
	assert.InDelta(t, 0.75, nameSimilarity([]string{"john"}, []string{"joan"}), 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, catalog.FeatureMissingValue, cosineSimilarity(nil, []string{"folk"}))
	assert.InDelta(t, 1.0, cosineSimilarity([]string{"folk", "musician"}, []string{"musician", "folk"}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]string{"folk"}, []string{"painter"}))

	// Half the tokens shared.
	sim := cosineSimilarity([]string{"folk", "musician"}, []string{"folk", "painter"})
	assert.InDelta(t, 0.5, sim, 1e-9)
}

func TestExtractFeatures(t *testing.T) {
	t.Parallel()

	wd := Sample{
		Names:             []string{"John Doe"},
		URLs:              []string{"https://example.com/john"},
		URLTokens:         []string{"example", "john"},
		DescriptionTokens: []string{"american", "musician"},
	}
	target := Sample{
		Names:             []string{"John Doe"},
		URLs:              []string{"https://example.com/john"},
		URLTokens:         []string{"example", "john"},
		DescriptionTokens: []string{"american", "musician"},
	}

	features := ExtractFeatures(wd, target)
	require.Len(t, features, len(FeatureNames))
	assert.Equal(t, 1.0, features[0])
	assert.InDelta(t, 1.0, features[1], 1e-9)
	assert.Equal(t, 1.0, features[2])
	assert.InDelta(t, 1.0, features[3], 1e-9)

	empty := ExtractFeatures(Sample{}, target)
	for i, value := range empty {
		assert.Equal(t, catalog.FeatureMissingValue, value, FeatureNames[i])
	}
}

func TestTrainingPairs(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		{ID: "Q1", TIDs: []string{"100"}},
		{ID: "Q2", TIDs: []string{"200", "201"}},
		{ID: "Q3"},
	}

	pairs := TrainingPairs(samples)

	var positives, negatives []Pair
	for _, pair := range pairs {
		if pair.Label == 1 {
			positives = append(positives, pair)
		} else {
			negatives = append(negatives, pair)
		}
	}

	require.Len(t, positives, 3)
	assert.Equal(t, Pair{QID: "Q1", TID: "100", Label: 1}, positives[0])

	// Q1 paired against Q2's identifiers, Q2 against Q1's.
	require.Len(t, negatives, 3)
	assert.Equal(t, "Q1", negatives[0].QID)
	assert.Equal(t, "200", negatives[0].TID)
}

func TestTrainingPairsSingleItem(t *testing.T) {
	t.Parallel()

	pairs := TrainingPairs([]Sample{{ID: "Q1", TIDs: []string{"100"}}})
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].Label)
}

type fakeSearcher struct {
	tokenResults   []db.SearchResult
	perfectResults map[string][]db.SearchResult
	tokenCalls     int
}

func (f *fakeSearcher) TokenSearch(_ context.Context, _ *catalog.Catalog, _ *catalog.Entity, _ []string, _ bool, _ int) ([]db.SearchResult, error) {
	f.tokenCalls++

	return f.tokenResults, nil
}

func (f *fakeSearcher) PerfectNameSearch(_ context.Context, _ *catalog.Catalog, _ *catalog.Entity, name string, _ int) ([]db.SearchResult, error) {
	return f.perfectResults[name], nil
}

func TestCandidatePairs(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.Discogs)
	require.NoError(t, err)
	entity, err := cat.Entity(catalog.Musician)
	require.NoError(t, err)

	searcher := &fakeSearcher{
		tokenResults: []db.SearchResult{{TID: "100"}, {TID: "200"}, {TID: "100"}},
	}
	sample := Sample{ID: "Q1", NameTokens: []string{"john", "doe"}}

	pairs, err := CandidatePairs(context.Background(), searcher, cat, entity, sample)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{QID: "Q1", TID: "100"}, {QID: "Q1", TID: "200"}}, pairs)
}

func TestCandidatePairsFallsBackToExactNames(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.Discogs)
	require.NoError(t, err)
	entity, err := cat.Entity(catalog.Musician)
	require.NoError(t, err)

	searcher := &fakeSearcher{
		perfectResults: map[string][]db.SearchResult{
			"John Doe":   {{TID: "100"}, {TID: "100"}},
			"Johnny Doe": {{TID: "200"}},
		},
	}
	sample := Sample{
		ID:         "Q1",
		Names:      []string{"John Doe", "Johnny Doe"},
		NameTokens: []string{"john", "doe", "johnny"},
	}

	pairs, err := CandidatePairs(context.Background(), searcher, cat, entity, sample)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.tokenCalls)
	assert.Equal(t, []Pair{{QID: "Q1", TID: "100"}, {QID: "Q1", TID: "200"}}, pairs)
}

func TestSamplesRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "samples", "set.jsonl.gz")
	samples := []Sample{
		{ID: "Q1", Names: []string{"John Doe"}, TIDs: []string{"100"}},
		{ID: "Q2", Born: strPtr("1950-06-15"), BornPrecision: intPtr(catalog.DayPrecision)},
	}

	require.NoError(t, writeSamples(path, samples))
	assert.True(t, fileExists(path))

	loaded, err := readSamples(path)
	require.NoError(t, err)
	assert.Equal(t, samples, loaded)
}

func TestFeaturesRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "features", "training.jsonl.gz")
	vectors := []FeatureVector{
		{QID: "Q1", TID: "100", Features: []float64{1, 0.5, 0.75, 0}, Label: 1},
		{QID: "Q2", TID: "200", Features: []float64{0, 0, 0, 0}, Label: 0},
	}

	require.NoError(t, writeFeatures(path, vectors))

	loaded, err := ReadFeatures(path)
	require.NoError(t, err)
	assert.Equal(t, vectors, loaded)
}

func TestLinksRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results", "links.csv.gz")
	links := []Link{
		{QID: "Q1", TID: "100", Confidence: 0.913},
		{QID: "Q2", TID: "200", Confidence: 0.5},
	}

	require.NoError(t, WriteLinks(path, links))

	loaded, err := ReadLinks(path)
	require.NoError(t, err)
	assert.Equal(t, links, loaded)
}

func TestValidateGoal(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateGoal(catalog.TrainingGoal))
	assert.NoError(t, validateGoal(catalog.ClassificationGoal))
	assert.Error(t, validateGoal("evaluation"))
}
