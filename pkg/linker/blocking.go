package linker

import (
	"context"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/pkg/catalog"
)

// CandidateLimit caps how many catalog candidates blocking keeps per
// Wikidata item.
const CandidateLimit = 5

// nameSearcher is the slice of the catalog database blocking relies
// on.
type nameSearcher interface {
	TokenSearch(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, tokens []string, booleanMode bool, limit int) ([]db.SearchResult, error)
	PerfectNameSearch(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, name string, limit int) ([]db.SearchResult, error)
}

// Pair is one candidate (Wikidata item, catalog record) comparison.
type Pair struct {
	QID string
	TID string
	// Label is 1 for a known match in training pairs.
	Label int
}

// TrainingPairs turns Wikidata samples carrying known identifiers into
// labeled pairs: the known (QID, TID) links are the positives, and each
// item paired with the identifiers of the next linked item yields the
// negatives.
func TrainingPairs(samples []Sample) []Pair {
	linked := make([]Sample, 0, len(samples))
	for _, sample := range samples {
		if len(sample.TIDs) > 0 {
			linked = append(linked, sample)
		}
	}

	var pairs []Pair
	for i, sample := range linked {
		for _, tid := range sample.TIDs {
			pairs = append(pairs, Pair{QID: sample.ID, TID: tid, Label: 1})
		}

		if len(linked) < 2 {
			continue
		}
		next := linked[(i+1)%len(linked)]
		for _, tid := range next.TIDs {
			if !contains(sample.TIDs, tid) {
				pairs = append(pairs, Pair{QID: sample.ID, TID: tid, Label: 0})
			}
		}
	}

	return pairs
}

func contains(values []string, value string) bool {
	for _, existing := range values {
		if existing == value {
			return true
		}
	}

	return false
}

// CandidatePairs blocks one Wikidata sample against the catalog by
// fulltext search over its name tokens, keeping at most CandidateLimit
// candidates. When the fulltext search comes back empty the exact
// names are looked up instead, which still catches records whose
// tokenized form diverged.
func CandidatePairs(ctx context.Context, searcher nameSearcher, cat *catalog.Catalog, entity *catalog.Entity, sample Sample) ([]Pair, error) {
	var results []db.SearchResult
	if len(sample.NameTokens) > 0 {
		var err error
		results, err = searcher.TokenSearch(ctx, cat, entity, sample.NameTokens, true, CandidateLimit)
		if err != nil {
			return nil, err
		}
	}

	if len(results) == 0 {
		for _, name := range sample.Names {
			exact, err := searcher.PerfectNameSearch(ctx, cat, entity, name, CandidateLimit)
			if err != nil {
				return nil, err
			}
			results = append(results, exact...)
			if len(results) >= CandidateLimit {
				break
			}
		}
	}

	seen := make(map[string]struct{}, len(results))
	pairs := make([]Pair, 0, len(results))
	for _, result := range results {
		if _, dup := seen[result.TID]; dup {
			continue
		}
		seen[result.TID] = struct{}{}
		pairs = append(pairs, Pair{QID: sample.ID, TID: result.TID})
	}

	return pairs, nil
}
