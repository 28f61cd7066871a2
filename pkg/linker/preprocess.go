// Package linker builds linking datasets, extracts comparison features
// and drives classifier training and classification.
package linker

import (
	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/textutil"
	"github.com/askiada/go-linker/internal/wikidata"
)

// Sample is one preprocessed record of either dataset side, aggregated
// per identifier and tokenized, the unit features are extracted from.
type Sample struct {
	ID                string   `json:"id"`
	Names             []string `json:"names,omitempty"`
	NameTokens        []string `json:"name_tokens,omitempty"`
	URLs              []string `json:"urls,omitempty"`
	URLTokens         []string `json:"url_tokens,omitempty"`
	DescriptionTokens []string `json:"description_tokens,omitempty"`
	Born              *string  `json:"born,omitempty"`
	BornPrecision     *int     `json:"born_precision,omitempty"`
	Died              *string  `json:"died,omitempty"`
	DiedPrecision     *int     `json:"died_precision,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	// TIDs carries the known catalog identifiers of a Wikidata sample
	// in training sets.
	TIDs []string `json:"tids,omitempty"`
}

func appendUnique(values []string, value string) []string {
	if value == "" {
		return values
	}
	for _, existing := range values {
		if existing == value {
			return values
		}
	}

	return append(values, value)
}

// mergeDate keeps the more precise of two dated values.
func mergeDate(date *string, precision *int, newDate *string, newPrecision *int) (*string, *int) {
	if newDate == nil {
		return date, precision
	}
	if date == nil {
		return newDate, newPrecision
	}
	if newPrecision != nil && (precision == nil || *newPrecision > *precision) {
		return newDate, newPrecision
	}

	return date, precision
}

// FromWikidataRecord preprocesses one flattened Wikidata item.
func FromWikidataRecord(rec wikidata.Record) Sample {
	sample := Sample{
		ID:            rec.QID,
		Born:          rec.Born,
		BornPrecision: rec.BornPrecision,
		Died:          rec.Died,
		DiedPrecision: rec.DiedPrecision,
		Gender:        rec.Gender,
		TIDs:          rec.TIDs,
	}

	for _, name := range rec.Names {
		sample.Names = appendUnique(sample.Names, name)
		for _, token := range textutil.Tokenize(name) {
			sample.NameTokens = appendUnique(sample.NameTokens, token)
		}
	}
	for _, url := range rec.URLs {
		sample.URLs = appendUnique(sample.URLs, url)
		for _, token := range textutil.TokenizeURL(url) {
			sample.URLTokens = appendUnique(sample.URLTokens, token)
		}
	}
	for _, token := range textutil.Tokenize(rec.Description) {
		sample.DescriptionTokens = appendUnique(sample.DescriptionTokens, token)
	}

	return sample
}

// FromTargetRecords aggregates the catalog rows sharing one identifier
// into a single sample. Link and textual rows multiply the base row in
// the gathered join, hence the deduplication.
func FromTargetRecords(tid string, records []db.TargetRecord) Sample {
	sample := Sample{ID: tid}

	for _, rec := range records {
		sample.Names = appendUnique(sample.Names, rec.Name)
		for _, token := range textutil.Tokenize(rec.NameTokens) {
			sample.NameTokens = appendUnique(sample.NameTokens, token)
		}
		sample.URLs = appendUnique(sample.URLs, rec.URL)
		urlTokens := textutil.Tokenize(rec.URLTokens)
		if len(urlTokens) == 0 && rec.URL != "" {
			urlTokens = textutil.TokenizeURL(rec.URL)
		}
		for _, token := range urlTokens {
			sample.URLTokens = appendUnique(sample.URLTokens, token)
		}
		for _, token := range textutil.Tokenize(rec.DescTokens) {
			sample.DescriptionTokens = appendUnique(sample.DescriptionTokens, token)
		}

		sample.Born, sample.BornPrecision = mergeDate(sample.Born, sample.BornPrecision, rec.Born, rec.BornPrecision)
		sample.Died, sample.DiedPrecision = mergeDate(sample.Died, sample.DiedPrecision, rec.Died, rec.DiedPrecision)
		if sample.Gender == "" {
			sample.Gender = rec.Gender
		}
	}

	return sample
}
