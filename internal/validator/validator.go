// Package validator checks the identifiers Wikidata already holds
// against the live catalog: dead identifiers, diverging links and
// diverging biographical data.
package validator

import (
	"context"
	"log/slog"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/ingester"
	"github.com/askiada/go-linker/internal/wikidata"
	"github.com/askiada/go-linker/pkg/catalog"
	"github.com/askiada/go-linker/pkg/linker"
)

// Validator runs the validation criteria over the training-side samples,
// the items already linked to the catalog.
type Validator struct {
	mgr *db.Manager
	log *slog.Logger
}

// New builds a validator over the catalog database.
func New(mgr *db.Manager, log *slog.Logger) *Validator {
	return &Validator{mgr: mgr, log: log}
}

// Result is the outcome of a links or bio check: identifiers to
// deprecate and statements the catalog supports but Wikidata lacks.
type Result struct {
	Deprecate ingester.Invalid
	Additions []ingester.Statement
}

func tidsByQID(samples []linker.Sample) (map[string][]string, []string) {
	qidsByTID := map[string][]string{}
	var tids []string
	for _, sample := range samples {
		for _, tid := range sample.TIDs {
			if len(qidsByTID[tid]) == 0 {
				tids = append(tids, tid)
			}
			qidsByTID[tid] = append(qidsByTID[tid], sample.ID)
		}
	}

	return qidsByTID, tids
}

// DeadIDs returns the identifiers Wikidata holds but the catalog no
// longer contains, the deletion candidates.
func (v *Validator) DeadIDs(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, samples []linker.Sample) (ingester.Invalid, error) {
	qidsByTID, tids := tidsByQID(samples)

	existing, err := v.mgr.ExistingIDs(ctx, cat, entity, tids)
	if err != nil {
		return nil, err
	}

	dead := ingester.Invalid{}
	for tid, qids := range qidsByTID {
		if !existing[tid] {
			dead[tid] = qids
		}
	}

	v.log.Info("dead identifiers check complete", "catalog", cat.Name,
		"entity", entity.Kind, "checked", len(tids), "dead", len(dead))

	return dead, nil
}

// Links compares Wikidata URLs against the catalog link rows of each
// matched identifier. Wikidata-only URLs flag the identifier for
// deprecation; catalog-only URLs become addition statements, as
// external identifiers when a formatter matches, as described-at-URL
// claims otherwise.
func (v *Validator) Links(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, samples []linker.Sample, resolver *wikidata.Resolver) (*Result, error) {
	result := &Result{Deprecate: ingester.Invalid{}}

	for _, sample := range samples {
		if len(sample.TIDs) == 0 {
			continue
		}

		catalogLinks, err := v.mgr.GatherLinks(ctx, cat, entity, sample.TIDs)
		if err != nil {
			return nil, err
		}

		catalogSet := map[string]struct{}{}
		for _, urls := range catalogLinks {
			for _, url := range urls {
				catalogSet[url] = struct{}{}
			}
		}
		wikidataSet := map[string]struct{}{}
		for _, url := range sample.URLs {
			wikidataSet[url] = struct{}{}
		}

		wrong := 0
		for url := range wikidataSet {
			if _, shared := catalogSet[url]; !shared {
				wrong++
			}
		}
		// A Wikidata side fully disjoint from the catalog means the
		// identifier points at someone else.
		if len(wikidataSet) > 0 && len(catalogSet) > 0 && wrong == len(wikidataSet) {
			for _, tid := range sample.TIDs {
				result.Deprecate[tid] = append(result.Deprecate[tid], sample.ID)
			}
		}

		for url := range catalogSet {
			if _, shared := wikidataSet[url]; shared {
				continue
			}
			if pid, id, ok := resolver.Resolve(url); ok {
				result.Additions = append(result.Additions, ingester.Statement{QID: sample.ID, PID: pid, Value: id})
			} else {
				result.Additions = append(result.Additions, ingester.Statement{QID: sample.ID, PID: catalog.DescribedAtURLPID, Value: url})
			}
		}
	}

	v.log.Info("links check complete", "catalog", cat.Name, "entity", entity.Kind,
		"deprecations", len(result.Deprecate), "additions", len(result.Additions))

	return result, nil
}

var genderToQID = map[string]string{
	"male":   "Q6581097",
	"female": "Q6581072",
}

// truncateDate cuts a YYYY-MM-DD date down to the coarser of the two
// precisions, so a year-only value never disagrees with a full date in
// the same year.
func truncateDate(date string, precision, otherPrecision int) string {
	minPrecision := precision
	if otherPrecision < minPrecision {
		minPrecision = otherPrecision
	}

	switch {
	case minPrecision <= catalog.YearPrecision && len(date) >= 4:
		return date[:4]
	case minPrecision == catalog.MonthPrecision && len(date) >= 7:
		return date[:7]
	}

	return date
}

func datesAgree(wdDate *string, wdPrecision *int, catDate *string, catPrecision *int) (agree, comparable bool) {
	if wdDate == nil || catDate == nil {
		return false, false
	}

	wdP := catalog.DayPrecision
	if wdPrecision != nil {
		wdP = *wdPrecision
	}
	catP := catalog.DayPrecision
	if catPrecision != nil {
		catP = *catPrecision
	}

	return truncateDate(*wdDate, wdP, catP) == truncateDate(*catDate, catP, wdP), true
}

// Bio compares birth and death dates plus gender against the catalog.
// Disagreements flag the identifier for deprecation; facts only the
// catalog has become addition statements.
func (v *Validator) Bio(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, samples []linker.Sample) (*Result, error) {
	result := &Result{Deprecate: ingester.Invalid{}}

	for _, sample := range samples {
		if len(sample.TIDs) == 0 {
			continue
		}

		bioRows, err := v.mgr.GatherBio(ctx, cat, entity, sample.TIDs)
		if err != nil {
			return nil, err
		}

		for _, tid := range sample.TIDs {
			for _, row := range bioRows[tid] {
				v.checkBioRow(sample, tid, row, result)
			}
		}
	}

	v.log.Info("bio check complete", "catalog", cat.Name, "entity", entity.Kind,
		"deprecations", len(result.Deprecate), "additions", len(result.Additions))

	return result, nil
}

// datePrecision defaults missing catalog precisions to full dates.
func datePrecision(precision *int) *int {
	if precision != nil {
		return precision
	}
	day := catalog.DayPrecision

	return &day
}

func (v *Validator) checkBioRow(sample linker.Sample, tid string, row db.BioRow, result *Result) {
	mismatch := false

	if agree, comparable := datesAgree(sample.Born, sample.BornPrecision, row.Born, row.BornPrecision); comparable && !agree {
		mismatch = true
	}
	if agree, comparable := datesAgree(sample.Died, sample.DiedPrecision, row.Died, row.DiedPrecision); comparable && !agree {
		mismatch = true
	}
	if sample.Gender != "" && row.Gender != "" && sample.Gender != row.Gender {
		mismatch = true
	}

	if mismatch {
		result.Deprecate[tid] = append(result.Deprecate[tid], sample.ID)

		return
	}

	if sample.Born == nil && row.Born != nil {
		result.Additions = append(result.Additions, ingester.Statement{
			QID: sample.ID, PID: catalog.DateOfBirthPID, Value: *row.Born,
			DatePrecision: datePrecision(row.BornPrecision),
		})
	}
	if sample.Died == nil && row.Died != nil {
		result.Additions = append(result.Additions, ingester.Statement{
			QID: sample.ID, PID: catalog.DateOfDeathPID, Value: *row.Died,
			DatePrecision: datePrecision(row.DiedPrecision),
		})
	}
	if sample.Gender == "" && row.Gender != "" {
		if qid, ok := genderToQID[row.Gender]; ok {
			result.Additions = append(result.Additions, ingester.Statement{
				QID: sample.ID, PID: catalog.SexOrGenderPID, Value: qid,
			})
		}
	}
}
