package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/catalog"
)

// GatherPageSize caps how many records one gathering query returns.
const GatherPageSize = 1000

// datasetQuery joins the base table with the optional link and nlp
// tables so one record carries everything the feature extractors need.
func datasetQuery(cat *catalog.Catalog, entity *catalog.Entity, idFilter string) string {
	base := BaseTable(cat.Name, entity.Kind)

	selects := []string{
		"b.catalog_id", "b.name", "b.name_tokens",
		"b.born", "b.born_precision", "b.died", "b.died_precision", "b.gender",
	}
	joins := []string{}

	if entity.HasLinks {
		selects = append(selects, "l.url", "l.url_tokens")
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s l ON b.catalog_id = l.catalog_id", LinkTable(cat.Name, entity.Kind)))
	} else {
		selects = append(selects, "NULL", "NULL")
	}

	if entity.HasNLP {
		selects = append(selects, "n.description", "n.description_tokens")
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s n ON b.catalog_id = n.catalog_id", NLPTable(cat.Name, entity.Kind)))
	} else {
		selects = append(selects, "NULL", "NULL")
	}

	query := fmt.Sprintf("SELECT %s FROM %s b", strings.Join(selects, ", "), base)
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	if idFilter != "" {
		query += " WHERE " + idFilter
	}
	query += " ORDER BY b.catalog_id LIMIT ? OFFSET ?"

	return query
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	return &v.String
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)

	return &n
}

func scanRecords(rows *sql.Rows) ([]TargetRecord, error) {
	var records []TargetRecord
	for rows.Next() {
		var (
			rec                          TargetRecord
			name, nameTokens             sql.NullString
			born, died                   sql.NullString
			bornPrecision, diedPrecision sql.NullInt64
			gender, url, urlTokens       sql.NullString
			description, descTokens      sql.NullString
		)
		err := rows.Scan(&rec.TID, &name, &nameTokens,
			&born, &bornPrecision, &died, &diedPrecision, &gender,
			&url, &urlTokens, &description, &descTokens)
		if err != nil {
			return nil, errors.Wrap(err, "unable to scan gathered record")
		}

		rec.Name = name.String
		rec.NameTokens = nameTokens.String
		rec.Born = nullableString(born)
		rec.BornPrecision = nullableInt(bornPrecision)
		rec.Died = nullableString(died)
		rec.DiedPrecision = nullableInt(diedPrecision)
		rec.Gender = gender.String
		rec.URL = url.String
		rec.URLTokens = urlTokens.String
		rec.Description = description.String
		rec.DescTokens = descTokens.String

		records = append(records, rec)
	}

	return records, errors.Wrap(rows.Err(), "unable to iterate gathered records")
}

func inClause(column string, negate bool, n int) string {
	op := "IN"
	if negate {
		op = "NOT IN"
	}

	return fmt.Sprintf("%s %s (%s)", column, op, strings.TrimSuffix(strings.Repeat("?, ", n), ", "))
}

// GatherDataset streams the records of a catalog entity page by page,
// either restricted to the given identifiers or restricted to their
// complement. The callback receives each page; gathering stops at the
// first empty page.
func (m *Manager) GatherDataset(
	ctx context.Context,
	cat *catalog.Catalog,
	entity *catalog.Entity,
	identifiers []string,
	complement bool,
	fn func(records []TargetRecord) error,
) error {
	idFilter := ""
	idArgs := make([]any, 0, len(identifiers))
	if len(identifiers) > 0 {
		idFilter = inClause("b.catalog_id", complement, len(identifiers))
		for _, id := range identifiers {
			idArgs = append(idArgs, id)
		}
	}

	query := datasetQuery(cat, entity, idFilter)

	for offset := 0; ; offset += GatherPageSize {
		args := append(append([]any{}, idArgs...), GatherPageSize, offset)
		rows, err := m.db.QueryContext(ctx, query, args...)
		if err != nil {
			return errors.Wrapf(err, "unable to gather %s %s dataset", cat.Name, entity.Kind)
		}

		records, err := scanRecords(rows)
		rows.Close()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		if err := fn(records); err != nil {
			return err
		}
	}
}

// GatherLinks returns the URLs of the given catalog identifiers,
// grouped per identifier.
func (m *Manager) GatherLinks(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, identifiers []string) (map[string][]string, error) {
	if !entity.HasLinks {
		return nil, errors.Errorf("%s %s has no link table", cat.Name, entity.Kind)
	}
	if len(identifiers) == 0 {
		return map[string][]string{}, nil
	}

	query := fmt.Sprintf("SELECT catalog_id, url FROM %s WHERE %s",
		LinkTable(cat.Name, entity.Kind), inClause("catalog_id", false, len(identifiers)))

	args := make([]any, 0, len(identifiers))
	for _, id := range identifiers {
		args = append(args, id)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to gather %s %s links", cat.Name, entity.Kind)
	}
	defer rows.Close()

	links := make(map[string][]string)
	for rows.Next() {
		var tid string
		var url sql.NullString
		if err := rows.Scan(&tid, &url); err != nil {
			return nil, errors.Wrap(err, "unable to scan link row")
		}
		if url.Valid && url.String != "" {
			links[tid] = append(links[tid], url.String)
		}
	}

	return links, errors.Wrap(rows.Err(), "unable to iterate link rows")
}

// GatherBio returns the biographical data of the given catalog
// identifiers, grouped per identifier.
func (m *Manager) GatherBio(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, identifiers []string) (map[string][]BioRow, error) {
	if len(identifiers) == 0 {
		return map[string][]BioRow{}, nil
	}

	query := fmt.Sprintf(
		"SELECT catalog_id, born, born_precision, died, died_precision, gender, birth_place, death_place FROM %s WHERE %s",
		BaseTable(cat.Name, entity.Kind), inClause("catalog_id", false, len(identifiers)))

	args := make([]any, 0, len(identifiers))
	for _, id := range identifiers {
		args = append(args, id)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to gather %s %s bio data", cat.Name, entity.Kind)
	}
	defer rows.Close()

	bio := make(map[string][]BioRow)
	for rows.Next() {
		var (
			tid                          string
			born, died                   sql.NullString
			bornPrecision, diedPrecision sql.NullInt64
			gender, birth, death         sql.NullString
		)
		if err := rows.Scan(&tid, &born, &bornPrecision, &died, &diedPrecision, &gender, &birth, &death); err != nil {
			return nil, errors.Wrap(err, "unable to scan bio row")
		}

		bio[tid] = append(bio[tid], BioRow{
			CatalogID:     tid,
			Born:          nullableString(born),
			BornPrecision: nullableInt(bornPrecision),
			Died:          nullableString(died),
			DiedPrecision: nullableInt(diedPrecision),
			Gender:        gender.String,
			BirthPlace:    birth.String,
			DeathPlace:    death.String,
		})
	}

	return bio, errors.Wrap(rows.Err(), "unable to iterate bio rows")
}

// ExistingIDs reports which of the given catalog identifiers still
// exist in the catalog.
func (m *Manager) ExistingIDs(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, identifiers []string) (map[string]bool, error) {
	if len(identifiers) == 0 {
		return map[string]bool{}, nil
	}

	query := fmt.Sprintf("SELECT catalog_id FROM %s WHERE %s",
		BaseTable(cat.Name, entity.Kind), inClause("catalog_id", false, len(identifiers)))

	args := make([]any, 0, len(identifiers))
	for _, id := range identifiers {
		args = append(args, id)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to check existing %s %s identifiers", cat.Name, entity.Kind)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(identifiers))
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			return nil, errors.Wrap(err, "unable to scan identifier row")
		}
		existing[tid] = true
	}

	return existing, errors.Wrap(rows.Err(), "unable to iterate identifier rows")
}

// GatherRelationships returns the works related to the given person
// identifiers, grouped per person.
func (m *Manager) GatherRelationships(ctx context.Context, cat *catalog.Catalog, identifiers []string) (map[string][]string, error) {
	if len(identifiers) == 0 {
		return map[string][]string{}, nil
	}

	query := fmt.Sprintf("SELECT from_catalog_id, to_catalog_id FROM %s WHERE %s",
		RelationshipTable(cat.Name), inClause("from_catalog_id", false, len(identifiers)))

	args := make([]any, 0, len(identifiers))
	for _, id := range identifiers {
		args = append(args, id)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to gather %s relationships", cat.Name)
	}
	defer rows.Close()

	works := make(map[string][]string)
	for rows.Next() {
		var person, work string
		if err := rows.Scan(&person, &work); err != nil {
			return nil, errors.Wrap(err, "unable to scan relationship row")
		}
		works[person] = append(works[person], work)
	}

	return works, errors.Wrap(rows.Err(), "unable to iterate relationship rows")
}
