package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/catalog"
)

// SearchResult is one hit of a name search, base row identity only.
type SearchResult struct {
	TID  string
	Name string
}

// TokenSearch runs a fulltext search over the tokenized names of a
// catalog entity. With boolean mode every token is required.
func (m *Manager) TokenSearch(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, tokens []string, booleanMode bool, limit int) ([]SearchResult, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	terms := strings.Join(tokens, " ")
	mode := "IN NATURAL LANGUAGE MODE"
	if booleanMode {
		mode = "IN BOOLEAN MODE"
		required := make([]string, 0, len(tokens))
		for _, token := range tokens {
			required = append(required, "+"+token)
		}
		terms = strings.Join(required, " ")
	}

	query := fmt.Sprintf(
		"SELECT catalog_id, name FROM %s WHERE MATCH(name_tokens) AGAINST(? %s) LIMIT ?",
		BaseTable(cat.Name, entity.Kind), mode)

	rows, err := m.db.QueryContext(ctx, query, terms, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to run token search on %s %s", cat.Name, entity.Kind)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.TID, &res.Name); err != nil {
			return nil, errors.Wrap(err, "unable to scan search result")
		}
		results = append(results, res)
	}

	return results, errors.Wrap(rows.Err(), "unable to iterate search results")
}

// PerfectNameSearch returns the identifiers whose name matches exactly.
func (m *Manager) PerfectNameSearch(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, name string, limit int) ([]SearchResult, error) {
	query := fmt.Sprintf("SELECT catalog_id, name FROM %s WHERE name = ? LIMIT ?",
		BaseTable(cat.Name, entity.Kind))

	rows, err := m.db.QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to run perfect name search on %s %s", cat.Name, entity.Kind)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.TID, &res.Name); err != nil {
			return nil, errors.Wrap(err, "unable to scan search result")
		}
		results = append(results, res)
	}

	return results, errors.Wrap(rows.Err(), "unable to iterate search results")
}
