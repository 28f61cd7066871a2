package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/pkg/catalog"
)

func TestTableNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "discogs_musician", BaseTable(catalog.Discogs, catalog.Musician))
	assert.Equal(t, "discogs_musician_link", LinkTable(catalog.Discogs, catalog.Musician))
	assert.Equal(t, "discogs_musician_nlp", NLPTable(catalog.Discogs, catalog.Musician))
	assert.Equal(t, "discogs_relationship", RelationshipTable(catalog.Discogs))
}

func TestInClause(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "b.catalog_id IN (?, ?, ?)", inClause("b.catalog_id", false, 3))
	assert.Equal(t, "b.catalog_id NOT IN (?)", inClause("b.catalog_id", true, 1))
}

func TestDatasetQuery(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.Discogs)
	require.NoError(t, err)
	entity, err := cat.Entity(catalog.Musician)
	require.NoError(t, err)

	query := datasetQuery(cat, entity, "")
	assert.Contains(t, query, "FROM discogs_musician b")
	assert.Contains(t, query, "LEFT JOIN discogs_musician_link l")
	assert.Contains(t, query, "LEFT JOIN discogs_musician_nlp n")
	assert.Contains(t, query, "LIMIT ? OFFSET ?")
	assert.NotContains(t, query, "WHERE")

	filtered := datasetQuery(cat, entity, "b.catalog_id IN (?)")
	assert.Contains(t, filtered, "WHERE b.catalog_id IN (?)")
}

func TestDatasetQueryNoNLP(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.IMDb)
	require.NoError(t, err)
	entity, err := cat.Entity(catalog.Actor)
	require.NoError(t, err)

	query := datasetQuery(cat, entity, "")
	assert.NotContains(t, query, "_nlp")
	assert.Contains(t, query, "NULL, NULL")
}

func TestGatherRelationshipsNoIdentifiers(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.IMDb)
	require.NoError(t, err)

	mgr := NewManager(nil)
	works, err := mgr.GatherRelationships(context.Background(), cat, nil)
	require.NoError(t, err)
	assert.Empty(t, works)
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, nullableString(sql.NullString{}))
	assert.Nil(t, nullableInt(sql.NullInt64{}))

	s := nullableString(sql.NullString{Valid: true, String: "1882-01-01"})
	require.NotNil(t, s)
	assert.Equal(t, "1882-01-01", *s)

	n := nullableInt(sql.NullInt64{Valid: true, Int64: 9})
	require.NotNil(t, n)
	assert.Equal(t, 9, *n)
}
