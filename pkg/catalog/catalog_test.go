package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/pkg/catalog"
)

func TestGet(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.MusicBrainz)
	require.NoError(t, err)
	assert.Equal(t, catalog.MusicBrainz, cat.Name)
	assert.Equal(t, catalog.MusicBrainzQID, cat.QID)
}

func TestGetUnknownCatalog(t *testing.T) {
	t.Parallel()

	_, err := catalog.Get("lastfm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad catalog")
}

func TestEntity(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.MusicBrainz)
	require.NoError(t, err)

	entity, err := cat.Entity(catalog.Musician)
	require.NoError(t, err)
	assert.Equal(t, catalog.MusicBrainzArtistPID, entity.PID)
	assert.Equal(t, catalog.MusicianQID, entity.ClassQID)
	assert.True(t, entity.HasLinks)
	assert.False(t, entity.RequireOccupation)
}

func TestEntityNotHandled(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.MusicBrainz)
	require.NoError(t, err)

	_, err = cat.Entity(catalog.Actor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad entity kind")
}

func TestIMDbPeopleRequireOccupation(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.IMDb)
	require.NoError(t, err)

	for _, kind := range []string{catalog.Actor, catalog.Director, catalog.Musician, catalog.Producer, catalog.Writer} {
		entity, err := cat.Entity(kind)
		require.NoError(t, err)
		assert.True(t, entity.RequireOccupation, kind)
	}

	work, err := cat.Entity(catalog.AudiovisualWork)
	require.NoError(t, err)
	assert.False(t, work.RequireOccupation)
}

func TestSupported(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{catalog.Discogs, catalog.IMDb, catalog.MusicBrainz}, catalog.Supported())
	assert.Contains(t, catalog.SupportedEntities(), catalog.Band)
}
