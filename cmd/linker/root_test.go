package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/internal/config"
	"github.com/askiada/go-linker/pkg/catalog"
)

func TestRootCommandTree(t *testing.T) {
	t.Parallel()

	root := newRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, expected := range []string{"import", "train", "link", "validate", "ingest", "run"} {
		assert.Contains(t, names, expected)
	}
}

func TestRootFlagDefaults(t *testing.T) {
	t.Parallel()

	root := newRootCmd()

	credentials, err := root.PersistentFlags().GetString("credentials")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultCredentialsPath, credentials)

	shared, err := root.PersistentFlags().GetString("shared")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSharedDir, shared)
}

func TestRunCommandFlags(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	assert.NotNil(t, run.Flags().Lookup("no-upload"))
	assert.NotNil(t, run.Flags().Lookup("validator"))
	assert.NotNil(t, run.Flags().Lookup("classifier"))
}

func TestTargetArg(t *testing.T) {
	t.Parallel()

	cat, err := targetArg([]string{catalog.MusicBrainz})
	require.NoError(t, err)
	assert.Equal(t, catalog.MusicBrainz, cat.Name)

	_, err = targetArg([]string{"wikipedia"})
	assert.Error(t, err)

	_, err = targetArg(nil)
	assert.Error(t, err)
}

func TestEntitiesOf(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Get(catalog.Discogs)
	require.NoError(t, err)

	all, err := entitiesOf(cat, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := entitiesOf(cat, catalog.Band)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, catalog.Band, one[0].Kind)

	_, err = entitiesOf(cat, "painter")
	assert.Error(t, err)
}
