package main

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-linker/internal/config"
	"github.com/askiada/go-linker/internal/logging"
	"github.com/askiada/go-linker/pkg/catalog"
)

// runtime is the resolved state shared by every command.
type runtime struct {
	cfg *config.Config
	log *slog.Logger
}

type rootFlags struct {
	credentialsPath string
	sharedDir       string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "linker",
		Short:         "Link Wikidata items to third-party catalog records",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&flags.credentialsPath, "credentials", "c",
		config.DefaultCredentialsPath, "path to the credentials JSON file")
	root.PersistentFlags().StringVarP(&flags.sharedDir, "shared", "s",
		config.DefaultSharedDir, "path to the shared data directory")

	root.AddCommand(
		newImportCmd(flags),
		newTrainCmd(flags),
		newLinkCmd(flags),
		newValidateCmd(flags),
		newIngestCmd(flags),
		newRunCmd(flags),
	)

	return root
}

// setup loads the configuration, prepares the shared layout and the
// logger.
func setup(flags *rootFlags) (*runtime, error) {
	cfg, err := config.Load(flags.credentialsPath, flags.sharedDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureLayout(catalog.SharedFolders); err != nil {
		return nil, err
	}

	log := logging.Setup(cfg.SharedDir, catalog.LogsFolder, os.Getenv("LINKER_LOG_LEVEL"))

	return &runtime{cfg: cfg, log: log}, nil
}

// targetArg resolves the positional catalog argument.
func targetArg(args []string) (*catalog.Catalog, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("expected exactly one target catalog, one of %v", catalog.Supported())
	}

	return catalog.Get(args[0])
}

// entitiesOf resolves the --entity flag: one kind, or all the kinds of
// the catalog when empty.
func entitiesOf(cat *catalog.Catalog, entityKind string) ([]*catalog.Entity, error) {
	if entityKind != "" {
		entity, err := cat.Entity(entityKind)
		if err != nil {
			return nil, err
		}

		return []*catalog.Entity{entity}, nil
	}

	kinds := cat.EntityKinds()
	entities := make([]*catalog.Entity, 0, len(kinds))
	for _, kind := range kinds {
		entity, err := cat.Entity(kind)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
