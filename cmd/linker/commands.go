package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/importer"
	"github.com/askiada/go-linker/internal/ingester"
	"github.com/askiada/go-linker/internal/validator"
	"github.com/askiada/go-linker/internal/wikidata"
	"github.com/askiada/go-linker/pkg/catalog"
	"github.com/askiada/go-linker/pkg/linker"
	"github.com/askiada/go-linker/pkg/linker/classifier"
)

const defaultClassifier = classifier.NaiveBayes

func connect(ctx context.Context, rt *runtime) (*db.Manager, error) {
	return db.Connect(ctx, rt.cfg.Credentials)
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <target>",
		Short: "Download the target catalog dumps and load them into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(flags)
			if err != nil {
				return err
			}
			cat, err := targetArg(args)
			if err != nil {
				return err
			}

			return runImport(cmd.Context(), rt, cat)
		},
	}
}

func runImport(ctx context.Context, rt *runtime, cat *catalog.Catalog) error {
	mgr, err := connect(ctx, rt)
	if err != nil {
		return err
	}
	defer mgr.Close()

	extractor, err := importer.ExtractorFor(cat.Name, rt.cfg.SharedDir, rt.log)
	if err != nil {
		return err
	}

	downloader := importer.NewDownloader(rt.log)
	defer downloader.Close()

	return importer.New(mgr, downloader, rt.cfg.SharedDir, rt.log).Import(ctx, extractor)
}

func newTrainCmd(flags *rootFlags) *cobra.Command {
	var classifierName, entityKind string

	cmd := &cobra.Command{
		Use:   "train <target>",
		Short: "Train a classifier on the known Wikidata-catalog links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(flags)
			if err != nil {
				return err
			}
			cat, err := targetArg(args)
			if err != nil {
				return err
			}

			return runTrain(cmd.Context(), rt, cat, entityKind, classifierName)
		},
	}

	cmd.Flags().StringVar(&classifierName, "classifier", defaultClassifier, "classifier name or shorthand")
	cmd.Flags().StringVar(&entityKind, "entity", "", "restrict to one entity kind")

	return cmd
}

func runTrain(ctx context.Context, rt *runtime, cat *catalog.Catalog, entityKind, classifierName string) error {
	mgr, err := connect(ctx, rt)
	if err != nil {
		return err
	}
	defer mgr.Close()

	client := wikidata.NewClient(rt.log)
	defer client.Close()

	entities, err := entitiesOf(cat, entityKind)
	if err != nil {
		return err
	}

	workflow := linker.NewWorkflow(mgr, client, rt.cfg.SharedDir, rt.log)
	for _, entity := range entities {
		if _, err := workflow.Train(ctx, cat, entity, classifierName); err != nil {
			return err
		}
	}

	return nil
}

func newLinkCmd(flags *rootFlags) *cobra.Command {
	var classifierName, entityKind string

	cmd := &cobra.Command{
		Use:   "link <target>",
		Short: "Classify unlinked Wikidata items against the target catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(flags)
			if err != nil {
				return err
			}
			cat, err := targetArg(args)
			if err != nil {
				return err
			}

			return runLink(cmd.Context(), rt, cat, entityKind, classifierName)
		},
	}

	cmd.Flags().StringVar(&classifierName, "classifier", defaultClassifier, "classifier name or shorthand")
	cmd.Flags().StringVar(&entityKind, "entity", "", "restrict to one entity kind")

	return cmd
}

func runLink(ctx context.Context, rt *runtime, cat *catalog.Catalog, entityKind, classifierName string) error {
	mgr, err := connect(ctx, rt)
	if err != nil {
		return err
	}
	defer mgr.Close()

	client := wikidata.NewClient(rt.log)
	defer client.Close()

	entities, err := entitiesOf(cat, entityKind)
	if err != nil {
		return err
	}

	workflow := linker.NewWorkflow(mgr, client, rt.cfg.SharedDir, rt.log)
	for _, entity := range entities {
		if _, _, err := workflow.Classify(ctx, cat, entity, classifierName); err != nil {
			return err
		}
	}

	return nil
}

func newValidateCmd(flags *rootFlags) *cobra.Command {
	var entityKind string
	var noUpload, sandbox bool

	cmd := &cobra.Command{
		Use:   "validate <target>",
		Short: "Check existing identifiers against the live catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(flags)
			if err != nil {
				return err
			}
			cat, err := targetArg(args)
			if err != nil {
				return err
			}

			return runValidate(cmd.Context(), rt, cat, entityKind, noUpload, sandbox)
		},
	}

	cmd.Flags().StringVar(&entityKind, "entity", "", "restrict to one entity kind")
	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "write statements to CSV files instead of Wikidata")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "redirect every edit to the Wikidata sandbox item")

	return cmd
}

func runValidate(ctx context.Context, rt *runtime, cat *catalog.Catalog, entityKind string, noUpload, sandbox bool) error {
	mgr, err := connect(ctx, rt)
	if err != nil {
		return err
	}
	defer mgr.Close()

	client := wikidata.NewClient(rt.log)
	defer client.Close()

	ing, err := newIngester(ctx, rt, client, noUpload, sandbox)
	if err != nil {
		return err
	}

	formatters, err := client.ExternalIDFormatters(ctx)
	if err != nil {
		return err
	}
	urlPIDs, err := client.URLProperties(ctx)
	if err != nil {
		return err
	}
	resolver := wikidata.NewResolver(formatters, urlPIDs, rt.log)

	entities, err := entitiesOf(cat, entityKind)
	if err != nil {
		return err
	}

	workflow := linker.NewWorkflow(mgr, client, rt.cfg.SharedDir, rt.log)
	check := validator.New(mgr, rt.log)

	for _, entity := range entities {
		samples, err := workflow.BuildWikidataSet(ctx, cat, entity, catalog.TrainingGoal)
		if err != nil {
			return err
		}

		dead, err := check.DeadIDs(ctx, cat, entity, samples)
		if err != nil {
			return err
		}
		if err := ing.DeleteIdentifiers(ctx, cat, entity, dead); err != nil {
			return err
		}

		linksResult, err := check.Links(ctx, cat, entity, samples, resolver)
		if err != nil {
			return err
		}
		bioResult, err := check.Bio(ctx, cat, entity, samples)
		if err != nil {
			return err
		}

		deprecate := linksResult.Deprecate
		for tid, qids := range bioResult.Deprecate {
			deprecate[tid] = append(deprecate[tid], qids...)
		}
		if err := ing.DeprecateIdentifiers(ctx, cat, entity, deprecate); err != nil {
			return err
		}

		additions := append(linksResult.Additions, bioResult.Additions...)
		if err := ing.AddStatements(ctx, cat, entity, additions); err != nil {
			return err
		}
	}

	return nil
}

func newIngestCmd(flags *rootFlags) *cobra.Command {
	var classifierName, entityKind string
	var noUpload, sandbox bool

	cmd := &cobra.Command{
		Use:   "ingest <target>",
		Short: "Send the classified links to Wikidata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(flags)
			if err != nil {
				return err
			}
			cat, err := targetArg(args)
			if err != nil {
				return err
			}

			return runIngest(cmd.Context(), rt, cat, entityKind, classifierName, noUpload, sandbox)
		},
	}

	cmd.Flags().StringVar(&classifierName, "classifier", defaultClassifier, "classifier name or shorthand")
	cmd.Flags().StringVar(&entityKind, "entity", "", "restrict to one entity kind")
	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "write statements to CSV files instead of Wikidata")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "redirect every edit to the Wikidata sandbox item")

	return cmd
}

// newIngester logs in and builds an editor-backed ingester, or a
// CSV-dumping one in no-upload mode.
func newIngester(ctx context.Context, rt *runtime, client *wikidata.Client, noUpload, sandbox bool) (*ingester.Ingester, error) {
	if noUpload {
		return ingester.New(nil, rt.cfg.SharedDir, rt.log), nil
	}

	creds := rt.cfg.Credentials
	if err := client.Login(ctx, creds.WikidataUser, creds.WikidataPassword); err != nil {
		return nil, err
	}
	editor, err := wikidata.NewEditor(client, sandbox)
	if err != nil {
		return nil, err
	}

	return ingester.New(editor, rt.cfg.SharedDir, rt.log), nil
}

func runIngest(ctx context.Context, rt *runtime, cat *catalog.Catalog, entityKind, classifierName string, noUpload, sandbox bool) error {
	canonical, err := classifier.Resolve(classifierName)
	if err != nil {
		return err
	}

	mgr, err := connect(ctx, rt)
	if err != nil {
		return err
	}
	defer mgr.Close()

	client := wikidata.NewClient(rt.log)
	defer client.Close()

	ing, err := newIngester(ctx, rt, client, noUpload, sandbox)
	if err != nil {
		return err
	}

	entities, err := entitiesOf(cat, entityKind)
	if err != nil {
		return err
	}

	for _, entity := range entities {
		path := catalog.LinksPath(rt.cfg.SharedDir, cat.Name, entity.Kind, canonical)
		links, err := linker.ReadLinks(path)
		if err != nil {
			return err
		}

		identifiers := make(map[string]string, len(links))
		for _, link := range links {
			identifiers[link.QID] = link.TID
		}

		if err := ing.AddIdentifiers(ctx, cat, entity, identifiers); err != nil {
			return err
		}

		if err := ingestWorks(ctx, mgr, client, ing, cat, entity, links); err != nil {
			return err
		}
	}

	return nil
}

// ingestWorks relates the works of each newly linked person to their
// Wikidata item. Only works already carrying the catalog identifier on
// Wikidata can be related.
func ingestWorks(ctx context.Context, mgr *db.Manager, client *wikidata.Client, ing *ingester.Ingester, cat *catalog.Catalog, entity *catalog.Entity, links []linker.Link) error {
	if entity.WorkType == "" || len(links) == 0 {
		return nil
	}
	relationPID, ok := catalog.WorkRelationPIDs[entity.WorkType]
	if !ok {
		return nil
	}
	workEntity, err := cat.Entity(entity.WorkType)
	if err != nil {
		return err
	}

	tids := make([]string, 0, len(links))
	for _, link := range links {
		tids = append(tids, link.TID)
	}
	relationships, err := mgr.GatherRelationships(ctx, cat, tids)
	if err != nil {
		return err
	}
	if len(relationships) == 0 {
		return nil
	}

	workQIDs := map[string]string{}
	err = client.IdentifierPairs(ctx, workEntity, func(pairs map[string][]string) error {
		for qid, workTIDs := range pairs {
			for _, workTID := range workTIDs {
				workQIDs[workTID] = qid
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	var works []ingester.WorkStatement
	for _, link := range links {
		for _, workTID := range relationships[link.TID] {
			workQID, ok := workQIDs[workTID]
			if !ok {
				continue
			}
			works = append(works, ingester.WorkStatement{
				WorkQID:   workQID,
				PID:       relationPID,
				PersonQID: link.QID,
				PersonTID: link.TID,
			})
		}
	}
	if len(works) == 0 {
		return nil
	}

	return ing.AddWorks(ctx, cat, entity, works)
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var classifierName string
	var noUpload, withValidator, sandbox bool

	cmd := &cobra.Command{
		Use:   "run <target>",
		Short: "Run the whole pipeline: import, train, link, validate, ingest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(flags)
			if err != nil {
				return err
			}
			cat, err := targetArg(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt.log.Info("starting pipeline run", "catalog", cat.Name,
				"no_upload", noUpload, "validator", withValidator)

			if err := runImport(ctx, rt, cat); err != nil {
				return err
			}
			if err := runTrain(ctx, rt, cat, "", classifierName); err != nil {
				return err
			}
			if err := runLink(ctx, rt, cat, "", classifierName); err != nil {
				return err
			}
			if withValidator {
				if err := runValidate(ctx, rt, cat, "", noUpload, sandbox); err != nil {
					return err
				}
			}

			return runIngest(ctx, rt, cat, "", classifierName, noUpload, sandbox)
		},
	}

	cmd.Flags().StringVar(&classifierName, "classifier", defaultClassifier, "classifier name or shorthand")
	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "write statements to CSV files instead of Wikidata")
	cmd.Flags().BoolVar(&withValidator, "validator", false, "also validate the existing identifiers")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "redirect every edit to the Wikidata sandbox item")

	return cmd
}
