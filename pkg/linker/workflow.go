package linker

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/wikidata"
	"github.com/askiada/go-linker/pkg/catalog"
	"github.com/askiada/go-linker/pkg/linker/classifier"
)

// Workflow drives dataset building, training and classification for one
// catalog entity.
type Workflow struct {
	mgr       *db.Manager
	client    *wikidata.Client
	sharedDir string
	log       *slog.Logger
}

// NewWorkflow builds a linking workflow over the given catalog database
// and Wikidata client.
func NewWorkflow(mgr *db.Manager, client *wikidata.Client, sharedDir string, log *slog.Logger) *Workflow {
	return &Workflow{mgr: mgr, client: client, sharedDir: sharedDir, log: log}
}

func validateGoal(goal string) error {
	if goal != catalog.TrainingGoal && goal != catalog.ClassificationGoal {
		return errors.Errorf("bad goal: %s. It should be %s or %s",
			goal, catalog.TrainingGoal, catalog.ClassificationGoal)
	}

	return nil
}

// BuildWikidataSet gathers the Wikidata side of a linking dataset. An
// existing dataset file is reused instead of hitting the APIs again.
func (w *Workflow) BuildWikidataSet(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, goal string) ([]Sample, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	path := catalog.WikidataSetPath(w.sharedDir, cat.Name, entity.Kind, goal)
	if fileExists(path) {
		w.log.Info("reusing existing Wikidata set", "path", path)

		return readSamples(path)
	}

	formatters, err := w.client.ExternalIDFormatters(ctx)
	if err != nil {
		return nil, err
	}
	urlPIDs, err := w.client.URLProperties(ctx)
	if err != nil {
		return nil, err
	}
	resolver := wikidata.NewResolver(formatters, urlPIDs, w.log)

	var qids []string
	tidsByQID := map[string][]string{}

	if goal == catalog.TrainingGoal {
		err = w.client.IdentifierPairs(ctx, entity, func(pairs map[string][]string) error {
			for qid, tids := range pairs {
				if len(tidsByQID[qid]) == 0 {
					qids = append(qids, qid)
				}
				tidsByQID[qid] = append(tidsByQID[qid], tids...)
			}

			return nil
		})
	} else {
		err = w.client.Subjects(ctx, entity, func(page []string) error {
			qids = append(qids, page...)

			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	var samples []Sample
	err = w.client.Records(ctx, qids, resolver, func(records []wikidata.Record) error {
		for _, rec := range records {
			rec.TIDs = tidsByQID[rec.QID]
			samples = append(samples, FromWikidataRecord(rec))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	w.log.Info("built Wikidata set", "catalog", cat.Name, "entity", entity.Kind,
		"goal", goal, "samples", len(samples))

	return samples, writeSamples(path, samples)
}

// BuildTargetSet gathers the catalog side of a linking dataset: in
// training the rows of the already linked identifiers, in
// classification everything else. An existing dataset file is reused.
func (w *Workflow) BuildTargetSet(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, goal string, wikidataSet []Sample) ([]Sample, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	path := catalog.TargetSetPath(w.sharedDir, cat.Name, entity.Kind, goal)
	if fileExists(path) {
		w.log.Info("reusing existing target set", "path", path)

		return readSamples(path)
	}

	var identifiers []string
	seen := map[string]struct{}{}
	for _, sample := range wikidataSet {
		for _, tid := range sample.TIDs {
			if _, ok := seen[tid]; !ok {
				seen[tid] = struct{}{}
				identifiers = append(identifiers, tid)
			}
		}
	}

	complement := goal == catalog.ClassificationGoal

	var samples []Sample
	grouped := map[string][]db.TargetRecord{}
	err := w.mgr.GatherDataset(ctx, cat, entity, identifiers, complement, func(records []db.TargetRecord) error {
		for _, rec := range records {
			grouped[rec.TID] = append(grouped[rec.TID], rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for tid, records := range grouped {
		samples = append(samples, FromTargetRecords(tid, records))
	}

	if len(samples) == 0 {
		w.log.Warn("empty target set", "catalog", cat.Name, "entity", entity.Kind, "goal", goal)
	} else {
		w.log.Info("built target set", "catalog", cat.Name, "entity", entity.Kind,
			"goal", goal, "samples", len(samples))
	}

	return samples, writeSamples(path, samples)
}

func samplesByID(samples []Sample) map[string]Sample {
	byID := make(map[string]Sample, len(samples))
	for _, sample := range samples {
		byID[sample.ID] = sample
	}

	return byID
}

// Train builds the training datasets, trains the given classifier and
// stores the model. It returns the model path.
func (w *Workflow) Train(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, classifierName string) (string, error) {
	canonical, err := classifier.Resolve(classifierName)
	if err != nil {
		return "", err
	}

	wikidataSet, err := w.BuildWikidataSet(ctx, cat, entity, catalog.TrainingGoal)
	if err != nil {
		return "", err
	}
	targetSet, err := w.BuildTargetSet(ctx, cat, entity, catalog.TrainingGoal, wikidataSet)
	if err != nil {
		return "", err
	}

	wikidataByID := samplesByID(wikidataSet)
	targetsByID := samplesByID(targetSet)

	var features [][]float64
	var labels []int
	var vectors []FeatureVector
	for _, pair := range TrainingPairs(wikidataSet) {
		target, ok := targetsByID[pair.TID]
		if !ok {
			continue
		}
		vector := ExtractFeatures(wikidataByID[pair.QID], target)
		features = append(features, vector)
		labels = append(labels, pair.Label)
		vectors = append(vectors, FeatureVector{QID: pair.QID, TID: pair.TID, Features: vector, Label: pair.Label})
	}

	featuresPath := catalog.FeaturesPath(w.sharedDir, cat.Name, entity.Kind, catalog.TrainingGoal)
	if err := writeFeatures(featuresPath, vectors); err != nil {
		return "", err
	}

	cls, err := classifier.New(canonical)
	if err != nil {
		return "", err
	}
	if err := cls.Train(features, labels); err != nil {
		return "", errors.Wrapf(err, "unable to train %s on %s %s", canonical, cat.Name, entity.Kind)
	}

	path := catalog.ModelPath(w.sharedDir, cat.Name, entity.Kind, canonical)
	if err := classifier.Save(cls, path); err != nil {
		return "", err
	}

	w.log.Info("trained model", "classifier", canonical, "catalog", cat.Name,
		"entity", entity.Kind, "pairs", len(labels), "path", path)

	return path, nil
}

// Classify blocks the unlinked Wikidata items against the catalog,
// scores the candidate pairs with a stored model and keeps the ones at
// or above the confidence threshold. It returns the links and the path
// they were written to.
func (w *Workflow) Classify(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, classifierName string) ([]Link, string, error) {
	canonical, err := classifier.Resolve(classifierName)
	if err != nil {
		return nil, "", err
	}

	modelPath := catalog.ModelPath(w.sharedDir, cat.Name, entity.Kind, canonical)
	cls, err := classifier.Load(modelPath)
	if err != nil {
		return nil, "", err
	}

	wikidataSet, err := w.BuildWikidataSet(ctx, cat, entity, catalog.ClassificationGoal)
	if err != nil {
		return nil, "", err
	}
	targetSet, err := w.BuildTargetSet(ctx, cat, entity, catalog.ClassificationGoal, nil)
	if err != nil {
		return nil, "", err
	}
	targetsByID := samplesByID(targetSet)

	var links []Link
	for _, sample := range wikidataSet {
		pairs, err := CandidatePairs(ctx, w.mgr, cat, entity, sample)
		if err != nil {
			return nil, "", err
		}

		for _, pair := range pairs {
			target, ok := targetsByID[pair.TID]
			if !ok {
				continue
			}

			confidence := cls.Predict(ExtractFeatures(sample, target))
			if confidence >= catalog.ConfidenceThreshold {
				links = append(links, Link{QID: pair.QID, TID: pair.TID, Confidence: confidence})
			}
		}
	}

	path := catalog.LinksPath(w.sharedDir, cat.Name, entity.Kind, canonical)
	if err := WriteLinks(path, links); err != nil {
		return nil, "", err
	}

	w.log.Info("classification complete", "classifier", canonical, "catalog", cat.Name,
		"entity", entity.Kind, "links", len(links), "path", path)

	return links, path, nil
}
