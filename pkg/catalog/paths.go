package catalog

import (
	"fmt"
	"path/filepath"
)

// Subfolders of the shared directory.
const (
	WikidataFolder = "wikidata"
	SamplesFolder  = "samples"
	FeaturesFolder = "features"
	ModelsFolder   = "models"
	ResultsFolder  = "results"
	DumpsFolder    = "dumps"
	LogsFolder     = "logs"
)

// SharedFolders lists every subfolder a run may write to.
var SharedFolders = []string{
	WikidataFolder,
	SamplesFolder,
	FeaturesFolder,
	ModelsFolder,
	ResultsFolder,
	DumpsFolder,
	LogsFolder,
}

// Goal of a linking dataset build.
const (
	TrainingGoal       = "training"
	ClassificationGoal = "classification"
)

// WikidataSetPath is the Wikidata side of a linking dataset.
func WikidataSetPath(sharedDir, catalogName, entityKind, goal string) string {
	return filepath.Join(sharedDir, WikidataFolder,
		fmt.Sprintf("wikidata_%s_%s_%s_set.jsonl.gz", catalogName, entityKind, goal))
}

// TargetSetPath is the catalog side of a linking dataset.
func TargetSetPath(sharedDir, catalogName, entityKind, goal string) string {
	return filepath.Join(sharedDir, SamplesFolder,
		fmt.Sprintf("%s_%s_%s_set.jsonl.gz", catalogName, entityKind, goal))
}

// FeaturesPath holds the extracted feature vectors.
func FeaturesPath(sharedDir, catalogName, entityKind, goal string) string {
	return filepath.Join(sharedDir, FeaturesFolder,
		fmt.Sprintf("%s_%s_%s_features.jsonl.gz", catalogName, entityKind, goal))
}

// ModelPath holds a trained classifier.
func ModelPath(sharedDir, catalogName, entityKind, classifierName string) string {
	return filepath.Join(sharedDir, ModelsFolder,
		fmt.Sprintf("%s_%s_%s_model.json", catalogName, entityKind, classifierName))
}

// LinksPath holds the links produced by a classification run.
func LinksPath(sharedDir, catalogName, entityKind, classifierName string) string {
	return filepath.Join(sharedDir, ResultsFolder,
		fmt.Sprintf("%s_%s_%s_links.csv.gz", catalogName, entityKind, classifierName))
}

// StatementsPath holds the statements a no-upload run would have sent to
// Wikidata.
func StatementsPath(sharedDir, catalogName, entityKind, kind string) string {
	return filepath.Join(sharedDir, ResultsFolder,
		fmt.Sprintf("%s_%s_%s_statements.csv", catalogName, entityKind, kind))
}

// DumpPath holds a downloaded catalog dump.
func DumpPath(sharedDir, catalogName, fileName string) string {
	return filepath.Join(sharedDir, DumpsFolder, catalogName, fileName)
}
