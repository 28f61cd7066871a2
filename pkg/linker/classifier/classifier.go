// Package classifier holds the binary classifiers deciding whether a
// (Wikidata item, catalog record) pair is a match.
package classifier

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Supported classifier names and their shorthands.
const (
	NaiveBayes            = "naive_bayes"
	NaiveBayesShort       = "nb"
	SingleLayerPerceptron = "single_layer_perceptron"
	PerceptronShort       = "slp"
)

// Classifier is a binary classifier over feature vectors. Train
// consumes one feature matrix with one 0/1 label per row; Predict
// returns the probability of a match.
type Classifier interface {
	Name() string
	Train(features [][]float64, labels []int) error
	Predict(features []float64) float64
}

var aliases = map[string]string{
	NaiveBayes:            NaiveBayes,
	NaiveBayesShort:       NaiveBayes,
	SingleLayerPerceptron: SingleLayerPerceptron,
	PerceptronShort:       SingleLayerPerceptron,
}

// Resolve canonicalizes a classifier name or shorthand.
func Resolve(name string) (string, error) {
	canonical, ok := aliases[name]
	if !ok {
		return "", errors.Errorf("bad classifier: %s. It should be one of naive_bayes (nb) or single_layer_perceptron (slp)", name)
	}

	return canonical, nil
}

// New builds an untrained classifier by name or shorthand.
func New(name string) (Classifier, error) {
	canonical, err := Resolve(name)
	if err != nil {
		return nil, err
	}

	switch canonical {
	case NaiveBayes:
		return NewBernoulliNB(DefaultBinarize), nil
	case SingleLayerPerceptron:
		return NewPerceptron(DefaultLearningRate, DefaultEpochs), nil
	}

	return nil, errors.Errorf("unreachable classifier name %s", canonical)
}

// modelFile is the on-disk shape of a trained model.
type modelFile struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

// Save serializes a trained classifier as JSON.
func Save(cls Classifier, path string) error {
	params, err := json.Marshal(cls)
	if err != nil {
		return errors.Wrap(err, "unable to marshal model parameters")
	}

	raw, err := json.MarshalIndent(modelFile{Name: cls.Name(), Params: params}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to marshal model file")
	}

	return errors.Wrapf(os.WriteFile(path, raw, 0o644), "unable to write model to %s", path)
}

// Load deserializes a trained classifier.
func Load(path string) (Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read model from %s", path)
	}

	var file modelFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "unable to decode model file %s", path)
	}

	var cls Classifier
	switch file.Name {
	case NaiveBayes:
		cls = &BernoulliNB{}
	case SingleLayerPerceptron:
		cls = &Perceptron{}
	default:
		return nil, errors.Errorf("bad classifier in model file %s: %s", path, file.Name)
	}

	if err := json.Unmarshal(file.Params, cls); err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s parameters", file.Name)
	}

	return cls, nil
}
