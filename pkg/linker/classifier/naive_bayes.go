package classifier

import (
	"math"

	"github.com/pkg/errors"
)

// DefaultBinarize is the threshold above which a feature counts as
// present.
const DefaultBinarize = 0.1

const smoothing = 1.0

// BernoulliNB is a Bernoulli naive Bayes classifier. Features are
// binarized first, then each one contributes an independent likelihood.
type BernoulliNB struct {
	Binarize float64 `json:"binarize"`
	// LogPrior holds the log prior of the negative and positive class.
	LogPrior [2]float64 `json:"log_prior"`
	// FeatureLogProb holds, per class, the log probability of each
	// feature being present.
	FeatureLogProb [2][]float64 `json:"feature_log_prob"`
}

// NewBernoulliNB builds an untrained Bernoulli naive Bayes classifier.
func NewBernoulliNB(binarize float64) *BernoulliNB {
	return &BernoulliNB{Binarize: binarize}
}

// Name implements Classifier.
func (nb *BernoulliNB) Name() string {
	return NaiveBayes
}

func (nb *BernoulliNB) binarized(value float64) float64 {
	if value > nb.Binarize {
		return 1
	}

	return 0
}

// Train implements Classifier.
func (nb *BernoulliNB) Train(features [][]float64, labels []int) error {
	if len(features) == 0 {
		return errors.New("empty training set")
	}
	if len(features) != len(labels) {
		return errors.Errorf("feature rows and labels mismatch: %d vs %d", len(features), len(labels))
	}

	numFeatures := len(features[0])
	classCounts := [2]float64{}
	presentCounts := [2][]float64{
		make([]float64, numFeatures),
		make([]float64, numFeatures),
	}

	for i, row := range features {
		if len(row) != numFeatures {
			return errors.Errorf("feature row %d has %d values, expected %d", i, len(row), numFeatures)
		}
		label := labels[i]
		if label != 0 && label != 1 {
			return errors.Errorf("bad label at row %d: %d", i, label)
		}

		classCounts[label]++
		for j, value := range row {
			presentCounts[label][j] += nb.binarized(value)
		}
	}

	total := classCounts[0] + classCounts[1]
	for class := 0; class < 2; class++ {
		nb.LogPrior[class] = math.Log((classCounts[class] + smoothing) / (total + 2*smoothing))
		nb.FeatureLogProb[class] = make([]float64, numFeatures)
		for j := 0; j < numFeatures; j++ {
			p := (presentCounts[class][j] + smoothing) / (classCounts[class] + 2*smoothing)
			nb.FeatureLogProb[class][j] = math.Log(p)
		}
	}

	return nil
}

// Predict implements Classifier.
func (nb *BernoulliNB) Predict(features []float64) float64 {
	joint := [2]float64{nb.LogPrior[0], nb.LogPrior[1]}
	for class := 0; class < 2; class++ {
		for j, value := range features {
			if j >= len(nb.FeatureLogProb[class]) {
				break
			}
			logP := nb.FeatureLogProb[class][j]
			// log(1-p) from log(p), clamped away from log(0).
			logNotP := math.Log(math.Max(1-math.Exp(logP), 1e-10))
			if nb.binarized(value) == 1 {
				joint[class] += logP
			} else {
				joint[class] += logNotP
			}
		}
	}

	// Normalize the two log-joints into a posterior.
	maxJoint := math.Max(joint[0], joint[1])
	exp0 := math.Exp(joint[0] - maxJoint)
	exp1 := math.Exp(joint[1] - maxJoint)

	return exp1 / (exp0 + exp1)
}
