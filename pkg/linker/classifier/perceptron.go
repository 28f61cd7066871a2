package classifier

import (
	"math"

	"github.com/pkg/errors"
)

// Training defaults of the single-layer perceptron.
const (
	DefaultLearningRate = 0.1
	DefaultEpochs       = 100
)

// Perceptron is a single-layer perceptron with a sigmoid activation,
// trained by stochastic gradient descent on log loss.
type Perceptron struct {
	LearningRate float64   `json:"learning_rate"`
	Epochs       int       `json:"epochs"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
}

// NewPerceptron builds an untrained perceptron.
func NewPerceptron(learningRate float64, epochs int) *Perceptron {
	return &Perceptron{LearningRate: learningRate, Epochs: epochs}
}

// Name implements Classifier.
func (p *Perceptron) Name() string {
	return SingleLayerPerceptron
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func (p *Perceptron) activation(features []float64) float64 {
	sum := p.Bias
	for j, value := range features {
		if j >= len(p.Weights) {
			break
		}
		sum += p.Weights[j] * value
	}

	return sigmoid(sum)
}

// Train implements Classifier.
func (p *Perceptron) Train(features [][]float64, labels []int) error {
	if len(features) == 0 {
		return errors.New("empty training set")
	}
	if len(features) != len(labels) {
		return errors.Errorf("feature rows and labels mismatch: %d vs %d", len(features), len(labels))
	}

	numFeatures := len(features[0])
	p.Weights = make([]float64, numFeatures)
	p.Bias = 0

	for epoch := 0; epoch < p.Epochs; epoch++ {
		for i, row := range features {
			if len(row) != numFeatures {
				return errors.Errorf("feature row %d has %d values, expected %d", i, len(row), numFeatures)
			}
			label := labels[i]
			if label != 0 && label != 1 {
				return errors.Errorf("bad label at row %d: %d", i, label)
			}

			gradient := p.activation(row) - float64(label)
			for j, value := range row {
				p.Weights[j] -= p.LearningRate * gradient * value
			}
			p.Bias -= p.LearningRate * gradient
		}
	}

	return nil
}

// Predict implements Classifier.
func (p *Perceptron) Predict(features []float64) float64 {
	return p.activation(features)
}
