package classifier_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/pkg/linker/classifier"
)

// trainingSet is a toy separable problem: positives have high feature
// values, negatives low ones.
var (
	trainingFeatures = [][]float64{
		{0.9, 0.8, 0.9},
		{1.0, 0.9, 0.7},
		{0.8, 1.0, 0.8},
		{0.0, 0.1, 0.0},
		{0.1, 0.0, 0.05},
		{0.0, 0.0, 0.1},
	}
	trainingLabels = []int{1, 1, 1, 0, 0, 0}
)

func TestResolve(t *testing.T) {
	t.Parallel()

	for _, alias := range []string{"naive_bayes", "nb"} {
		name, err := classifier.Resolve(alias)
		require.NoError(t, err)
		assert.Equal(t, classifier.NaiveBayes, name)
	}
	for _, alias := range []string{"single_layer_perceptron", "slp"} {
		name, err := classifier.Resolve(alias)
		require.NoError(t, err)
		assert.Equal(t, classifier.SingleLayerPerceptron, name)
	}

	_, err := classifier.Resolve("random_forest")
	assert.Error(t, err)
}

func TestClassifiersSeparate(t *testing.T) {
	t.Parallel()

	for _, name := range []string{classifier.NaiveBayes, classifier.SingleLayerPerceptron} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cls, err := classifier.New(name)
			require.NoError(t, err)
			require.NoError(t, cls.Train(trainingFeatures, trainingLabels))

			match := cls.Predict([]float64{0.95, 0.9, 0.85})
			nonMatch := cls.Predict([]float64{0.05, 0.0, 0.1})

			assert.Greater(t, match, 0.5, "clear match should score above the threshold")
			assert.Less(t, nonMatch, 0.5, "clear non-match should score below the threshold")
		})
	}
}

func TestTrainValidation(t *testing.T) {
	t.Parallel()

	cls, err := classifier.New("nb")
	require.NoError(t, err)

	assert.Error(t, cls.Train(nil, nil))
	assert.Error(t, cls.Train([][]float64{{1}}, []int{1, 0}))
	assert.Error(t, cls.Train([][]float64{{1}}, []int{2}))
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"nb", "slp"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cls, err := classifier.New(name)
			require.NoError(t, err)
			require.NoError(t, cls.Train(trainingFeatures, trainingLabels))

			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, classifier.Save(cls, path))

			loaded, err := classifier.Load(path)
			require.NoError(t, err)
			assert.Equal(t, cls.Name(), loaded.Name())

			input := []float64{0.9, 0.85, 0.95}
			assert.InDelta(t, cls.Predict(input), loaded.Predict(input), 1e-9)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := classifier.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
