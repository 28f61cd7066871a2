package linker

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// writeSamples stores a dataset side as gzipped JSON lines.
func writeSamples(path string, samples []Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create dataset folder for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create dataset %s", path)
	}

	gz := gzip.NewWriter(file)
	encoder := json.NewEncoder(gz)
	for _, sample := range samples {
		if err := encoder.Encode(sample); err != nil {
			gz.Close()
			file.Close()

			return errors.Wrapf(err, "unable to encode sample %s", sample.ID)
		}
	}

	if err := gz.Close(); err != nil {
		file.Close()

		return errors.Wrapf(err, "unable to close dataset %s", path)
	}

	return errors.Wrapf(file.Close(), "unable to close dataset %s", path)
}

// readSamples loads a stored dataset side.
func readSamples(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open dataset %s", path)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read gzip header of %s", path)
	}
	defer gz.Close()

	var samples []Sample
	decoder := json.NewDecoder(gz)
	for {
		var sample Sample
		err := decoder.Decode(&sample)
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decode sample from %s", path)
		}
		samples = append(samples, sample)
	}
}

// FeatureVector is one extracted comparison row, stored next to the
// datasets so training runs can be audited and replayed.
type FeatureVector struct {
	QID      string    `json:"qid"`
	TID      string    `json:"tid"`
	Features []float64 `json:"features"`
	Label    int       `json:"label"`
}

// writeFeatures stores the extracted feature vectors as gzipped JSON
// lines.
func writeFeatures(path string, vectors []FeatureVector) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create features folder for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create features file %s", path)
	}

	gz := gzip.NewWriter(file)
	encoder := json.NewEncoder(gz)
	for _, vector := range vectors {
		if err := encoder.Encode(vector); err != nil {
			gz.Close()
			file.Close()

			return errors.Wrapf(err, "unable to encode features of %s %s", vector.QID, vector.TID)
		}
	}

	if err := gz.Close(); err != nil {
		file.Close()

		return errors.Wrapf(err, "unable to close features file %s", path)
	}

	return errors.Wrapf(file.Close(), "unable to close features file %s", path)
}

// ReadFeatures loads stored feature vectors.
func ReadFeatures(path string) ([]FeatureVector, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open features file %s", path)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read gzip header of %s", path)
	}
	defer gz.Close()

	var vectors []FeatureVector
	decoder := json.NewDecoder(gz)
	for {
		var vector FeatureVector
		err := decoder.Decode(&vector)
		if err == io.EOF {
			return vectors, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decode feature vector from %s", path)
		}
		vectors = append(vectors, vector)
	}
}

// fileExists tells whether a dataset file can be reused.
func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
