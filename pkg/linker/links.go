package linker

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Link is one classified match between a Wikidata item and a catalog
// record.
type Link struct {
	QID        string
	TID        string
	Confidence float64
}

var linksHeader = []string{"qid", "tid", "confidence"}

// WriteLinks stores classification results as a gzipped CSV.
func WriteLinks(path string, links []Link) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create results folder for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create links file %s", path)
	}

	gz := gzip.NewWriter(file)
	writer := csv.NewWriter(gz)

	if err := writer.Write(linksHeader); err != nil {
		gz.Close()
		file.Close()

		return errors.Wrap(err, "unable to write links header")
	}
	for _, link := range links {
		record := []string{link.QID, link.TID, strconv.FormatFloat(link.Confidence, 'f', 6, 64)}
		if err := writer.Write(record); err != nil {
			gz.Close()
			file.Close()

			return errors.Wrapf(err, "unable to write link %s %s", link.QID, link.TID)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		gz.Close()
		file.Close()

		return errors.Wrap(err, "unable to flush links")
	}
	if err := gz.Close(); err != nil {
		file.Close()

		return errors.Wrapf(err, "unable to close links file %s", path)
	}

	return errors.Wrapf(file.Close(), "unable to close links file %s", path)
}

// ReadLinks loads classification results back, the ingester input.
func ReadLinks(path string) ([]Link, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open links file %s", path)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read gzip header of %s", path)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read links from %s", path)
	}

	var links []Link
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) != len(linksHeader) {
			return nil, errors.Errorf("malformed link record at line %d of %s", i+1, path)
		}

		confidence, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad confidence at line %d of %s", i+1, path)
		}
		links = append(links, Link{QID: record[0], TID: record[1], Confidence: confidence})
	}

	return links, nil
}
