package importer

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// nullMarker is how IMDb TSV dumps spell a missing value.
const nullMarker = `\N`

// TSVReader streams the records of a gzipped TSV dump. Header names
// index the columns; null markers come out as empty strings.
type TSVReader struct {
	file    *os.File
	gz      *gzip.Reader
	csv     *csv.Reader
	columns map[string]int
}

// OpenTSV opens a gzipped TSV dump and reads its header line.
func OpenTSV(path string) (*TSVReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open dump %s", path)
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()

		return nil, errors.Wrapf(err, "unable to read gzip header of %s", path)
	}

	csvReader := csv.NewReader(gz)
	csvReader.Comma = '\t'
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		gz.Close()
		file.Close()

		return nil, errors.Wrapf(err, "unable to read header of %s", path)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	return &TSVReader{file: file, gz: gz, csv: csvReader, columns: columns}, nil
}

// Next returns the next record, or io.EOF at the end of the dump.
func (r *TSVReader) Next() ([]string, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read dump record")
	}

	return record, nil
}

// Field returns a named column of a record, with the null marker
// normalized to an empty string. Unknown columns are empty too.
func (r *TSVReader) Field(record []string, column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(record) {
		return ""
	}
	if record[idx] == nullMarker {
		return ""
	}

	return record[idx]
}

// readAll pushes every remaining record of the dump to the channel, the
// shape a pipeline root step expects.
func readAll(ctx context.Context, reader *TSVReader, output chan<- []string) error {
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "dump read interrupted")
		case output <- record:
		}
	}
}

// Close releases the dump file handles.
func (r *TSVReader) Close() error {
	if err := r.gz.Close(); err != nil {
		r.file.Close()

		return errors.Wrap(err, "unable to close gzip reader")
	}

	return errors.Wrap(r.file.Close(), "unable to close dump file")
}
