package dataset

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pgrunwald/svgpie/pkg/errors"
)

// ReadCSV reads a dataset from CSV data. The first record is the header.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "CSV input is empty")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading CSV header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading CSV row %d", len(rows)+1)
		}
		rows = append(rows, record)
	}

	return New(header, rows)
}

// LoadCSV reads a dataset from a CSV file.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no such file: %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
