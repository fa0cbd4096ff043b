package dataset

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pgrunwald/svgpie/pkg/errors"
)

// jsonDataset is the on-disk JSON layout. Columns are explicit so that
// column order survives the round trip.
type jsonDataset struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ReadJSON reads a dataset from its JSON representation:
//
//	{"columns": ["animal", "count"], "rows": [["Cat", "10"], ["Dog", "20"]]}
func ReadJSON(r io.Reader) (*Dataset, error) {
	var in jsonDataset
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding dataset JSON")
	}
	return New(in.Columns, in.Rows)
}

// LoadJSON reads a dataset from a JSON file.
func LoadJSON(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no such file: %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes a dataset as JSON and writes it to w. The output can
// be re-read with [ReadJSON] for round-trip processing.
func WriteJSON(d *Dataset, w io.Writer) error {
	out := jsonDataset{Columns: d.columns, Rows: d.rows}
	if out.Rows == nil {
		out.Rows = [][]string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
