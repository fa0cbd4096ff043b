// Package dataset loads labeled tabular data for charting.
//
// A Dataset is an ordered collection of string-valued rows with named
// columns. Charts consume it through a column mapping: a category column
// providing slice labels and a value column providing the numbers. Loaders
// exist for CSV files, a column/rows JSON format, and MongoDB collections.
//
// Row order is preserved end to end: it determines slice draw order.
package dataset

import (
	"strconv"
	"strings"

	"github.com/pgrunwald/svgpie/pkg/cache"
	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/errors"
)

// Dataset is an immutable, ordered table of string cells.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates a dataset from a header and rows. Every row must have
// exactly one cell per column.
func New(columns []string, rows [][]string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset needs at least one column")
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if err := errors.ValidateColumnName(c); err != nil {
			return nil, err
		}
		if _, dup := index[c]; dup {
			return nil, errors.New(errors.ErrCodeInvalidColumn, "duplicate column %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"row %d has %d cells, want %d", i, len(r), len(columns))
		}
	}
	return &Dataset{columns: columns, index: index, rows: rows}, nil
}

// Columns returns the column names in declaration order.
func (d *Dataset) Columns() []string { return d.columns }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Column returns the index of a named column, or INVALID_COLUMN if the
// dataset has no such column. Use this to validate a chart mapping at
// construction time rather than at render time.
func (d *Dataset) Column(name string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidColumn,
			"no column named %q (have: %s)", name, strings.Join(d.columns, ", "))
	}
	return i, nil
}

// Observations extracts (category, value) pairs using the given column
// mapping, preserving row order. Values must parse as real numbers.
func (d *Dataset) Observations(categoryCol, valueCol string) ([]pie.Observation, error) {
	ci, err := d.Column(categoryCol)
	if err != nil {
		return nil, err
	}
	vi, err := d.Column(valueCol)
	if err != nil {
		return nil, err
	}

	obs := make([]pie.Observation, len(d.rows))
	for i, row := range d.rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[vi]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err,
				"row %d: value %q in column %q is not a number", i, row[vi], valueCol)
		}
		obs[i] = pie.Observation{Category: row[ci], Value: v}
	}
	return obs, nil
}

// Hash returns a content hash of the dataset, used in cache keys.
func (d *Dataset) Hash() string {
	var b strings.Builder
	b.WriteString(strings.Join(d.columns, "\x1f"))
	b.WriteByte('\n')
	for _, row := range d.rows {
		b.WriteString(strings.Join(row, "\x1f"))
		b.WriteByte('\n')
	}
	return cache.Hash([]byte(b.String()))
}
