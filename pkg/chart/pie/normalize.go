package pie

import "github.com/pgrunwald/svgpie/pkg/errors"

// Observation is one labeled value extracted from a dataset.
type Observation struct {
	Category string  // color-lookup key and display text
	Value    float64 // non-negative; zero produces an invisible slice
}

// Share is an observation normalized to its percentage of the total.
type Share struct {
	Category string
	Percent  float64 // in [0, 100]
}

// Normalize converts ordered observations into percentage shares of the
// grand total, preserving input order. Order matters: it determines draw
// sequence and the cumulative offset each later slice starts at.
//
// Negative values are rejected with NEGATIVE_VALUE. A zero total is
// rejected with DEGENERATE_TOTAL rather than propagating NaN percentages
// into the output.
func Normalize(obs []Observation) ([]Share, error) {
	var total float64
	for _, o := range obs {
		if o.Value < 0 {
			return nil, errors.New(errors.ErrCodeNegativeValue,
				"value for category %q is negative (%g)", o.Category, o.Value)
		}
		total += o.Value
	}
	if total == 0 {
		return nil, errors.New(errors.ErrCodeDegenerateTotal,
			"all %d values sum to zero, chart shares are undefined", len(obs))
	}

	shares := make([]Share, len(obs))
	for i, o := range obs {
		shares[i] = Share{
			Category: o.Category,
			Percent:  o.Value / total * 100,
		}
	}
	return shares, nil
}
