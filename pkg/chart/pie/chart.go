package pie

import (
	"github.com/pgrunwald/svgpie/pkg/chart/palette"
	"github.com/pgrunwald/svgpie/pkg/errors"
)

// Defaults for chart construction.
const (
	DefaultWidth  = 600.0
	DefaultHeight = 400.0
)

// Chart is an immutable pie chart configuration. Construct one with New;
// option setters build a new value rather than mutating, so a Chart may be
// rendered concurrently.
type Chart struct {
	width  float64
	height float64
	labels bool
	scale  palette.Scale
}

// Option configures a chart during construction.
type Option func(*Chart) error

// WithSize sets the chart pixel dimensions. The ring radius derives from
// the height as height/2.
func WithSize(width, height float64) Option {
	return func(c *Chart) error {
		if err := errors.ValidateDimensions(width, height); err != nil {
			return err
		}
		c.width = width
		c.height = height
		return nil
	}
}

// WithPalette sets a custom color palette (hex strings, no leading '#').
// Colors are assigned to categories in first-appearance order.
func WithPalette(colors []string) Option {
	return func(c *Chart) error {
		s, err := palette.NewDerived(colors)
		if err != nil {
			return err
		}
		c.scale = s
		return nil
	}
}

// WithScale sets an externally-constructed category-to-color scale,
// overriding any palette.
func WithScale(s palette.Scale) Option {
	return func(c *Chart) error {
		if s == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "color scale cannot be nil")
		}
		c.scale = s
		return nil
	}
}

// WithoutLabels disables the per-slice percentage labels.
func WithoutLabels() Option {
	return func(c *Chart) error {
		c.labels = false
		return nil
	}
}

// New creates a chart with the given options. Configuration is validated
// here, once; rendering never re-validates.
func New(opts ...Option) (*Chart, error) {
	c := &Chart{
		width:  DefaultWidth,
		height: DefaultHeight,
		labels: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.scale == nil {
		s, err := palette.NewDerived(nil)
		if err != nil {
			return nil, err
		}
		c.scale = s
	}
	return c, nil
}

// Width returns the chart pixel width.
func (c *Chart) Width() float64 { return c.width }

// Height returns the chart pixel height.
func (c *Chart) Height() float64 { return c.height }

// Radius returns the ring radius, half the chart height.
func (c *Chart) Radius() float64 { return c.height / 2 }

// Labels reports whether percentage labels are rendered.
func (c *Chart) Labels() bool { return c.labels }

// Layout normalizes the observations and computes the slice geometry.
// The chart itself is never mutated, so repeated calls with the same
// input produce identical layouts.
func (c *Chart) Layout(obs []Observation) (Layout, error) {
	shares, err := Normalize(obs)
	if err != nil {
		return Layout{}, err
	}
	l, err := BuildLayout(shares, c.Radius(), c.scale, c.labels)
	if err != nil {
		return Layout{}, err
	}
	l.Width = c.width
	l.Height = c.height
	return l, nil
}
