package pie

import (
	"fmt"
	"math"

	"github.com/pgrunwald/svgpie/pkg/chart/palette"
	"github.com/pgrunwald/svgpie/pkg/errors"
)

// smallLabelThreshold is the displayed percentage at or below which a
// label is rendered in the small font class, keeping text inside thin
// slices from crowding them.
const smallLabelThreshold = 5.0

// Segment describes one ring segment as stroke-dash parameters.
//
// The drawn circle has radius Radius (half the chart radius) with stroke
// width equal to the full chart radius, so the stroke fills the disc while
// the dash path length is π times the chart radius.
type Segment struct {
	Radius        float64 // drawn circle radius, chart radius / 2
	CX, CY        float64 // circle center, both equal the chart radius
	Color         string  // stroke color, hex without '#'
	StrokeWidth   float64 // equals the chart radius
	DashLength    float64 // share of Circumference covered by this slice
	Circumference float64 // total dash path length, π times the chart radius
	DashOffset    float64 // negative cumulative length of earlier slices
}

// Label describes one slice's mid-angle text label.
type Label struct {
	X, Y     float64 // anchor coordinates, negated when Flip is set
	Rotation float64 // degrees clockwise from 12 o'clock
	Flip     bool    // label falls in the lower half and is mirrored
	Small    bool    // thin slice, render in the small font class
	Text     string  // percentage rounded to 2 decimals plus '%'
}

// Slice pairs a segment with its optional label.
type Slice struct {
	Category string
	Percent  float64
	Segment  Segment
	Label    *Label // nil when labels are disabled
}

// Layout is the computed geometry of a whole chart, ready for the sink.
// Slices appear in input order; the serializer must preserve that order
// because later segments overlay earlier ones along the shared dash path.
type Layout struct {
	Width  float64
	Height float64
	Radius float64
	Slices []Slice
}

// BuildLayout walks the shares once, carrying the cumulative percentage
// offset, and emits one slice per entry in input order. Both the segment
// dash offset and the label rotation use the offset before the current
// entry is added. Entries are never skipped or reordered: a zero share
// yields a zero-length dash and leaves the offset unchanged.
func BuildLayout(shares []Share, radius float64, scale palette.Scale, withLabels bool) (Layout, error) {
	if radius <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidConfig, "radius must be positive, got %g", radius)
	}
	if scale == nil {
		return Layout{}, errors.New(errors.ErrCodeInvalidConfig, "color scale is required")
	}

	circumference := math.Pi * radius
	slices := make([]Slice, len(shares))

	offset := 0.0
	for i, s := range shares {
		color, err := scale.ColorOf(s.Category)
		if err != nil {
			return Layout{}, err
		}

		slc := Slice{
			Category: s.Category,
			Percent:  s.Percent,
			Segment: Segment{
				Radius:        radius / 2,
				CX:            radius,
				CY:            radius,
				Color:         color,
				StrokeWidth:   radius,
				DashLength:    s.Percent / 100 * circumference,
				Circumference: circumference,
				DashOffset:    0 - offset/100*circumference,
			},
		}

		if withLabels {
			rotation := RotateFor(s.Percent, offset)
			displayed := math.Round(s.Percent*100) / 100
			slc.Label = &Label{
				X:        NegateIfFlipped(radius, rotation),
				Y:        NegateIfFlipped(radius, rotation),
				Rotation: rotation,
				Flip:     NeedFlip(rotation),
				Small:    displayed <= smallLabelThreshold,
				Text:     fmt.Sprintf("%.2f%%", displayed),
			}
		}

		slices[i] = slc
		offset += s.Percent
	}

	return Layout{
		Width:  radius * 2,
		Height: radius * 2,
		Radius: radius,
		Slices: slices,
	}, nil
}
