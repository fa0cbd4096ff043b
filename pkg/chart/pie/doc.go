// Package pie computes the geometry of single-ring proportional charts.
//
// The chart draws each category as a ring segment using stroke-dash
// arithmetic rather than explicit arc paths: every slice is the same circle
// drawn with a dash exactly as long as the slice's share of the
// circumference, offset by the share consumed by the slices before it.
//
// # Pipeline
//
// Rendering is a pure two-stage pass:
//
//  1. Normalize turns ordered (category, value) observations into
//     percentage shares summing to 100.
//  2. BuildLayout folds over the shares with a running angular offset and
//     emits one segment descriptor and one label descriptor per entry.
//
// The resulting Layout is a plain value; serialization to SVG lives in the
// sink package so geometry stays independently testable.
//
// # Usage
//
//	chart, err := pie.New(pie.WithSize(600, 400))
//	if err != nil { ... }
//	layout, err := chart.Layout([]pie.Observation{
//	    {Category: "Cat", Value: 10},
//	    {Category: "Dog", Value: 20},
//	})
package pie
