// Package sink serializes computed pie layouts into output formats.
//
// The canonical output is SVG; PNG and PDF derive from it via rsvg-convert
// and JSON exports the raw descriptors. Serializers consume a [pie.Layout]
// and never recompute geometry, so formatting stays decoupled from the
// layout engine.
package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/pgrunwald/svgpie/pkg/chart/pie"
)

const labelCSS = `
    .pie-label { font-size: 16px; }
    .pie-label-small { font-size: 8px; }
    .pie-legend-text { font-size: 14px; }
    .pie-title { font-size: 20px; }`

// labelNudge is the vertical translation applied to labels so they sit
// centered on the ring rather than on the mid-angle line.
const labelNudge = 5.0

// legend geometry
const (
	legendMargin     = 20.0
	legendSwatchSize = 14.0
	legendRowHeight  = 22.0
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title    string
	legend   bool
	fragment bool
}

// WithTitle adds a centered title above the chart.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithLegend adds a category legend to the right of the ring.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// AsFragment emits only the chart <g> group, for embedding into an
// existing SVG document. The default is a self-contained document.
func AsFragment() SVGOption { return func(r *svgRenderer) { r.fragment = true } }

// RenderSVG serializes a layout to SVG. Slices are written in layout
// order: draw order is a correctness requirement because later segments
// overlay earlier ones along the shared dash-offset coordinate space.
func RenderSVG(l pie.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if !r.fragment {
		fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
			l.Width, l.Height, l.Width, l.Height)
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", labelCSS)
		if r.title != "" {
			fmt.Fprintf(&buf, `  <text class="pie-title" x="%.2f" y="%.2f" text-anchor="middle">%s</text>`+"\n",
				l.Width/2, legendMargin, EscapeXML(r.title))
		}
	}

	renderSlices(&buf, l)

	if r.legend {
		renderLegend(&buf, l)
	}
	if !r.fragment {
		buf.WriteString("</svg>\n")
	}
	return buf.Bytes()
}

// renderSlices writes the chart group: one ring segment per slice, then
// one label per slice so text always overlays the segments.
func renderSlices(buf *bytes.Buffer, l pie.Layout) {
	buf.WriteString(`  <g class="pie-chart">` + "\n")
	for _, slc := range l.Slices {
		renderSegment(buf, slc.Segment)
	}
	for _, slc := range l.Slices {
		if slc.Label != nil {
			renderLabel(buf, l.Radius, *slc.Label)
		}
	}
	buf.WriteString("  </g>\n")
}

func renderSegment(buf *bytes.Buffer, s pie.Segment) {
	fmt.Fprintf(buf,
		`    <circle r="%.2f" cx="%.2f" cy="%.2f" fill="transparent" stroke="#%s" stroke-width="%.2f" stroke-dasharray="%.2f %.2f" stroke-dashoffset="%.2f"/>`+"\n",
		s.Radius, s.CX, s.CY, s.Color, s.StrokeWidth, s.DashLength, s.Circumference, s.DashOffset)
}

func renderLabel(buf *bytes.Buffer, radius float64, lbl pie.Label) {
	class := "pie-label"
	if lbl.Small {
		class += " pie-label-small"
	}

	transform := fmt.Sprintf("rotate(%.2f,%.2f,%.2f) translate(%.2f, %.2f)",
		lbl.Rotation, radius, radius,
		radius/2, pie.NegateIfFlipped(labelNudge, lbl.Rotation))
	if lbl.Flip {
		transform += " scale(-1, -1)"
	}

	fmt.Fprintf(buf,
		`    <text x="%.2f" y="%.2f" text-anchor="middle" fill="white" stroke-width="1" class="%s" transform="%s">%s</text>`+"\n",
		lbl.X, lbl.Y, class, transform, EscapeXML(lbl.Text))
}

// renderLegend writes a swatch-and-category row per slice, stacked to the
// right of the ring and vertically centered against it.
func renderLegend(buf *bytes.Buffer, l pie.Layout) {
	x := l.Radius*2 + legendMargin
	top := l.Radius - float64(len(l.Slices))*legendRowHeight/2

	buf.WriteString(`  <g class="pie-legend">` + "\n")
	for i, slc := range l.Slices {
		y := top + float64(i)*legendRowHeight
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#%s"/>`+"\n",
			x, y, legendSwatchSize, legendSwatchSize, slc.Segment.Color)
		fmt.Fprintf(buf, `    <text class="pie-legend-text" x="%.2f" y="%.2f">%s</text>`+"\n",
			x+legendSwatchSize+8, y+legendSwatchSize-2, EscapeXML(slc.Category))
	}
	buf.WriteString("  </g>\n")
}

// EscapeXML escapes text for embedding into SVG attributes and content.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
