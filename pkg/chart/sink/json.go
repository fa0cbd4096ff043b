package sink

import (
	"encoding/json"

	"github.com/pgrunwald/svgpie/pkg/chart/pie"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title string
}

// WithJSONTitle records the chart title in the JSON output.
func WithJSONTitle(title string) JSONOption { return func(r *jsonRenderer) { r.title = title } }

type jsonOutput struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Radius float64     `json:"radius"`
	Title  string      `json:"title,omitempty"`
	Slices []jsonSlice `json:"slices"`
}

type jsonSlice struct {
	Category   string     `json:"category"`
	Percent    float64    `json:"percent"`
	Color      string     `json:"color"`
	DashLength float64    `json:"dash_length"`
	DashOffset float64    `json:"dash_offset"`
	Label      *jsonLabel `json:"label,omitempty"`
}

type jsonLabel struct {
	Text     string  `json:"text"`
	Rotation float64 `json:"rotation"`
	Flip     bool    `json:"flip,omitempty"`
	Small    bool    `json:"small,omitempty"`
}

// RenderJSON exports the layout descriptors as a pretty-printed JSON
// document, the data interchange format for external tooling and artifact
// caching. Slices keep their layout order. It does not modify l and is
// safe to call concurrently.
func RenderJSON(l pie.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:  l.Width,
		Height: l.Height,
		Radius: l.Radius,
		Title:  r.title,
		Slices: make([]jsonSlice, len(l.Slices)),
	}
	for i, slc := range l.Slices {
		js := jsonSlice{
			Category:   slc.Category,
			Percent:    slc.Percent,
			Color:      slc.Segment.Color,
			DashLength: slc.Segment.DashLength,
			DashOffset: slc.Segment.DashOffset,
		}
		if slc.Label != nil {
			js.Label = &jsonLabel{
				Text:     slc.Label.Text,
				Rotation: slc.Label.Rotation,
				Flip:     slc.Label.Flip,
				Small:    slc.Label.Small,
			}
		}
		out.Slices[i] = js
	}

	return json.MarshalIndent(out, "", "  ")
}
