// Package palette provides category-to-color scales for pie charts.
//
// A chart colors each slice by looking its category up in a Scale. Two
// scales are provided: Supplied wraps a caller-built mapping, Derived
// assigns palette colors to categories in first-appearance order. Colors
// are hex strings without a leading '#', as they are embedded into SVG
// stroke attributes as "#"+color.
package palette

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pgrunwald/svgpie/pkg/errors"
)

// Default is Paul Tol's qualitative color palette, designed for colorblind
// accessibility. See: https://personal.sron.nl/~pault/
var Default = []string{
	"4477AA", // Blue
	"EE6677", // Rose
	"228833", // Green
	"CCBB44", // Olive/Yellow
	"66CCEE", // Cyan
	"AA3377", // Purple
	"BBBBBB", // Grey
	"EE8866", // Orange
	"44BB99", // Teal
	"FFAABB", // Pink
}

// Scale maps a slice category to its fill color.
type Scale interface {
	// ColorOf returns the hex color (no leading '#') for a category.
	ColorOf(category string) (string, error)
}

// colorAt returns the palette color for the given assignment index.
// Indexes beyond the palette wrap around with the hue rotated, so charts
// with more categories than palette entries still get distinct colors.
func colorAt(base []string, idx int) string {
	color := base[idx%len(base)]
	round := idx / len(base)
	if round == 0 {
		return color
	}

	c, err := colorful.Hex("#" + normalizeHex(color))
	if err != nil {
		return color
	}
	h, s, l := c.Hsl()
	h += float64(round) * 360.0 / float64(len(base)+1)
	for h >= 360 {
		h -= 360
	}
	return strings.TrimPrefix(colorful.Hsl(h, s, l).Clamped().Hex(), "#")
}

// normalizeHex expands 3-digit hex colors to 6 digits.
func normalizeHex(color string) string {
	if len(color) != 3 {
		return color
	}
	var b strings.Builder
	for _, r := range color {
		b.WriteRune(r)
		b.WriteRune(r)
	}
	return b.String()
}

// NewSupplied creates a scale from a prebuilt category-to-color mapping.
// Every color is validated at construction.
func NewSupplied(colors map[string]string) (Scale, error) {
	for cat, c := range colors {
		if err := errors.ValidateHexColor(c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPalette, err, "color for category %q", cat)
		}
	}
	return &supplied{colors: colors}, nil
}

type supplied struct {
	colors map[string]string
}

func (s *supplied) ColorOf(category string) (string, error) {
	c, ok := s.colors[category]
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "no color supplied for category %q", category)
	}
	return c, nil
}
