package errors

import (
	"strings"
	"unicode"
)

// hexDigits reports whether s consists only of hexadecimal digits.
func hexDigits(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ValidateHexColor validates a palette entry. Palette colors are written
// without a leading '#': "ff9838", "4477AA", "fdf". Three- and six-digit
// forms are accepted.
func ValidateHexColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidPalette, "palette color cannot be empty")
	}
	if strings.HasPrefix(color, "#") {
		return New(ErrCodeInvalidPalette, "palette color %q must not include a leading '#'", color)
	}
	if len(color) != 3 && len(color) != 6 {
		return New(ErrCodeInvalidPalette, "palette color %q must be 3 or 6 hex digits", color)
	}
	if !hexDigits(color) {
		return New(ErrCodeInvalidPalette, "palette color %q contains non-hex characters", color)
	}
	return nil
}

// ValidatePalette validates every entry of a custom palette.
// An empty palette is invalid: a chart must be able to color at least one slice.
func ValidatePalette(colors []string) error {
	if len(colors) == 0 {
		return New(ErrCodeInvalidPalette, "palette must contain at least one color")
	}
	for _, c := range colors {
		if err := ValidateHexColor(c); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumnName validates a dataset column name used in a chart mapping.
// Names must be non-empty and printable; this catches configuration typos
// early rather than at render time.
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidColumn, "column name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidColumn, "column name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidColumn, "column name contains invalid control characters")
		}
	}
	return nil
}

// ValidateDimensions validates chart width and height.
func ValidateDimensions(width, height float64) error {
	if width <= 0 {
		return New(ErrCodeInvalidConfig, "width must be positive, got %g", width)
	}
	if height <= 0 {
		return New(ErrCodeInvalidConfig, "height must be positive, got %g", height)
	}
	return nil
}
