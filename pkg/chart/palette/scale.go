package palette

import (
	"sync"

	"github.com/pgrunwald/svgpie/pkg/errors"
)

// Derived assigns palette colors to categories in first-appearance order.
// Assignments are memoized, so a category keeps its color across renders of
// the same chart instance. Safe for concurrent use.
type Derived struct {
	base []string

	mu       sync.Mutex
	assigned map[string]string
	next     int
}

// NewDerived creates a derived scale over the given palette.
// Pass nil to use the default palette.
func NewDerived(colors []string) (*Derived, error) {
	if colors == nil {
		colors = Default
	}
	if err := errors.ValidatePalette(colors); err != nil {
		return nil, err
	}
	return &Derived{
		base:     colors,
		assigned: make(map[string]string),
	}, nil
}

// ColorOf returns the color assigned to a category, assigning the next
// palette color on first sight.
func (d *Derived) ColorOf(category string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.assigned[category]; ok {
		return c, nil
	}
	c := colorAt(d.base, d.next)
	d.assigned[category] = c
	d.next++
	return c, nil
}

// Ensure Derived implements Scale.
var _ Scale = (*Derived)(nil)
