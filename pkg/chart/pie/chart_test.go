package pie

import (
	"reflect"
	"testing"

	"github.com/pgrunwald/svgpie/pkg/chart/palette"
	"github.com/pgrunwald/svgpie/pkg/errors"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Width() != 600 {
		t.Errorf("Width = %v, want 600", c.Width())
	}
	if c.Height() != 400 {
		t.Errorf("Height = %v, want 400", c.Height())
	}
	if c.Radius() != 200 {
		t.Errorf("Radius = %v, want 200 (height/2)", c.Radius())
	}
	if !c.Labels() {
		t.Error("Labels = false, want true by default")
	}
}

func TestNewOptions(t *testing.T) {
	c, err := New(WithSize(800, 600), WithoutLabels(), WithPalette([]string{"ff9838", "fdae6b"}))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Width() != 800 || c.Height() != 600 {
		t.Errorf("size = %vx%v, want 800x600", c.Width(), c.Height())
	}
	if c.Labels() {
		t.Error("Labels = true, want false")
	}
}

func TestNewValidatesAtConstruction(t *testing.T) {
	if _, err := New(WithSize(0, 400)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("WithSize(0, 400) error = %v, want INVALID_CONFIG", err)
	}
	if _, err := New(WithPalette([]string{"#ff9838"})); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("bad palette error = %v, want INVALID_PALETTE", err)
	}
	if _, err := New(WithScale(nil)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("WithScale(nil) error = %v, want INVALID_CONFIG", err)
	}
}

func TestChartLayout(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	obs := []Observation{
		{Category: "Cat", Value: 10.0},
		{Category: "Dog", Value: 20.0},
		{Category: "Hamster", Value: 5.0},
	}
	l, err := c.Layout(obs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	if l.Width != 600 || l.Height != 400 {
		t.Errorf("layout size = %vx%v, want 600x400", l.Width, l.Height)
	}
	if l.Radius != 200 {
		t.Errorf("layout radius = %v, want 200", l.Radius)
	}

	want := []string{"28.57%", "57.14%", "14.29%"}
	for i, slc := range l.Slices {
		if slc.Label.Text != want[i] {
			t.Errorf("slice %d label = %q, want %q", i, slc.Label.Text, want[i])
		}
	}
}

func TestChartLayoutIdempotent(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	obs := []Observation{
		{Category: "A", Value: 3},
		{Category: "B", Value: 7},
	}
	first, err := c.Layout(obs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	second, err := c.Layout(obs)
	if err != nil {
		t.Fatalf("second Layout error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Layout calls should produce identical results")
	}
}

func TestChartLayoutSuppliedScale(t *testing.T) {
	scale, err := palette.NewSupplied(map[string]string{"A": "ff0000", "B": "00ff00"})
	if err != nil {
		t.Fatalf("NewSupplied error: %v", err)
	}
	c, err := New(WithScale(scale))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	l, err := c.Layout([]Observation{{Category: "A", Value: 1}, {Category: "B", Value: 1}})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if l.Slices[0].Segment.Color != "ff0000" {
		t.Errorf("A color = %q, want ff0000", l.Slices[0].Segment.Color)
	}
	if l.Slices[1].Segment.Color != "00ff00" {
		t.Errorf("B color = %q, want 00ff00", l.Slices[1].Segment.Color)
	}

	// A category the supplied scale doesn't know fails the render.
	if _, err := c.Layout([]Observation{{Category: "C", Value: 1}}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown category error = %v, want NOT_FOUND", err)
	}
}

func TestChartLayoutErrorsPropagate(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := c.Layout([]Observation{{Category: "A", Value: 0}}); !errors.Is(err, errors.ErrCodeDegenerateTotal) {
		t.Errorf("error = %v, want DEGENERATE_TOTAL", err)
	}
	if _, err := c.Layout([]Observation{{Category: "A", Value: -2}}); !errors.Is(err, errors.ErrCodeNegativeValue) {
		t.Errorf("error = %v, want NEGATIVE_VALUE", err)
	}
}
