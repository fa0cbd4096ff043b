package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgrunwald/svgpie/pkg/cache"
	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{
		Observations: []pie.Observation{{Category: "a", Value: 1}},
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %v, got %v", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %v, got %v", DefaultHeight, opts.Height)
	}
	if opts.Category != DefaultCategoryColumn {
		t.Errorf("Category should be %q, got %q", DefaultCategoryColumn, opts.Category)
	}
	if opts.Value != DefaultValueColumn {
		t.Errorf("Value should be %q, got %q", DefaultValueColumn, opts.Value)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should default to [svg], got %v", opts.Formats)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// No source at all
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing source should fail")
	}

	// Mongo URI without database/collection
	opts = Options{MongoURI: "mongodb://localhost:27017"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Mongo URI without db/collection should fail")
	}

	// Unsupported file extension
	opts = Options{Input: "data.xlsx"}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Unsupported extension should fail with UNSUPPORTED, got %v", err)
	}

	// Valid file input
	opts = Options{Input: "data.csv"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid input should pass: %v", err)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{Formats: []string{"svg", "bogus"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format should fail with INVALID_FORMAT, got %v", err)
	}

	opts = Options{Palette: []string{"nothex"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("Invalid palette should fail with INVALID_PALETTE, got %v", err)
	}

	opts = Options{Width: -1}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Negative width should fail")
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Observations: []pie.Observation{{Category: "a", Value: 1}}}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	first := opts

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Width != first.Width || opts.Height != first.Height || len(opts.Formats) != len(first.Formats) {
		t.Error("ValidateAndSetDefaults should be idempotent")
	}
}

func TestOptionsSource(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"inline", Options{Observations: []pie.Observation{{Category: "a", Value: 1}}}, "inline"},
		{"file", Options{Input: "sales.csv"}, "sales.csv"},
		{"mongo", Options{MongoURI: "mongodb://h", MongoDB: "db", MongoColl: "c"}, "mongodb:db/c"},
	}
	for _, tt := range tests {
		if got := tt.opts.Source(); got != tt.want {
			t.Errorf("%s: Source() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRunnerExecuteInline(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Observations: []pie.Observation{
			{Category: "a", Value: 2},
			{Category: "b", Value: 4},
			{Category: "c", Value: 1},
		},
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.SliceCount != 3 {
		t.Errorf("SliceCount = %d, want 3", result.Stats.SliceCount)
	}
	if len(result.Shares) != 3 {
		t.Fatalf("len(Shares) = %d, want 3", len(result.Shares))
	}
	if result.DatasetHash == "" {
		t.Error("DatasetHash should be set")
	}

	svg, ok := result.Artifacts["svg"]
	if !ok {
		t.Fatal("missing svg artifact")
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg artifact should contain an <svg> element")
	}
	if _, ok := result.Artifacts["json"]; !ok {
		t.Error("missing json artifact")
	}
}

func TestRunnerExecuteFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	records := [][]string{
		{"category", "value"},
		{"alpha", "10"},
		{"beta", "30"},
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatal(err)
	}
	f.Close()

	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{Input: path})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Stats.SliceCount != 2 {
		t.Errorf("SliceCount = %d, want 2", result.Stats.SliceCount)
	}
	if got := result.Shares[1].Percent; got != 75 {
		t.Errorf("Shares[1].Percent = %v, want 75", got)
	}
}

func TestRunnerExecuteErrorPropagation(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	// Zero total
	_, err := runner.Execute(context.Background(), Options{
		Observations: []pie.Observation{{Category: "a", Value: 0}},
	})
	if !errors.Is(err, errors.ErrCodeDegenerateTotal) {
		t.Errorf("zero total should fail with DEGENERATE_TOTAL, got %v", err)
	}

	// Negative value
	_, err = runner.Execute(context.Background(), Options{
		Observations: []pie.Observation{{Category: "a", Value: -1}},
	})
	if !errors.Is(err, errors.ErrCodeNegativeValue) {
		t.Errorf("negative value should fail with NEGATIVE_VALUE, got %v", err)
	}
}

func TestRunnerRenderCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Observations: []pie.Observation{
			{Category: "a", Value: 1},
			{Category: "b", Value: 3},
		},
	}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should not be a render cache hit")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should be a render cache hit")
	}
	if string(first.Artifacts["svg"]) != string(second.Artifacts["svg"]) {
		t.Error("cached artifact should match the original")
	}
}

func TestRunnerRenderRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Observations: []pie.Observation{{Category: "a", Value: 1}},
	}
	ctx := context.Background()

	if _, err := runner.Execute(ctx, opts); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	opts.Refresh = true
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if result.CacheInfo.RenderHit {
		t.Error("refresh run should not hit the cache")
	}
}

func TestRunnerLayoutWithSuppliedColors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	obs := []pie.Observation{
		{Category: "a", Value: 1},
		{Category: "b", Value: 1},
	}
	layout, _, err := runner.Layout(obs, Options{
		Colors: map[string]string{"a": "ff0000", "b": "00ff00"},
	})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if got := layout.Slices[0].Segment.Color; got != "ff0000" {
		t.Errorf("Slices[0] color = %q, want %q", got, "ff0000")
	}

	// Missing category in the supplied mapping
	obs = append(obs, pie.Observation{Category: "c", Value: 1})
	_, _, err = runner.Layout(obs, Options{
		Colors: map[string]string{"a": "ff0000", "b": "00ff00"},
	})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing category should fail with NOT_FOUND, got %v", err)
	}
}
