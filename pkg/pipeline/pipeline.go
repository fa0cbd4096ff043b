// Package pipeline provides the core chart pipeline for svgpie.
//
// This package implements the complete load → layout → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read observations from a CSV/JSON file, a MongoDB collection,
//     or take them inline
//  2. Layout: Normalize the values into shares and compute slice geometry
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "sales.csv",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pgrunwald/svgpie/pkg/cache"
	"github.com/pgrunwald/svgpie/pkg/chart/palette"
	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/chart/sink"
	"github.com/pgrunwald/svgpie/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default chart width in pixels.
	DefaultWidth = 600.0

	// DefaultHeight is the default chart height in pixels.
	DefaultHeight = 400.0

	// DefaultCategoryColumn is the dataset column holding category names.
	DefaultCategoryColumn = "category"

	// DefaultValueColumn is the dataset column holding numeric values.
	DefaultValueColumn = "value"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one source is used: inline Observations win over
	// Input, which wins over the Mongo fields.
	Observations []pie.Observation `json:"observations,omitempty"`
	Input        string            `json:"input,omitempty"`            // path to a .csv or .json dataset
	MongoURI     string            `json:"mongo_uri,omitempty"`        // MongoDB connection string
	MongoDB      string            `json:"mongo_db,omitempty"`         // database name
	MongoColl    string            `json:"mongo_collection,omitempty"` // collection name
	Category     string            `json:"category,omitempty"`         // category column name
	Value        string            `json:"value,omitempty"`            // value column name
	Refresh      bool              `json:"refresh,omitempty"`          // bypass the dataset cache

	// Chart options
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
	NoLabels bool              `json:"no_labels,omitempty"`
	Palette  []string          `json:"palette,omitempty"` // hex colors without '#', assigned in order
	Colors   map[string]string `json:"colors,omitempty"`  // explicit category → color mapping

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Legend   bool     `json:"legend,omitempty"`
	Title    string   `json:"title,omitempty"`
	Fragment bool     `json:"fragment,omitempty"`  // omit the xmlns attribute for inlining
	PNGScale float64  `json:"png_scale,omitempty"` // raster scale factor for PNG output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Shares are the normalized percentages, in input order.
	Shares []pie.Share

	// DatasetHash is the content hash of the loaded observations.
	DatasetHash string

	// Layout contains the slice geometry.
	Layout pie.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SliceCount int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the dataset came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetChartDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for the load stage.
func (o *Options) ValidateForLoad() error {
	if len(o.Observations) == 0 && o.Input == "" && o.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"observations, input file, or mongo_uri is required")
	}
	if o.MongoURI != "" && (o.MongoDB == "" || o.MongoColl == "") {
		return errors.New(errors.ErrCodeInvalidInput,
			"mongo_db and mongo_collection are required with mongo_uri")
	}
	if o.Input != "" {
		switch strings.ToLower(filepath.Ext(o.Input)) {
		case ".csv", ".json":
		default:
			return errors.New(errors.ErrCodeUnsupported,
				"unsupported input file %q (must be .csv or .json)", o.Input)
		}
	}

	// Column defaults
	if o.Category == "" {
		o.Category = DefaultCategoryColumn
	}
	if o.Value == "" {
		o.Value = DefaultValueColumn
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetChartDefaults sets default values for chart construction.
func (o *Options) SetChartDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetChartDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.PNGScale == 0 {
		o.PNGScale = 2.0
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if len(o.Palette) > 0 {
		return errors.ValidatePalette(o.Palette)
	}
	return nil
}

// Source describes the dataset origin for logging and cache keys.
func (o *Options) Source() string {
	switch {
	case len(o.Observations) > 0:
		return "inline"
	case o.Input != "":
		return o.Input
	case o.MongoURI != "":
		return "mongodb:" + o.MongoDB + "/" + o.MongoColl
	}
	return ""
}

// ChartOptions translates the chart section into pie.Chart options.
func (o *Options) ChartOptions() ([]pie.Option, error) {
	opts := []pie.Option{pie.WithSize(o.Width, o.Height)}
	if o.NoLabels {
		opts = append(opts, pie.WithoutLabels())
	}
	switch {
	case len(o.Colors) > 0:
		s, err := palette.NewSupplied(o.Colors)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pie.WithScale(s))
	case len(o.Palette) > 0:
		opts = append(opts, pie.WithPalette(o.Palette))
	}
	return opts, nil
}

// SVGOptions translates the render section into sink options.
func (o *Options) SVGOptions() []sink.SVGOption {
	var opts []sink.SVGOption
	if o.Title != "" {
		opts = append(opts, sink.WithTitle(o.Title))
	}
	if o.Legend {
		opts = append(opts, sink.WithLegend())
	}
	if o.Fragment {
		opts = append(opts, sink.AsFragment())
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Width:   o.Width,
		Height:  o.Height,
		Labels:  !o.NoLabels,
		Legend:  o.Legend,
		Palette: strings.Join(o.Palette, ","),
		Title:   o.Title,
	}
}
