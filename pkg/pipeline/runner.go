package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pgrunwald/svgpie/pkg/cache"
	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/chart/sink"
	"github.com/pgrunwald/svgpie/pkg/dataset"
	"github.com/pgrunwald/svgpie/pkg/errors"
	"github.com/pgrunwald/svgpie/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Chart().OnLoadStart(ctx, opts.Source())
	obs, datasetHash, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	observability.Chart().OnLoadComplete(ctx, opts.Source(), len(obs), time.Since(loadStart), err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.DatasetHash = datasetHash
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded observations",
		"source", opts.Source(),
		"count", len(obs),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Chart().OnLayoutStart(ctx, len(obs))
	layout, shares, err := r.Layout(obs, opts)
	observability.Chart().OnLayoutComplete(ctx, len(obs), time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Shares = shares
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.SliceCount = len(layout.Slices)

	r.Logger.Info("computed layout",
		"slices", len(layout.Slices),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Chart().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	observability.Chart().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads observations and returns the dataset content hash
// plus cache hit info. Only MongoDB loads are cached: inline observations
// need no loading and local files are cheap to re-read.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]pie.Observation, string, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	if len(opts.Observations) > 0 {
		data, err := json.Marshal(opts.Observations)
		if err != nil {
			return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "hashing observations")
		}
		return opts.Observations, cache.Hash(data), false, nil
	}

	if opts.Input != "" {
		ds, err := loadFile(opts.Input)
		if err != nil {
			return nil, "", false, err
		}
		obs, err := ds.Observations(opts.Category, opts.Value)
		if err != nil {
			return nil, "", false, err
		}
		return obs, ds.Hash(), false, nil
	}

	// MongoDB: try the cached dataset snapshot first.
	columns := []string{opts.Category, opts.Value}
	cacheKey := r.Keyer.DatasetKey(opts.Source(), cache.Hash([]byte(strings.Join(columns, "\x1f"))))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if ds, err := dataset.ReadJSON(bytes.NewReader(data)); err == nil {
				obs, err := ds.Observations(opts.Category, opts.Value)
				if err == nil {
					observability.Cache().OnCacheHit(ctx, "dataset")
					return obs, ds.Hash(), true, nil
				}
			}
			// Corrupt snapshot, fall through to reload
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	ds, err := dataset.LoadMongo(ctx, opts.MongoURI, opts.MongoDB, opts.MongoColl, columns)
	if err != nil {
		return nil, "", false, err
	}
	obs, err := ds.Observations(opts.Category, opts.Value)
	if err != nil {
		return nil, "", false, err
	}

	var buf bytes.Buffer
	if err := dataset.WriteJSON(ds, &buf); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLDataset); err == nil {
			observability.Cache().OnCacheSet(ctx, "dataset", buf.Len())
		}
	}

	return obs, ds.Hash(), false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the
// hash and cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) ([]pie.Observation, error) {
	obs, _, _, err := r.LoadWithCacheInfo(ctx, opts)
	return obs, err
}

// Layout builds the chart and computes the slice geometry. Layouts are pure
// arithmetic so they are never cached.
func (r *Runner) Layout(obs []pie.Observation, opts Options) (pie.Layout, []pie.Share, error) {
	opts.SetChartDefaults()

	chartOpts, err := opts.ChartOptions()
	if err != nil {
		return pie.Layout{}, nil, err
	}
	chart, err := pie.New(chartOpts...)
	if err != nil {
		return pie.Layout{}, nil, err
	}
	shares, err := pie.Normalize(obs)
	if err != nil {
		return pie.Layout{}, nil, err
	}
	layout, err := chart.Layout(obs)
	if err != nil {
		return pie.Layout{}, nil, err
	}
	return layout, shares, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout pie.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := json.Marshal(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Render all formats
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.renderFormat(layout, format, opts)
		if err != nil {
			return nil, false, err
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, layout pie.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) renderFormat(layout pie.Layout, format string, opts Options) ([]byte, error) {
	svgOpts := opts.SVGOptions()
	switch format {
	case FormatSVG:
		return sink.RenderSVG(layout, svgOpts...), nil
	case FormatJSON:
		var jsonOpts []sink.JSONOption
		if opts.Title != "" {
			jsonOpts = append(jsonOpts, sink.WithJSONTitle(opts.Title))
		}
		return sink.RenderJSON(layout, jsonOpts...)
	case FormatPNG:
		return sink.RenderPNG(layout,
			sink.WithPNGSVGOptions(svgOpts...),
			sink.WithScale(opts.PNGScale))
	case FormatPDF:
		return sink.RenderPDF(layout, sink.WithPDFSVGOptions(svgOpts...))
	}
	return nil, ValidateFormat(format)
}

func loadFile(path string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.LoadCSV(path)
	case ".json":
		return dataset.LoadJSON(path)
	}
	return nil, errors.New(errors.ErrCodeUnsupported,
		"unsupported input file %q (must be .csv or .json)", path)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
