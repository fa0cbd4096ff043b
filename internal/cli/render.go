package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple formats)
	formats   []string // output formats: "svg", "json", "pdf", "png"
	category  string   // dataset column holding category names
	value     string   // dataset column holding numeric values
	width     float64  // chart width in pixels
	height    float64  // chart height in pixels
	noLabels  bool     // suppress percentage labels
	legend    bool     // append a legend below the ring
	title     string   // chart title
	palette   []string // hex colors without '#', assigned in order
	pngScale  float64  // raster scale factor for PNG output
	config    string   // optional TOML config file
	mongoURI  string   // MongoDB connection string
	mongoDB   string   // MongoDB database name
	mongoColl string   // MongoDB collection name
	noCache   bool     // disable the artifact cache
	refresh   bool     // bypass cached datasets and artifacts
}

// renderCommand creates the render command for generating pie charts.
// It reads a CSV or JSON dataset (or a MongoDB collection with --mongo-uri)
// and writes one file per requested format.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		pngScale: 2.0,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a dataset as a pie chart",
		Long: `Render reads category/value observations from a CSV or JSON file
(or a MongoDB collection when --mongo-uri is set) and writes the chart in
the requested formats. With no --output the SVG is written next to the
input file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			var input string
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" && opts.mongoURI == "" {
				return fmt.Errorf("a dataset file or --mongo-uri is required")
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.category, "category", "", "category column name (default \"category\")")
	cmd.Flags().StringVar(&opts.value, "value", "", "value column name (default \"value\")")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "chart width in pixels (default 600)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "chart height in pixels (default 400)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "suppress percentage labels")
	cmd.Flags().BoolVar(&opts.legend, "legend", false, "append a legend below the ring")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().StringSliceVar(&opts.palette, "palette", nil, "hex colors without '#', assigned in category order")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", 2.0, "raster scale factor for PNG output")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database name")
	cmd.Flags().StringVar(&opts.mongoColl, "mongo-collection", "", "MongoDB collection name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached datasets and artifacts")

	return cmd
}

// pipelineOptions translates CLI flags (plus an optional config file) into
// pipeline options.
func (opts *renderOpts) pipelineOptions(input string) (pipeline.Options, error) {
	p := pipeline.Options{
		Input:     input,
		MongoURI:  opts.mongoURI,
		MongoDB:   opts.mongoDB,
		MongoColl: opts.mongoColl,
		Category:  opts.category,
		Value:     opts.value,
		Refresh:   opts.refresh,
		Width:     opts.width,
		Height:    opts.height,
		NoLabels:  opts.noLabels,
		Palette:   opts.palette,
		Formats:   opts.formats,
		Legend:    opts.legend,
		Title:     opts.title,
		PNGScale:  opts.pngScale,
	}

	if opts.config != "" {
		cfg, err := loadConfig(opts.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		cfg.apply(&p)
	}
	return p, nil
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	p, err := opts.pipelineOptions(input)
	if err != nil {
		return err
	}
	p.Logger = logger

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, p)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d slices", result.Stats.SliceCount))

	if len(opts.formats) == 1 {
		return writeSingle(result, opts.formats[0], input, opts)
	}
	return writeMultiple(result, input, opts)
}

// writeSingle writes a single format to a single output file.
// If opts.output is empty, the output path is derived from the input file name.
func writeSingle(result *pipeline.Result, format, input string, opts *renderOpts) error {
	outputPath := opts.output
	if outputPath == "" {
		outputPath = basePath("", input) + "." + format
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(result.Artifacts[format]); err != nil {
		return err
	}

	printSuccess("Generated %s", outputPath)
	printStats(result.Stats.SliceCount, result.CacheInfo.RenderHit)
	return nil
}

// writeMultiple writes all requested formats to separate files derived from
// the base path.
func writeMultiple(result *pipeline.Result, input string, opts *renderOpts) error {
	base := basePath(opts.output, input)

	for _, format := range opts.formats {
		path := fmt.Sprintf("%s.%s", base, format)
		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(result.Artifacts[format]); err != nil {
			out.Close()
			return err
		}
		out.Close()
		printFile(path)
	}
	printStats(result.Stats.SliceCount, result.CacheInfo.RenderHit)
	return nil
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "json": true, "pdf": true, "png": true}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
// This is used when generating multiple files (e.g., chart.svg, chart.png).
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "chart"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// nopCloser wraps a writer with a no-op Close, used for stdout output.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
