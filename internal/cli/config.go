package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pgrunwald/svgpie/pkg/errors"
	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

// Config is the optional TOML configuration accepted by the render and
// preview commands via --config. Flags take precedence over config values.
//
// Example:
//
//	[chart]
//	width = 600
//	height = 400
//	legend = true
//	title = "Browser share"
//	palette = ["4477aa", "ee6677", "228833"]
//
//	[chart.colors]
//	firefox = "ff9933"
//
//	[data]
//	category = "browser"
//	value = "users"
type Config struct {
	Chart ChartConfig `toml:"chart"`
	Data  DataConfig  `toml:"data"`
}

// ChartConfig holds chart appearance settings.
type ChartConfig struct {
	Width   float64           `toml:"width"`
	Height  float64           `toml:"height"`
	Labels  *bool             `toml:"labels"` // nil means keep the default (on)
	Legend  bool              `toml:"legend"`
	Title   string            `toml:"title"`
	Palette []string          `toml:"palette"`
	Colors  map[string]string `toml:"colors"`
}

// DataConfig holds dataset column settings.
type DataConfig struct {
	Category string `toml:"category"`
	Value    string `toml:"value"`
}

// loadConfig reads and validates a TOML config file.
func loadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"unknown key %q in %s", undecoded[0].String(), path)
	}
	if len(cfg.Chart.Palette) > 0 {
		if err := errors.ValidatePalette(cfg.Chart.Palette); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// apply copies config values into opts without overriding fields already set
// by flags.
func (cfg *Config) apply(opts *pipeline.Options) {
	if opts.Width == 0 {
		opts.Width = cfg.Chart.Width
	}
	if opts.Height == 0 {
		opts.Height = cfg.Chart.Height
	}
	if cfg.Chart.Labels != nil && !opts.NoLabels {
		opts.NoLabels = !*cfg.Chart.Labels
	}
	if !opts.Legend {
		opts.Legend = cfg.Chart.Legend
	}
	if opts.Title == "" {
		opts.Title = cfg.Chart.Title
	}
	if len(opts.Palette) == 0 {
		opts.Palette = cfg.Chart.Palette
	}
	if len(opts.Colors) == 0 {
		opts.Colors = cfg.Chart.Colors
	}
	if opts.Category == "" {
		opts.Category = cfg.Data.Category
	}
	if opts.Value == "" {
		opts.Value = cfg.Data.Value
	}
}
