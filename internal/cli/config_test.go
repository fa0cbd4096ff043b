package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pgrunwald/svgpie/pkg/errors"
	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svgpie.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[chart]
width = 500
height = 300
labels = false
legend = true
title = "Browser share"
palette = ["4477aa", "ee6677"]

[chart.colors]
firefox = "ff9933"

[data]
category = "browser"
value = "users"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Chart.Width != 500 {
		t.Errorf("Width = %v, want 500", cfg.Chart.Width)
	}
	if cfg.Chart.Labels == nil || *cfg.Chart.Labels {
		t.Error("Labels should be false")
	}
	if !cfg.Chart.Legend {
		t.Error("Legend should be true")
	}
	if cfg.Chart.Colors["firefox"] != "ff9933" {
		t.Errorf("Colors[firefox] = %q, want %q", cfg.Chart.Colors["firefox"], "ff9933")
	}
	if cfg.Data.Category != "browser" {
		t.Errorf("Category = %q, want %q", cfg.Data.Category, "browser")
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file should fail with FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[chart]
wdith = 500
`)
	_, err := loadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key should fail with INVALID_CONFIG, got %v", err)
	}
}

func TestLoadConfigBadPalette(t *testing.T) {
	path := writeConfig(t, `
[chart]
palette = ["not-a-color"]
`)
	_, err := loadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("bad palette should fail with INVALID_PALETTE, got %v", err)
	}
}

func TestConfigApplyPrecedence(t *testing.T) {
	labels := false
	cfg := &Config{
		Chart: ChartConfig{
			Width:  500,
			Height: 300,
			Labels: &labels,
			Title:  "from config",
		},
		Data: DataConfig{Category: "browser", Value: "users"},
	}

	// Flags already set width and title; config must not override them.
	opts := pipeline.Options{
		Width: 800,
		Title: "from flag",
	}
	cfg.apply(&opts)

	if opts.Width != 800 {
		t.Errorf("Width = %v, flag value should win", opts.Width)
	}
	if opts.Title != "from flag" {
		t.Errorf("Title = %q, flag value should win", opts.Title)
	}
	if opts.Height != 300 {
		t.Errorf("Height = %v, want config value 300", opts.Height)
	}
	if !opts.NoLabels {
		t.Error("labels = false in config should set NoLabels")
	}
	if opts.Category != "browser" || opts.Value != "users" {
		t.Errorf("columns = %q/%q, want browser/users", opts.Category, opts.Value)
	}
}
