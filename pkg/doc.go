// Package pkg provides the core libraries for svgpie pie chart rendering.
//
// # Overview
//
// svgpie turns category/value observations into pie charts drawn with SVG
// circle strokes: each slice is a dash on a thick circle outline, so the
// whole chart is a handful of <circle> and <text> elements. The pkg
// directory is organized into four main areas:
//
//  1. [chart] - Domain logic (normalization, slice geometry, palettes, sinks)
//  2. [dataset] - Input handling (CSV, JSON, MongoDB collections)
//  3. [cache] - Artifact and dataset caching (file, redis, null backends)
//  4. [pipeline] - Orchestration (load → layout → render)
//
// # Architecture
//
// The typical data flow through svgpie:
//
//	CSV / JSON / MongoDB
//	         ↓
//	dataset.Dataset ── Observations ──→ pie.Normalize
//	         ↓
//	pie.BuildLayout (stroke-dash geometry, label rotation)
//	         ↓
//	sink.RenderSVG / RenderJSON / RenderPNG / RenderPDF
//
// The pipeline package ties the stages together with caching and
// observability hooks; the CLI and HTTP API are thin layers on top of it.
package pkg
