// Package pkg provides the core libraries for picplan layout planning.
//
// # Overview
//
// picplan computes image layout geometry: given source dimensions and a
// declarative command sequence (orient, crop/region, constrain, pad, output
// limits) it produces every dimension, crop rectangle, placement offset, and
// codec-alignment fact a pixel engine needs — without touching a single
// pixel. The pkg directory is organized into three areas:
//
//  1. Geometry core - pure layout computation (geom, orient, layout, plan, codec)
//  2. Surfaces - query grammar, presets, SVG diagrams (query, preset, svg)
//  3. Infrastructure - caching, orchestration, errors (cache, pipeline, errors)
//
// # Architecture
//
// The typical data flow:
//
//	query string / preset
//	         ↓
//	    [query] package (parse → instructions → pipeline)
//	         ↓
//	    [plan] package (Pipeline.Plan → IdealLayout + DecoderRequest)
//	         ↓
//	    decoder runs (external)
//	         ↓
//	    [plan] package (IdealLayout.Finalize → LayoutPlan)
//	         ↓
//	    pixel engine / [codec] layout / [svg] diagram
//
// # Quick Start
//
// Plan a thumbnail crop:
//
//	import (
//	    "github.com/matzehuels/picplan/pkg/plan"
//	)
//
//	ideal, req, err := plan.New(4000, 3000).
//	    AutoOrient(6).
//	    FitCrop(500, 500).
//	    Plan()
//	if err != nil {
//	    // source or target dimensions were invalid
//	}
//
//	// ... run the decoder with req, then reconcile:
//	lp := ideal.Finalize(req, plan.FullDecode(4000, 3000))
//
// # Main Packages
//
// ## Geometry Core
//
// [geom] - Integer geometry primitives: Size, Rect, Offset, clamping.
//
// [orient] - The 8-element D4 orientation group with EXIF mapping,
// composition, inversion, and display↔source coordinate transforms.
//
// [layout] - The constraint solver (eight modes), source crops, region
// viewports (unified crop-and-pad), canvas colors, gravity, and output
// limits (max → min → align).
//
// [plan] - Command evaluation: the fixed-order Pipeline builder, the
// sequential evaluator, two-phase decoder negotiation, and secondary-plane
// derivation for gain maps and similar auxiliary planes.
//
// [codec] - Per-plane 8×8 block geometry and MCU grids for 4:4:4, 4:2:2,
// and 4:2:0 subsampling.
//
// ## Surfaces
//
// [query] - URL-style instruction grammar (w=800&h=600&mode=crop) with
// lenient parsing, warnings, and conversion to pipelines.
//
// [preset] - Named instruction sets loaded from picplan.toml.
//
// [svg] - Step-diagram rendering of a computed plan.
//
// ## Infrastructure
//
// [pipeline] - The parse → plan → render pipeline shared by the CLI and the
// HTTP service.
//
// [cache] - Response cache with memory, file, null, and Redis backends.
//
// [errors] - Coded errors for the CLI/HTTP surface.
//
// [buildinfo] - Build-time version information.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/plan/...     # Specific package
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/geom
// [orient]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/orient
// [layout]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/layout
// [plan]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/plan
// [codec]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/codec
// [query]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/query
// [preset]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/preset
// [svg]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/svg
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/picplan/pkg/buildinfo
package pkg
