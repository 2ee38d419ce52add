// Package pipeline provides the parse → plan → render pipeline shared by the
// CLI and the HTTP service.
//
// Centralizing the flow keeps every entry point consistent: a query string
// (optionally expanded from a preset) is parsed into instructions, converted
// into a layout pipeline, planned against the source dimensions, finalized
// against a decoder offer, and rendered into the requested artifacts.
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    SourceW: 4000, SourceH: 3000,
//	    Query:   "w=800&h=600&mode=crop",
//	    Formats: []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	})
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/picplan/pkg/cache"
	"github.com/matzehuels/picplan/pkg/codec"
	"github.com/matzehuels/picplan/pkg/errors"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/plan"
	"github.com/matzehuels/picplan/pkg/preset"
	"github.com/matzehuels/picplan/pkg/query"
	"github.com/matzehuels/picplan/pkg/svg"
)

// Artifact format identifiers.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// DefaultCacheTTL bounds how long rendered artifacts stay cached.
const DefaultCacheTTL = 24 * time.Hour

// Options parameterize one pipeline execution.
type Options struct {
	// SourceW and SourceH are the pre-orientation source dimensions.
	SourceW, SourceH int
	// EXIF is the source orientation tag (1–8), 0 when unknown.
	EXIF int
	// Query is the instruction string.
	Query string
	// Preset optionally names a preset from Presets; Query then layers on
	// top of it.
	Preset  string
	Presets *preset.Set
	// Offer is what the decoder reported; nil plans against a full decode.
	Offer *plan.DecoderOffer
	// Subsampling selects the codec-layout scheme for the result;
	// nil skips codec layout.
	Subsampling *codec.Subsampling
	// Formats lists the artifacts to render (FormatJSON, FormatSVG).
	Formats []string
	// SkipCache bypasses artifact caching for this execution.
	SkipCache bool
}

// Result is a completed pipeline execution.
type Result struct {
	Ideal    plan.IdealLayout   `json:"ideal"`
	Request  plan.DecoderRequest `json:"decoder_request"`
	Plan     plan.LayoutPlan    `json:"plan"`
	Codec    *codec.CodecLayout `json:"codec,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	// Artifacts maps format → rendered bytes.
	Artifacts map[string][]byte `json:"-"`
	// CacheHits lists formats served from cache.
	CacheHits []string `json:"-"`
}

// Runner executes pipelines with a shared cache and logger.
type Runner struct {
	cache  cache.Cache
	logger *log.Logger
	ttl    time.Duration
}

// NewRunner creates a pipeline runner. A nil cache disables caching; a nil
// logger discards logs.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{cache: c, logger: logger, ttl: DefaultCacheTTL}
}

// Execute runs the full pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.SourceW <= 0 || opts.SourceH <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimensions,
			"source dimensions must be positive, got %d×%d", opts.SourceW, opts.SourceH)
	}

	q := opts.Query
	var limits layout.OutputLimits
	if opts.Preset != "" {
		if opts.Presets == nil {
			return nil, errors.New(errors.ErrCodePresetNotFound, "no preset file loaded")
		}
		p, err := opts.Presets.Get(opts.Preset)
		if err != nil {
			return nil, err
		}
		limits = p.Limits()
		q, err = opts.Presets.Expand(opts.Preset, opts.Query)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("expanded preset", "preset", opts.Preset, "query", q)
	}

	inst, warnings := query.Parse(q)
	pl, err := inst.ToPipeline(opts.SourceW, opts.SourceH, opts.EXIF)
	if err != nil {
		return nil, errors.FromLayout(err, "query %q", q)
	}
	if !limits.IsZero() {
		pl = pl.Limits(limits)
	}

	ideal, req, err := pl.Plan()
	if err != nil {
		return nil, errors.FromLayout(err, "planning %q", q)
	}

	offer := plan.FullDecode(opts.SourceW, opts.SourceH)
	if opts.Offer != nil {
		offer = *opts.Offer
	}
	lp := ideal.Finalize(req, offer)

	result := &Result{
		Ideal:     ideal,
		Request:   req,
		Plan:      lp,
		Artifacts: map[string][]byte{},
	}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	if opts.Subsampling != nil {
		cl := codec.LayoutFor(lp.Canvas, *opts.Subsampling)
		result.Codec = &cl
	}

	for _, format := range opts.Formats {
		if err := r.render(ctx, result, format, opts, q); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// render produces one artifact, consulting the cache first.
func (r *Runner) render(ctx context.Context, result *Result, format string, opts Options, q string) error {
	key := cache.RenderKey{
		Kind:    format,
		Query:   q,
		SourceW: opts.SourceW,
		SourceH: opts.SourceH,
		EXIF:    opts.EXIF,
		Variant: variantOf(opts),
	}.String()

	if !opts.SkipCache {
		if data, hit, err := r.cache.Get(ctx, key); err != nil {
			r.logger.Warn("cache get failed", "err", err)
		} else if hit {
			result.Artifacts[format] = data
			result.CacheHits = append(result.CacheHits, format)
			return nil
		}
	}

	var data []byte
	switch format {
	case FormatJSON:
		var err error
		data, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encoding result")
		}
	case FormatSVG:
		data = svg.Render(result.Ideal, result.Plan)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown format %q", format)
	}

	result.Artifacts[format] = data
	if !opts.SkipCache {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("cache set failed", "err", err)
		}
	}
	return nil
}

// variantOf folds the non-query inputs that alter a rendered artifact into
// the cache key.
func variantOf(opts Options) string {
	var b strings.Builder
	if opts.Offer != nil {
		fmt.Fprintf(&b, "offer=%+v", *opts.Offer)
	}
	if opts.Subsampling != nil {
		fmt.Fprintf(&b, "|sub=%v", *opts.Subsampling)
	}
	return b.String()
}

// Describe summarizes a plan in one line for logs and CLI output.
func Describe(lp plan.LayoutPlan) string {
	work := ""
	if lp.Trim != nil {
		work += fmt.Sprintf("trim %d×%d ", lp.Trim.W, lp.Trim.H)
	}
	if !lp.RemainingOrientation.IsIdentity() {
		work += lp.RemainingOrientation.String() + " "
	}
	if !lp.ResizeIsIdentity {
		work += fmt.Sprintf("resize %d×%d ", lp.ResizeTo.W, lp.ResizeTo.H)
	}
	if work == "" {
		work = "passthrough "
	}
	return fmt.Sprintf("%s→ canvas %d×%d @ (%d, %d)",
		work, lp.Canvas.W, lp.Canvas.H, lp.Placement.X, lp.Placement.Y)
}
