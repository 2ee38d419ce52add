package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/picplan/pkg/cache"
	"github.com/matzehuels/picplan/pkg/codec"
	"github.com/matzehuels/picplan/pkg/errors"
	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/pipeline"
	"github.com/matzehuels/picplan/pkg/preset"
)

// parseSize parses "WxH" (also accepting "W×H").
func parseSize(s string) (int, int, error) {
	s = strings.ReplaceAll(strings.ToLower(s), "×", "x")
	wStr, hStr, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidDimensions, "size must be WxH, got %q", s)
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(wStr))
	h, err2 := strconv.Atoi(strings.TrimSpace(hStr))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidDimensions, "size must be positive WxH, got %q", s)
	}
	return w, h, nil
}

// parseSubsampling maps flag values to codec schemes.
func parseSubsampling(s string) (*codec.Subsampling, error) {
	if s == "" {
		return nil, nil
	}
	var sub codec.Subsampling
	switch s {
	case "444", "4:4:4":
		sub = codec.Subsampling444
	case "422", "4:2:2":
		sub = codec.Subsampling422
	case "420", "4:2:0":
		sub = codec.Subsampling420
	default:
		return nil, errors.New(errors.ErrCodeInvalidQuery, "unknown subsampling %q", s)
	}
	return &sub, nil
}

// loadPresets loads the preset file when one is configured or present.
func loadPresets(path string) (*preset.Set, error) {
	if path != "" {
		return preset.Load(path)
	}
	if _, err := os.Stat(preset.DefaultFile); err == nil {
		return preset.Load(preset.DefaultFile)
	}
	return nil, nil
}

// defaultCacheDir is where CLI render results are cached.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "picplan-cache")
	}
	return filepath.Join(base, "picplan")
}

// openCLICache opens the file cache used by CLI commands; failures degrade
// to no caching.
func openCLICache() cache.Cache {
	c, err := cache.NewFileCache(defaultCacheDir())
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

func newPlanCmd() *cobra.Command {
	var (
		size        string
		exif        int
		presetName  string
		presetFile  string
		asJSON      bool
		subsampling string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "plan [query]",
		Short: "Compute a layout plan for a source size and query string",
		Long: `Compute a layout plan from resize instructions.

The query uses URL syntax: w=800&h=600&mode=crop&scale=both. With --preset,
the named preset from the preset file expands first and the query layers on
top of it.`,
		Example: `  picplan plan --size 4000x3000 "w=800&h=600&mode=crop"
  picplan plan --size 1920x1080 --exif 6 "w=500&h=500&mode=crop&scale=both"
  picplan plan --size 3000x2000 --preset thumbnail --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			w, h, err := parseSize(size)
			if err != nil {
				return err
			}
			sub, err := parseSubsampling(subsampling)
			if err != nil {
				return err
			}
			presets, err := loadPresets(presetFile)
			if err != nil {
				return err
			}
			q := ""
			if len(args) == 1 {
				q = args[0]
			}

			formats := []string{}
			if asJSON {
				formats = append(formats, pipeline.FormatJSON)
			}

			c := openCLICache()
			defer c.Close()

			start := time.Now()
			runner := pipeline.NewRunner(c, logger)
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				SourceW: w, SourceH: h,
				EXIF:        exif,
				Query:       q,
				Preset:      presetName,
				Presets:     presets,
				Subsampling: sub,
				Formats:     formats,
				SkipCache:   noCache,
			})
			if err != nil {
				return err
			}
			logger.Info("planned",
				"result", pipeline.Describe(result.Plan),
				"elapsed", time.Since(start).Round(time.Millisecond))

			if asJSON {
				_, err := cmd.OutOrStdout().Write(result.Artifacts[pipeline.FormatJSON])
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&size, "size", "s", "", "source dimensions as WxH (required)")
	cmd.Flags().IntVar(&exif, "exif", 0, "EXIF orientation tag (1-8)")
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "preset name from the preset file")
	cmd.Flags().StringVar(&presetFile, "presets-file", "", "preset file path (default picplan.toml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full plan as JSON")
	cmd.Flags().StringVar(&subsampling, "subsampling", "", "include codec layout for 444, 422, or 420")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the render cache")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

// printResult renders the human-readable plan summary.
func printResult(result *pipeline.Result) {
	ideal, lp := result.Ideal, result.Plan

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	fmt.Println(styleTitle.Render("Layout"))
	src := ideal.SourceSize()
	fmt.Println(kv("source", fmt.Sprintf("%d×%d", src.W, src.H)))
	if !ideal.Orientation.IsIdentity() {
		fmt.Println(kv("orientation", ideal.Orientation.String()))
	}
	if c := ideal.SourceCrop; c != nil {
		fmt.Println(kv("source crop", fmt.Sprintf("%d×%d @ (%d, %d)", c.W, c.H, c.X, c.Y)))
	}
	fmt.Println(kv("resize to", fmt.Sprintf("%d×%d", lp.ResizeTo.W, lp.ResizeTo.H)))
	fmt.Println(kv("canvas", fmt.Sprintf("%d×%d", lp.Canvas.W, lp.Canvas.H)))
	if lp.Placement != (geom.Offset{}) {
		fmt.Println(kv("placement", fmt.Sprintf("(%d, %d)", lp.Placement.X, lp.Placement.Y)))
	}
	if cs := lp.ContentSize; cs != nil {
		fmt.Println(kv("content size", fmt.Sprintf("%d×%d", cs.W, cs.H)))
	}

	fmt.Println(styleTitle.Render("Decoder request"))
	if c := result.Request.Crop; c != nil {
		fmt.Println(kv("crop hint", fmt.Sprintf("%d×%d @ (%d, %d)", c.W, c.H, c.X, c.Y)))
	}
	fmt.Println(kv("target hint", fmt.Sprintf("%d×%d", result.Request.TargetSize.W, result.Request.TargetSize.H)))
	fmt.Println(kv("orientation", result.Request.Orientation.String()))

	if cl := result.Codec; cl != nil {
		fmt.Println(styleTitle.Render("Codec layout"))
		fmt.Println(kv("subsampling", cl.Subsampling.String()))
		fmt.Println(kv("MCU grid", fmt.Sprintf("%d×%d (%d×%d px)", cl.MCUCols, cl.MCURows, cl.MCUSize.W, cl.MCUSize.H)))
		fmt.Println(kv("luma blocks", fmt.Sprintf("%d×%d", cl.Luma.BlocksW, cl.Luma.BlocksH)))
		fmt.Println(kv("chroma blocks", fmt.Sprintf("%d×%d", cl.Chroma.BlocksW, cl.Chroma.BlocksH)))
	}

	printSuccess("%s", pipeline.Describe(lp))
}
