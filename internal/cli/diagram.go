package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/picplan/pkg/pipeline"
)

func newDiagramCmd() *cobra.Command {
	var (
		size       string
		exif       int
		presetName string
		presetFile string
		output     string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "diagram [query]",
		Short: "Render a layout plan as an SVG step diagram",
		Long: `Render the computed plan as an SVG showing each transformation panel:
source, crop, orient, resize, canvas, and edge extension.`,
		Example: `  picplan diagram --size 4000x3000 "w=800&h=600&mode=crop" -o plan.svg
  picplan diagram --size 1920x1080 --exif 6 "w=500&mode=max"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			w, h, err := parseSize(size)
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

			c := openCLICache()
			defer c.Close()

			runner := pipeline.NewRunner(c, logger)
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				SourceW: w, SourceH: h,
				EXIF:      exif,
				Query:     q,
				Preset:    presetName,
				Presets:   presets,
				Formats:   []string{pipeline.FormatSVG},
				SkipCache: noCache,
			})
			if err != nil {
				return err
			}

			data := result.Artifacts[pipeline.FormatSVG]
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("Wrote %s (%d bytes)", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&size, "size", "s", "", "source dimensions as WxH (required)")
	cmd.Flags().IntVar(&exif, "exif", 0, "EXIF orientation tag (1-8)")
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "preset name from the preset file")
	cmd.Flags().StringVar(&presetFile, "presets-file", "", "preset file path (default picplan.toml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the render cache")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}
