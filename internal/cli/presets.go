package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	var presetFile string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List presets from the preset file",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := loadPresets(presetFile)
			if err != nil {
				return err
			}
			if presets == nil || len(presets.Presets) == 0 {
				printInfo("No preset file found (looked for picplan.toml)")
				return nil
			}

			fmt.Println(styleTitle.Render("Presets"))
			for _, name := range presets.Names() {
				p, _ := presets.Get(name)
				fmt.Printf("  %s %s\n", styleHighlight.Render(fmt.Sprintf("%-14s", name)), styleValue.Render(p.Query))
				if p.Description != "" {
					printDetail("%s", p.Description)
				}
				if lim := p.Limits(); !lim.IsZero() {
					if lim.Max != nil {
						printDetail("max %d×%d", lim.Max.W, lim.Max.H)
					}
					if lim.Min != nil {
						printDetail("min %d×%d", lim.Min.W, lim.Min.H)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&presetFile, "presets-file", "", "preset file path (default picplan.toml)")
	return cmd
}
