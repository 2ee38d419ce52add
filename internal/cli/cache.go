package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(defaultCacheDir())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached render results",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := defaultCacheDir()
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			printSuccess("Cleared %s", dir)
			return nil
		},
	})

	return cmd
}
