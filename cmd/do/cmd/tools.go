package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/AKT74/shareulbi-backend/internal/config"
)

// ToolsCmd checks that the media binaries the server shells out to are installed.
func ToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Check ffmpeg, ffprobe and pdftoppm are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			var missing []string
			for _, bin := range []string{cfg.FFmpegPath, cfg.FFprobePath, cfg.PdftoppmPath} {
				path, err := exec.LookPath(bin)
				if err != nil {
					missing = append(missing, bin)
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", bin)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%s)\n", bin, path)
			}

			if len(missing) > 0 {
				return fmt.Errorf("missing required binaries: %v", missing)
			}
			return nil
		},
	}
}
