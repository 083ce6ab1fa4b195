package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolScope/internal/application/visualization"
)

// NewPlotCmd creates the plot command.
func NewPlotCmd() *cobra.Command {
	var (
		out           string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Render the clogP / SA score scatter of FILE as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			tbl, err := loadTable(cmd, cliCtx, args[0])
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cliCtx.Config.Plot.StaticWidth
			}
			if height <= 0 {
				height = cliCtx.Config.Plot.StaticHeight
			}

			png, err := visualization.RenderScatterPNG(tbl, width, height)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d molecules)\n", out, len(tbl))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path (required)")
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels (default from config)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
