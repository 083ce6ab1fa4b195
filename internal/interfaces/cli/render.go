package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/depiction"
	"github.com/turtacn/MolScope/pkg/errors"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "render SMILES",
		Short: "Draw a 2D depiction of SMILES as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			mol, err := molecule.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "invalid SMILES")
			}
			if size <= 0 {
				size = cliCtx.Config.Depiction.ImageSize
			}

			r := depiction.NewRenderer(depiction.Options{
				Size:        size,
				MaxFontSize: cliCtx.Config.Depiction.FontSize,
			}, cliCtx.Logger)
			png, err := r.RenderPNG(cmd.Context(), mol)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d atoms, %d bytes)\n", out, len(mol.Atoms), len(png))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path (required)")
	cmd.Flags().IntVar(&size, "size", 0, "image edge length in pixels (default from config)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
