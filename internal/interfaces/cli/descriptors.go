package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/turtacn/MolScope/internal/application/ingestion"
	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/pkg/errors"
)

// Output formats of the descriptors command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// NewDescriptorsCmd creates the descriptors command.
func NewDescriptorsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "descriptors FILE",
		Short: "Compute clogP and SA score for every SMILES in FILE (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			switch format {
			case FormatTable, FormatJSON, FormatCSV:
			default:
				return errors.Newf(errors.ErrCodeBadRequest, "unknown output format %q (table, json, csv)", format)
			}

			tbl, err := loadTable(cmd, cliCtx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case FormatJSON:
				return writeJSON(out, tbl)
			case FormatCSV:
				return writeCSV(out, tbl)
			default:
				_, err := fmt.Fprintln(out, renderRecords(tbl, colorEnabled(out, cliCtx.NoColor)))
				return err
			}
		},
	}
	cmd.Flags().StringVar(&format, "output", FormatTable, "output format: table|json|csv")
	return cmd
}

// loadTable ingests path with the same all-or-nothing rules as uploads.
func loadTable(cmd *cobra.Command, cliCtx *CLIContext, path string) (molecule.Table, error) {
	in, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	svc := ingestion.NewService(molecule.NewCalculator(cliCtx.Logger), nil, cliCtx.Logger)
	return svc.Ingest(cmd.Context(), in)
}

func renderRecords(tbl molecule.Table, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "SMILES", "Name", "clogP", "SA score"})
	for i, r := range tbl {
		tw.AppendRow(table.Row{i + 1, r.SMILES, r.Name, formatFloat(r.LogP), saText(r.SAScore, colorize)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d molecules", len(tbl))})
	return tw.Render()
}

// saText colours an SA score by difficulty: easy green, moderate yellow,
// hard red.
func saText(score float64, colorize bool) string {
	s := formatFloat(score)
	if !colorize {
		return s
	}
	var c *color.Color
	switch {
	case score <= 3:
		c = color.New(color.FgGreen)
	case score <= 6:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}
	c.EnableColor()
	return c.Sprint(s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

type recordsJSON struct {
	Count   int               `json:"count"`
	Records []molecule.Record `json:"records"`
}

func writeJSON(w io.Writer, tbl molecule.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recordsJSON{Count: len(tbl), Records: tbl})
}

func writeCSV(w io.Writer, tbl molecule.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"smiles", "name", "clogp", "sa_score"}); err != nil {
		return err
	}
	for _, r := range tbl {
		if err := cw.Write([]string{r.SMILES, r.Name, formatFloat(r.LogP), formatFloat(r.SAScore)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
