package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "molscope %s\ncommit:  %s\nbuilt:   %s\ngo:      %s\n",
				Version, GitCommit, BuildDate, runtime.Version())
			return nil
		},
	}
}
