package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowexport/ipfixd/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version())
			return nil
		},
	}
}

func versionShort() string {
	return version.Short()
}
