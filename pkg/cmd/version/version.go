package version

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags
var Version = "DEV"

// Format renders a version string for display
func Format(ver string) string {
	ver = strings.TrimPrefix(ver, "v")
	return fmt.Sprintf("orgscale version %s", ver)
}

// NewCmdVersion prints the CLI version
func NewCmdVersion(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of the CLI being used",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Format(version))
		},
	}
}
