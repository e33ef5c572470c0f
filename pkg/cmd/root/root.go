// Package root assembles the orgscale command tree
package root

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	brokerCmd "github.com/snyk-labs/orgscale/pkg/cmd/broker"
	"github.com/snyk-labs/orgscale/pkg/cmd/factory"
	orgsCmd "github.com/snyk-labs/orgscale/pkg/cmd/orgs"
	versionCmd "github.com/snyk-labs/orgscale/pkg/cmd/version"
)

// NewCmdRoot builds the root command. The debug flag is read before the
// factory is built so the API clients it creates can dump HTTP traffic.
func NewCmdRoot(version string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "orgscale <command> <subcommand> [flags]",
		Short: "Scale Universal Broker connections across a Snyk group",
		Long: heredoc.Doc(`
			List the organizations of a Snyk group and attach them to a Universal
			Broker connection in batch.
		`),
		Example: heredoc.Doc(`
			$ orgscale orgs list --group-id <group-id>
			$ orgscale broker scale --json-file snyk_orgs_for_my_group.json --connection-id <id> --integration-id <id> --integration-type github
		`),
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show every API request and response")

	f := factory.New(version)
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		*f = *factory.New(version, factory.WithDebug(debug))
	}

	cmd.AddCommand(orgsCmd.NewCmdOrgs(f))
	cmd.AddCommand(brokerCmd.NewCmdBroker(f))
	cmd.AddCommand(versionCmd.NewCmdVersion(version))

	return cmd
}
