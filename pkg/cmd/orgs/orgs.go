package orgs

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/snyk-labs/orgscale/pkg/cmd/factory"
)

// NewCmdOrgs groups the organization subcommands
func NewCmdOrgs(f *factory.Factory) *cobra.Command {
	cmd := cobra.Command{
		Use:   "orgs <command>",
		Short: "Work with the organizations of a Snyk group",
		Long: heredoc.Doc(`
			Work with the organizations of a Snyk group.
		`),
	}

	cmd.AddCommand(NewCmdOrgsList(f))

	return &cmd
}
