package broker

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/snyk-labs/orgscale/pkg/cmd/factory"
)

// NewCmdBroker groups the Universal Broker subcommands
func NewCmdBroker(f *factory.Factory) *cobra.Command {
	cmd := cobra.Command{
		Use:   "broker <command>",
		Short: "Work with Universal Broker connections",
		Long: heredoc.Doc(`
			Work with Universal Broker connections.
		`),
	}

	cmd.AddCommand(NewCmdBrokerScale(f))

	return &cmd
}
