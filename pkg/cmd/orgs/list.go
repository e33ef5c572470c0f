package orgs

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/snyk-labs/orgscale/internal/errors"
	"github.com/snyk-labs/orgscale/internal/orgs"
	"github.com/snyk-labs/orgscale/internal/paths"
	"github.com/snyk-labs/orgscale/internal/style"
	"github.com/snyk-labs/orgscale/pkg/cmd/factory"
)

const previewCount = 3

// NewCmdOrgsList creates the command that pages through every organization of
// a group and writes the aggregated listing to a JSON file
func NewCmdOrgsList(f *factory.Factory) *cobra.Command {
	var groupID, output, apiToken string
	var perPage int

	cmd := cobra.Command{
		DisableFlagsInUseLine: true,
		Use:                   "list",
		Args:                  cobra.NoArgs,
		Short:                 "List all organizations in a group and save them to a file",
		Long: heredoc.Doc(`
			List all organizations in a Snyk group, following pagination until the
			group is exhausted, and save the result to a JSON file.

			An organization named "<group name>-default" is the placeholder the
			platform creates with the group. It is excluded from the active list and
			recorded separately so it never receives a broker connection.
		`),
		Example: heredoc.Doc(`
			# list a group's organizations into snyk_orgs_for_<group name>.json
			$ orgscale orgs list --group-id 0fe5f482-4b20-4a8e-b973-b13efd3b9ee1

			# choose the output file
			$ orgscale orgs list --group-id 0fe5f482-4b20-4a8e-b973-b13efd3b9ee1 --output my-group.json
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(groupID); err != nil {
				return errors.NewConfigurationError(err, fmt.Sprintf("--group-id %q is not a valid UUID", groupID))
			}

			token, err := f.Config.Token(apiToken)
			if err != nil {
				return err
			}

			client := f.RestAPIClient(token)

			fmt.Fprintf(cmd.OutOrStdout(), "Fetching organizations from group %s\n", groupID)
			group, err := orgs.Collect(cmd.Context(), client, groupID, perPage, func(page, fetched int) {
				fmt.Fprintf(cmd.OutOrStdout(), "  page %d: %d organizations\n", page, fetched)
			})
			if err != nil {
				return err
			}

			// some group responses omit the name
			if group.Name == "" {
				group.Name = group.ID
			}

			kept, excluded := orgs.Partition(group.Orgs, group.Name)
			result := orgs.BuildResult(group, kept, excluded)

			if output == "" {
				output = orgs.DefaultFilename(group.Name)
			}
			if err := paths.RequireExt(output, ".json"); err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			target, err := paths.Resolve(output, cwd)
			if err != nil {
				return err
			}

			if err := orgs.WriteResult(f.FS, target, result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, style.Render(style.Bold, "Summary:"))
			fmt.Fprintf(out, "  Group: %s (%s)\n", group.Name, group.ID)
			fmt.Fprintf(out, "  Organizations: %d", len(kept))
			if len(excluded) > 0 {
				fmt.Fprintf(out, " (%d excluded)", len(excluded))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Output file: %s\n", target)

			for i, org := range kept {
				if i == previewCount {
					fmt.Fprintf(out, "  ... and %d more\n", len(kept)-previewCount)
					break
				}
				fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, org.Name, org.ID)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group-id", "", "Snyk group ID to fetch organizations from")
	cmd.Flags().StringVar(&output, "output", "", "Output JSON file path (default: snyk_orgs_for_<group name>.json)")
	cmd.Flags().StringVar(&apiToken, "api-token", "", "Snyk API token (default: $SNYK_TOKEN)")
	cmd.Flags().IntVar(&perPage, "per-page", orgs.DefaultPerPage, "Number of organizations to fetch per API call")
	_ = cmd.MarkFlagRequired("group-id")

	return &cmd
}
