package broker

import (
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/snyk-labs/orgscale/internal/broker"
	"github.com/snyk-labs/orgscale/internal/errors"
	"github.com/snyk-labs/orgscale/internal/paths"
	"github.com/snyk-labs/orgscale/internal/style"
	"github.com/snyk-labs/orgscale/pkg/cmd/factory"
)

const defaultLogFile = "connection_log.json"

// NewCmdBrokerScale creates the command that connects every organization from
// a listing file to one Universal Broker connection
func NewCmdBrokerScale(f *factory.Factory) *cobra.Command {
	var jsonFile, connectionID, integrationID, integrationType, tenantID, apiToken, outputLog string
	var delay float64

	cmd := cobra.Command{
		DisableFlagsInUseLine: true,
		Use:                   "scale",
		Args:                  cobra.NoArgs,
		Short:                 "Connect organizations from a file to a Universal Broker connection",
		Long: heredoc.Doc(`
			Read the organizations file produced by "orgs list" and attach every
			organization to the given Universal Broker connection, one API call at a
			time with a fixed delay between calls.

			A failed attempt is recorded in the connection log and the batch moves on
			to the next organization; the run exits 0 as long as the batch itself
			completes. Organizations the listing excluded are never attempted.
		`),
		Example: heredoc.Doc(`
			# connect every organization in the file to a GitHub broker connection
			$ orgscale broker scale \
			    --json-file snyk_orgs_for_my_group.json \
			    --connection-id 1beb8d27-5d07-42cc-97e8-08b0d3d2fa42 \
			    --integration-id 9a3e8d10-3b0f-4584-8ff6-070b9506dc67 \
			    --integration-type github

			# slow down for a strict rate limit and keep the full HTTP exchange
			$ orgscale --debug broker scale --json-file orgs.json --delay 2 ...
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			for flag, value := range map[string]string{
				"--connection-id":  connectionID,
				"--integration-id": integrationID,
			} {
				if _, err := uuid.Parse(value); err != nil {
					return errors.NewConfigurationError(err, fmt.Sprintf("%s %q is not a valid UUID", flag, value))
				}
			}

			token, err := f.Config.Token(apiToken)
			if err != nil {
				return err
			}
			tenant, err := f.Config.TenantID(tenantID)
			if err != nil {
				return err
			}

			// both paths are rejected before any network call happens
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := paths.RequireExt(jsonFile, ".json"); err != nil {
				return err
			}
			inputPath, err := paths.Resolve(jsonFile, cwd)
			if err != nil {
				return err
			}
			if outputLog == "" {
				outputLog = defaultLogFile
			}
			if err := paths.RequireExt(outputLog, ".json", ".log"); err != nil {
				return err
			}
			logPath, err := paths.Resolve(outputLog, cwd)
			if err != nil {
				return err
			}

			input, err := broker.LoadOrganizations(f.FS, inputPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(input.Organizations) == 0 {
				fmt.Fprintln(out, "No organizations found in the input file.")
				return nil
			}

			total := len(input.Organizations)
			fmt.Fprintf(out, "Connecting %d organizations to broker connection %s\n", total, connectionID)
			fmt.Fprintf(out, "Tenant: %s, delay between calls: %.1fs\n\n", tenant, delay)

			client := f.RestAPIClient(token)
			log, err := broker.Run(cmd.Context(), client, input.Organizations, broker.Options{
				TenantID:        tenant,
				ConnectionID:    connectionID,
				IntegrationID:   integrationID,
				IntegrationType: integrationType,
				Delay:           time.Duration(delay * float64(time.Second)),
				Progress: func(i, total int, result broker.ConnectionResult) {
					if result.Success {
						fmt.Fprintf(out, "[%d/%d] %s %s (%s)\n", i, total,
							style.Render(style.Success, "✅ connected"), result.OrgName, result.OrgID)
					} else {
						fmt.Fprintf(out, "[%d/%d] %s %s: %s\n", i, total,
							style.Render(style.Failure, "❌ failed"), result.OrgName, result.Error)
					}
				},
			})
			if err != nil {
				return err
			}

			log.ExcludedOrganizations = input.Excluded

			if err := broker.WriteLog(f.FS, logPath, log); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, style.Render(style.Bold, "Connection summary:"))
			fmt.Fprintf(out, "  Total organizations: %d\n", log.Summary.TotalOrganizations)
			fmt.Fprintf(out, "  Successful: %d\n", log.Summary.SuccessfulConnections)
			fmt.Fprintf(out, "  Failed: %d\n", log.Summary.FailedConnections)
			fmt.Fprintf(out, "  Success rate: %.1f%%\n", log.Summary.SuccessRate)
			fmt.Fprintf(out, "  Log file: %s\n", logPath)

			if log.Summary.FailedConnections > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Failed organizations:")
				for _, result := range log.Results {
					if !result.Success {
						fmt.Fprintf(out, "  - %s (%s): %s\n", result.OrgName, result.OrgID, result.Error)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&jsonFile, "json-file", "", "Path to the JSON file containing organizations")
	cmd.Flags().StringVar(&connectionID, "connection-id", "", "Universal Broker connection ID")
	cmd.Flags().StringVar(&integrationID, "integration-id", "", "Integration ID for the broker connection")
	cmd.Flags().StringVar(&integrationType, "integration-type", "", "Type of integration (github, gitlab, bitbucket, ...)")
	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "Snyk tenant ID (default: $SNYK_TENANT_ID)")
	cmd.Flags().StringVar(&apiToken, "api-token", "", "Snyk API token (default: $SNYK_TOKEN)")
	cmd.Flags().Float64Var(&delay, "delay", 0.5, "Delay between API calls in seconds")
	cmd.Flags().StringVar(&outputLog, "output-log", "", "Output file for connection results (default: "+defaultLogFile+")")
	_ = cmd.MarkFlagRequired("json-file")
	_ = cmd.MarkFlagRequired("connection-id")
	_ = cmd.MarkFlagRequired("integration-id")
	_ = cmd.MarkFlagRequired("integration-type")

	return &cmd
}
