package errors

import (
	"github.com/spf13/cobra"
)

// ExecuteWithErrorHandling runs the root command and returns the process exit
// code, printing any failure through the standard handler
func ExecuteWithErrorHandling(cmd *cobra.Command) int {
	// cobra would print the raw error a second time otherwise
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	if err == nil {
		return ExitCodeSuccess
	}

	handler := NewHandler().WithWriter(cmd.ErrOrStderr()).WithExitFunc(nil)
	handler.Handle(err)

	return GetExitCode(err)
}
