package errors

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes for the fatal error categories
const (
	ExitCodeSuccess            = 0
	ExitCodeGenericError       = 1
	ExitCodeConfigurationError = 2
	ExitCodeAuthenticationErr  = 3
	ExitCodeNotFoundError      = 4
	ExitCodePathError          = 5
	ExitCodeStructureError     = 6
	ExitCodeRateLimitError     = 7
	ExitCodeNetworkError       = 8
)

// Handler formats errors for the operator and exits with a category-specific code
type Handler struct {
	// Writer is where error messages will be written
	Writer io.Writer
	// ExitFunc is the function called to exit the program with a specific code
	ExitFunc func(int)
}

// NewHandler creates a Handler writing to stderr and exiting the process
func NewHandler() *Handler {
	return &Handler{
		Writer:   os.Stderr,
		ExitFunc: os.Exit,
	}
}

// WithWriter sets the writer for error output
func (h *Handler) WithWriter(w io.Writer) *Handler {
	h.Writer = w
	return h
}

// WithExitFunc sets the exit function
func (h *Handler) WithExitFunc(f func(int)) *Handler {
	h.ExitFunc = f
	return h
}

// Handle formats an error, writes it, and exits with the matching code
func (h *Handler) Handle(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(h.Writer, h.formatError(err))

	if h.ExitFunc != nil {
		h.ExitFunc(GetExitCode(err))
	}
}

// GetExitCode maps an error's category to a process exit code
func GetExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	switch {
	case IsConfigurationError(err):
		return ExitCodeConfigurationError
	case IsAuthenticationError(err):
		return ExitCodeAuthenticationErr
	case IsNotFound(err):
		return ExitCodeNotFoundError
	case IsPathError(err):
		return ExitCodePathError
	case IsStructureError(err):
		return ExitCodeStructureError
	case IsRateLimitError(err):
		return ExitCodeRateLimitError
	case IsNetworkError(err):
		return ExitCodeNetworkError
	default:
		return ExitCodeGenericError
	}
}

func (h *Handler) formatError(err error) string {
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr.FormattedError()
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
