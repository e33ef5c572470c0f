// Package errors categorizes the failures orgscale can hit so commands can
// exit with a meaningful code and a useful message.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error categories
var (
	// ErrConfiguration indicates a missing or invalid argument or environment variable
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication indicates the API rejected our token
	ErrAuthentication = errors.New("authentication error")

	// ErrNotFound indicates a requested upstream resource was not found
	ErrNotFound = errors.New("not found")

	// ErrPath indicates a file path escaping the permitted directory
	ErrPath = errors.New("path error")

	// ErrStructure indicates an input file whose JSON shape is not recognized
	ErrStructure = errors.New("structure error")

	// ErrRateLimit indicates the API throttled us
	ErrRateLimit = errors.New("rate limited")

	// ErrNetwork indicates a transport-level failure talking to the API
	ErrNetwork = errors.New("network error")

	// ErrAPI indicates any other error response from the Snyk API
	ErrAPI = errors.New("API error")
)

// Error is an error with a category, optional detail and operator suggestions
type Error struct {
	// Original is the underlying error
	Original error

	// Category is the broad category of the error
	Category error

	// Details contains additional detail about the error
	Details string

	// Suggestions provides hints on how to fix the error
	Suggestions []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var msg strings.Builder

	if e.Category != nil {
		msg.WriteString(e.Category.Error())
		msg.WriteString(": ")
	}

	if e.Original != nil {
		msg.WriteString(e.Original.Error())
	}

	if e.Details != "" {
		if e.Original != nil {
			msg.WriteString(" (")
			msg.WriteString(e.Details)
			msg.WriteString(")")
		} else {
			msg.WriteString(e.Details)
		}
	}

	return msg.String()
}

// FormattedError returns a multi-line message suitable for terminal display
func (e *Error) FormattedError() string {
	var msg strings.Builder

	if e.Category != nil {
		category := e.Category.Error()
		if len(category) > 0 {
			msg.WriteString(strings.ToUpper(category[:1]) + category[1:])
			msg.WriteString(": ")
		}
	}

	if e.Original != nil {
		msg.WriteString(e.Original.Error())
	} else if e.Details != "" {
		msg.WriteString(e.Details)
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\n")
		for i, suggestion := range e.Suggestions {
			if i > 0 {
				msg.WriteString("\n")
			}
			msg.WriteString("• ")
			msg.WriteString(suggestion)
		}
	}

	return msg.String()
}

// Unwrap allows errors.Is and errors.As to reach the underlying error
func (e *Error) Unwrap() error {
	if e.Original != nil {
		return e.Original
	}
	return e.Category
}

// Is matches on either the category or the underlying error
func (e *Error) Is(target error) bool {
	return errors.Is(e.Category, target) || (e.Original != nil && errors.Is(e.Original, target))
}

// NewError creates a new Error with the given attributes
func NewError(original error, category error, details string, suggestions ...string) *Error {
	return &Error{
		Original:    original,
		Category:    category,
		Details:     details,
		Suggestions: suggestions,
	}
}

// WithSuggestions adds suggestions to an existing error
func WithSuggestions(err error, suggestions ...string) error {
	var cliErr *Error
	if errors.As(err, &cliErr) {
		cliErr.Suggestions = append(cliErr.Suggestions, suggestions...)
		return cliErr
	}
	return NewError(err, nil, "", suggestions...)
}

func NewConfigurationError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrConfiguration, details, suggestions...)
}

func NewAuthenticationError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrAuthentication, details, suggestions...)
}

func NewNotFoundError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrNotFound, details, suggestions...)
}

func NewPathError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrPath, details, suggestions...)
}

func NewStructureError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrStructure, details, suggestions...)
}

func NewRateLimitError(err error, details string) error {
	return NewError(err, ErrRateLimit, details,
		"Increase --delay to leave more room between API calls")
}

func NewNetworkError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrNetwork, details, suggestions...)
}

func NewAPIError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrAPI, details, suggestions...)
}

// IsConfigurationError returns true for missing arguments or environment values
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsAuthenticationError returns true when the API rejected the token
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsNotFound returns true when an upstream resource was missing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPathError returns true for paths escaping the working directory
func IsPathError(err error) bool {
	return errors.Is(err, ErrPath)
}

// IsStructureError returns true for unrecognized input file shapes
func IsStructureError(err error) bool {
	return errors.Is(err, ErrStructure)
}

// IsRateLimitError returns true for 429 responses
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// IsNetworkError returns true for transport failures
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsAPIError returns true for any other upstream error response
func IsAPIError(err error) bool {
	return errors.Is(err, ErrAPI)
}

// Errorf creates a plain uncategorized error
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
