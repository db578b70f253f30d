package model

import "fmt"

// ExitCode defines the process exit codes of the mapserver CLI.
// Scripts and supervisors use them to tell startup failures apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitMapNotFound indicates the map file does not exist or could
	// not be opened.
	ExitMapNotFound ExitCode = 2

	// ExitMapInvalid indicates the map file parsed with issues and the
	// caller asked for strict checking.
	ExitMapInvalid ExitCode = 3

	// ExitConfigError indicates the configuration file or environment
	// could not be loaded or failed validation.
	ExitConfigError ExitCode = 4

	// ExitMarkingNotFound indicates a lookup for an unknown marking id.
	ExitMarkingNotFound ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// The CLI layer uses it to translate domain errors into process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
