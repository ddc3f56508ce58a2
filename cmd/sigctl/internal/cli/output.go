package cli

import (
	"errors"
	"fmt"
)

// Exit codes for sigctl commands. Grounded on the same small fixed set the
// retrieved pack's CLI tools use for scriptable exit status.
const (
	ExitSuccess      = 0
	ExitTurnFailure  = 1 // the demo turn completed with callback/observer errors
	ExitCommandError = 2 // bad flags, unreadable config, malformed scenario
)

// ExitError carries a specific process exit code alongside an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the process exit code from an error returned by a
// command's RunE, defaulting to ExitCommandError for anything not already
// an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}
