package cli

import (
	"errors"

	"github.com/eualt/trustscore/internal/model"
)

const (
	exitFailure    = 1
	exitInvalid    = 2 // invalid evidence or scoring configuration
	exitInput      = 3 // unreadable input or config file
	exitIncomplete = 4 // batch finished with failed entries
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	if errors.Is(err, model.ErrInvalidEvidence) || errors.Is(err, model.ErrInvalidConfiguration) {
		return exitInvalid
	}
	return exitFailure
}
