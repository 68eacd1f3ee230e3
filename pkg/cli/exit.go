package cli

import (
	"errors"

	"github.com/anod/todoport/pkg/auth"
	"github.com/anod/todoport/pkg/config"
	"github.com/anod/todoport/pkg/export"
	"github.com/anod/todoport/pkg/graph"
)

// Process exit codes. Each fatal error category terminates the run with a
// distinct signal.
const (
	ExitOK      = 0
	ExitFailure = 1 // anything uncategorized
	ExitConfig  = 2 // invalid configuration value
	ExitAuth    = 3 // missing credentials or auth failure
	ExitFetch   = 4 // remote API failure
	ExitWrite   = 5 // output destination unwritable
	ExitOptions = 6 // incompatible option combination
)

// ExitCode maps a terminal error to its process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, config.ErrIncompatibleOptions) {
		return ExitOptions
	}
	if errors.Is(err, config.ErrMissingCredentials) {
		return ExitAuth
	}

	var (
		configErr *config.Error
		authErr   *auth.Error
		fetchErr  *graph.FetchError
		writeErr  *export.WriteError
	)
	switch {
	case errors.As(err, &configErr):
		return ExitConfig
	case errors.As(err, &authErr):
		return ExitAuth
	case errors.As(err, &fetchErr):
		return ExitFetch
	case errors.As(err, &writeErr):
		return ExitWrite
	}
	return ExitFailure
}
