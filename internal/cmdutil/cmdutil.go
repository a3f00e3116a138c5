// Package cmdutil holds the small pieces of CLI plumbing shared by every
// subcommand in cmd/paperback: a logger constructor and an error-wrapping
// helper that attaches command-level context without obscuring the
// underlying cause.
package cmdutil

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewLogger builds the CLI's structured logger: production (JSON, info
// level) normally, development (console, debug level) under --debug.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Wrap attaches msg as context to err using pkg/errors, the convention this
// CLI layer uses in preference to fmt.Errorf's %w (core packages use %w;
// only this boundary layer reaches for pkg/errors, matching the split the
// rest of the codebase draws between library and CLI error handling).
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrap(err, fmt.Sprintf(format, args...))
}

// RunID mints a correlation ID for a single CLI invocation, attached to every
// log line that invocation emits so a user reporting a failure can quote one
// ID instead of a whole log dump.
func RunID() string {
	return uuid.NewString()
}
