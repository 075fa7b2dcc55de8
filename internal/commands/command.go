// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskdash/internal/config"
)

// Access describes what a command needs before it can run.
type Access int

const (
	// AccessNone commands run without opening the session (help, version, config).
	AccessNone Access = iota

	// AccessSession commands get an Env but may run anonymous (login, signup, logout).
	AccessSession

	// AccessAuth commands require an authenticated session.
	AccessAuth
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Access reports what the dispatcher must provide before Run.
	Access() Access

	// RegisterFlags registers command-specific flags.
	// It is called before every run and must reset flag state.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings).
	// env is nil for AccessNone commands.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int
}
