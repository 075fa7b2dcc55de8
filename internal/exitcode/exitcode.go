// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, nothing to change).
	UserError = 1

	// AuthError indicates a session, permission or config error.
	AuthError = 2

	// BackendError indicates an API or network error.
	BackendError = 3
)
