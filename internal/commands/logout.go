package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored session" }
func (c *LogoutCmd) Usage() string     { return "taskdash logout [common flags]" }
func (c *LogoutCmd) Access() Access    { return AccessSession }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	wasIn := env.Session.Authenticated()
	env.Session.Logout(ctx)

	if cfg.Quiet {
		return exitcode.Success
	}
	if !wasIn {
		fmt.Fprintln(out, "not logged in")
	} else {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
