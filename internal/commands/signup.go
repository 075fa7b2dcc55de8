package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
)

func init() {
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command. It registers an account but does
// not sign in.
type SignupCmd struct {
	email     string
	password  string
	firstname string
	role      string
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string {
	return "taskdash signup [common flags] --email <email> --password <password> [--firstname <name>] [--role admin|member]"
}
func (c *SignupCmd) Access() Access { return AccessSession }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.firstname, "firstname", "", "")
	fs.StringVar(&c.role, "role", "member", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	email := strings.TrimSpace(c.email)
	if email == "" || c.password == "" {
		fmt.Fprintln(errOut, "error: --email and --password required")
		return exitcode.UserError
	}
	role := strings.ToLower(strings.TrimSpace(c.role))
	if role != "admin" && role != "member" {
		fmt.Fprintf(errOut, "error: invalid role: %s\n", c.role)
		return exitcode.UserError
	}

	if err := env.Session.Signup(ctx, email, c.password, strings.TrimSpace(c.firstname), role); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok (run: taskdash login)")
	}
	return exitcode.Success
}
