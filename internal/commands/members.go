package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&MembersCmd{})
}

// MembersCmd lists the team members, admins excluded. Admins only.
type MembersCmd struct{}

func (c *MembersCmd) Name() string      { return "members" }
func (c *MembersCmd) Aliases() []string { return []string{"team"} }
func (c *MembersCmd) Synopsis() string  { return "List team members (admins)" }
func (c *MembersCmd) Usage() string     { return "taskdash members [common flags]" }
func (c *MembersCmd) Access() Access    { return AccessAuth }

func (c *MembersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MembersCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if !env.Session.Current().IsAdmin() {
		fmt.Fprintln(errOut, "error: only admins can list members")
		return exitcode.AuthError
	}

	users, err := env.Users.ListUsers(ctx)
	if err != nil {
		env.Log.Printf("members: %v", err)
		fmt.Fprintf(errOut, "error: backend error: failed to fetch users: %v\n", err)
		return exitcode.BackendError
	}

	members := teamMembers(users)
	for _, u := range members {
		output.FormatMember(out, u)
	}
	if len(members) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no members found")
	}
	return exitcode.Success
}

// teamMembers drops admins, keeping the server's order.
func teamMembers(users []service.User) []service.User {
	var out []service.User
	for _, u := range users {
		if strings.EqualFold(u.Role, "admin") {
			continue
		}
		out = append(out, u)
	}
	return out
}
