package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command, also run when taskdash is invoked
// without arguments. Admins see every task, members their own.
type ListCmd struct {
	status statusFlag
	search string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskdash list [common flags] [--status all|pending|in-progress|completed] [--search <text>]"
}
func (c *ListCmd) Access() Access { return AccessAuth }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.status.reset(service.StatusAll, true)
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.StringVar(&c.search, "search", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := env.Tasks.Load(ctx, *env.Session.Current()); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", env.Tasks.LastError())
		return exitcode.BackendError
	}

	// Numbers are positions in the unfiltered list so that a number seen in a
	// filtered view can be passed to done, edit or rm.
	pos := make(map[string]int)
	for i, t := range env.Tasks.Tasks() {
		if _, dup := pos[t.ID]; !dup {
			pos[t.ID] = i + 1
		}
	}

	shown := env.Tasks.Filter(c.status.value, c.search)
	for _, t := range shown {
		output.FormatTask(out, pos[t.ID], t)
	}

	if len(shown) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
