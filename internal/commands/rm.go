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
	Register(&RmCmd{})
}

// RmCmd implements the rm command. All references are resolved against the
// list as loaded before any deletion. With --id the ids go to the server
// as given.
type RmCmd struct {
	byID bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete tasks" }
func (c *RmCmd) Usage() string     { return "taskdash rm [common flags] [--id] <ref>..." }
func (c *RmCmd) Access() Access    { return AccessAuth }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if !env.Session.Current().IsAdmin() {
		fmt.Fprintln(errOut, "error: only admins can delete tasks")
		return exitcode.AuthError
	}

	refs, err := ParseTaskRefs(args, c.byID)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var ids []string
	if c.byID {
		ids = uniqueIDs(refs)
	} else {
		var code int
		if ids, code = c.resolve(ctx, env, refs, errOut); code != exitcode.Success {
			return code
		}
	}

	for _, id := range ids {
		if err := env.Tasks.Delete(ctx, id); err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", env.Tasks.LastError())
			return exitcode.BackendError
		}
		env.Log.Printf("rm: deleted %s", id)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *RmCmd) resolve(ctx context.Context, env *Env, refs []TaskRef, errOut io.Writer) ([]string, int) {
	if err := env.Tasks.Load(ctx, *env.Session.Current()); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", env.Tasks.LastError())
		return nil, exitcode.BackendError
	}
	tasks := env.Tasks.Tasks()

	var ids []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		task, err := ref.Resolve(tasks)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError
		}
		if !seen[task.ID] {
			seen[task.ID] = true
			ids = append(ids, task.ID)
		}
	}
	return ids, exitcode.Success
}

func uniqueIDs(refs []TaskRef) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if !seen[ref.ID] {
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		}
	}
	return ids
}
