package commands

import (
	"context"
	"flag"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&StartCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	byID bool
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskdash done [common flags] [--id] <ref>" }
func (c *DoneCmd) Access() Access    { return AccessAuth }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return setStatus(ctx, cfg, env, args, c.byID, service.StatusCompleted, out, errOut)
}

// StartCmd moves a task to in-progress.
type StartCmd struct {
	byID bool
}

func (c *StartCmd) Name() string      { return "start" }
func (c *StartCmd) Aliases() []string { return nil }
func (c *StartCmd) Synopsis() string  { return "Mark a task in progress" }
func (c *StartCmd) Usage() string     { return "taskdash start [common flags] [--id] <ref>" }
func (c *StartCmd) Access() Access    { return AccessAuth }

func (c *StartCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *StartCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return setStatus(ctx, cfg, env, args, c.byID, service.StatusInProgress, out, errOut)
}

func setStatus(ctx context.Context, cfg *config.Config, env *Env, args []string, byID bool, status service.Status, out, errOut io.Writer) int {
	ref, ok := parseRef(args, byID, errOut)
	if !ok {
		return exitcode.UserError
	}
	task, code := loadAndResolve(ctx, env, ref, errOut)
	if code != exitcode.Success {
		return code
	}
	return updateTask(ctx, cfg, env, task.ID, service.TaskPatch{Status: &status}, out, errOut)
}
