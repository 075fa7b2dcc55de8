package commands

import (
	"context"
	"flag"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct {
	byID bool
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show task details" }
func (c *ShowCmd) Usage() string     { return "taskdash show [common flags] [--id] <ref>" }
func (c *ShowCmd) Access() Access    { return AccessAuth }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	ref, ok := parseRef(args, c.byID, errOut)
	if !ok {
		return exitcode.UserError
	}
	task, code := loadAndResolve(ctx, env, ref, errOut)
	if code != exitcode.Success {
		return code
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
