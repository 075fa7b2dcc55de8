package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd changes the given fields of a task. Fields without a flag are not
// sent.
type EditCmd struct {
	title       optionalString
	description optionalString
	assign      optionalString
	deadline    optionalString
	status      statusFlag
	byID        bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskdash edit [common flags] [--id] [--title <t>] [--description <d>] [--assign <user>] [--status <s>] [--deadline YYYY-MM-DD] <ref>"
}
func (c *EditCmd) Access() Access { return AccessAuth }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title.reset()
	c.description.reset()
	c.assign.reset()
	c.deadline.reset()
	c.status.reset("", false)
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.assign, "assign", "")
	fs.Var(&c.deadline, "deadline", "")
	fs.Var(&c.status, "status", "")
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if !env.Session.Current().IsAdmin() {
		fmt.Fprintln(errOut, "error: only admins can edit tasks")
		return exitcode.AuthError
	}

	ref, ok := parseRef(args, c.byID, errOut)
	if !ok {
		return exitcode.UserError
	}

	patch := service.TaskPatch{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
		AssignedTo:  c.assign.ptr(),
		Status:      c.status.ptr(),
		Deadline:    c.deadline.ptr(),
	}
	if patch.Empty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		fmt.Fprintln(errOut, "error: title cannot be empty")
		return exitcode.UserError
	}
	if patch.Deadline != nil {
		if err := checkDeadline(*patch.Deadline); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	task, code := loadAndResolve(ctx, env, ref, errOut)
	if code != exitcode.Success {
		return code
	}
	return updateTask(ctx, cfg, env, task.ID, patch, out, errOut)
}

// updateTask sends patch through the cache and reports the outcome.
func updateTask(ctx context.Context, cfg *config.Config, env *Env, id string, patch service.TaskPatch, out, errOut io.Writer) int {
	if _, err := env.Tasks.Update(ctx, id, patch); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", env.Tasks.LastError())
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
