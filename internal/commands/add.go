package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

// DeadlineLayout is the accepted --deadline format.
const DeadlineLayout = "2006-01-02"

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command. Only admins may create tasks.
type AddCmd struct {
	title       string
	description string
	assign      string
	deadline    string
	status      statusFlag
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task (admins)" }
func (c *AddCmd) Usage() string {
	return "taskdash add [common flags] [--description <text>] [--assign <user>] [--status <s>] [--deadline YYYY-MM-DD] <title...>"
}
func (c *AddCmd) Access() Access { return AccessAuth }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.status.reset(service.StatusPending, false)
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.assign, "assign", "", "")
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.Var(&c.status, "status", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if !env.Session.Current().IsAdmin() {
		fmt.Fprintln(errOut, "error: only admins can create tasks")
		return exitcode.AuthError
	}

	title := strings.TrimSpace(c.title)
	if len(args) > 0 {
		if title != "" {
			fmt.Fprintln(errOut, "error: cannot use both --title and a positional title")
			return exitcode.UserError
		}
		title = strings.TrimSpace(strings.Join(args, " "))
	}
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if err := checkDeadline(c.deadline); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := env.Tasks.Create(ctx, service.TaskDraft{
		Title:       title,
		Description: c.description,
		AssignedTo:  strings.TrimSpace(c.assign),
		Status:      c.status.value,
		Deadline:    c.deadline,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", env.Tasks.LastError())
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}

// checkDeadline accepts an empty deadline or a calendar date.
func checkDeadline(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DeadlineLayout, s); err != nil {
		return fmt.Errorf("invalid deadline: %s (want YYYY-MM-DD)", s)
	}
	return nil
}
