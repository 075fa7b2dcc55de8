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
	Register(NewHelpCmd(DefaultRegistry))
}

// HelpCmd prints usage generated from a registry.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd returns a help command describing the commands in r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdash help [<command>]" }
func (c *HelpCmd) Access() Access    { return AccessNone }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	switch len(args) {
	case 0:
		c.printAll(out)
		return exitcode.Success
	case 1:
		cmd, ok := c.registry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "\nAliases: %v\n", aliases)
		}
		fmt.Fprint(out, commonFlagsText)
		return exitcode.Success
	default:
		fmt.Fprintf(errOut, "error: too many arguments: %v\n", args[1:])
		return exitcode.UserError
	}
}

func (c *HelpCmd) printAll(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  taskdash                     List tasks (same as taskdash list)")
	fmt.Fprintln(out, "  taskdash <command> [flags] [args]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range c.registry.All() {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Tasks are referenced by their number in taskdash list (3 or #3),")
	fmt.Fprintln(out, "or by ID. Use --id to read a numeric argument as an ID.")
	fmt.Fprint(out, commonFlagsText)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, `Run "taskdash help <command>" for command usage.`)
}

const commonFlagsText = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
