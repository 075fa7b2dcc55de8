package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd shows or changes the persisted settings.
type ConfigCmd struct {
	apiURL  optionalString
	timeout optionalString
}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Show or change settings" }
func (c *ConfigCmd) Usage() string {
	return "taskdash config [common flags] [--api-url <url>] [--timeout <duration>]"
}
func (c *ConfigCmd) Access() Access { return AccessNone }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {
	c.apiURL.reset()
	c.timeout.reset()
	fs.Var(&c.apiURL, "api-url", "")
	fs.Var(&c.timeout, "timeout", "")
}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if !c.apiURL.set && !c.timeout.set {
		fmt.Fprintf(out, "config:  %s\n", cfg.ConfigPath())
		fmt.Fprintf(out, "api_url: %s\n", cfg.APIURL)
		fmt.Fprintf(out, "timeout: %s\n", cfg.Timeout)
		return exitcode.Success
	}

	if c.apiURL.set {
		raw := strings.TrimRight(strings.TrimSpace(c.apiURL.value), "/")
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fmt.Fprintf(errOut, "error: invalid api url: %s\n", c.apiURL.value)
			return exitcode.UserError
		}
		cfg.APIURL = raw
	}
	if c.timeout.set {
		d, err := time.ParseDuration(c.timeout.value)
		if err != nil || d <= 0 {
			fmt.Fprintf(errOut, "error: invalid timeout: %s\n", c.timeout.value)
			return exitcode.UserError
		}
		cfg.Timeout = d
	}

	if err := cfg.Save(); err != nil {
		fmt.Fprintf(errOut, "error: failed to save config: %v\n", err)
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
