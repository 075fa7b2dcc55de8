package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"taskdash/internal/commands"
	"taskdash/internal/config"
	"taskdash/internal/exitcode"
)

func runConfig(t *testing.T, cfg *config.Config, argv ...string) (string, string, int) {
	t.Helper()
	cmd := &commands.ConfigCmd{}
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("failed to parse %v: %v", argv, err)
	}
	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, fs.Args(), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestConfigCommand_Show(t *testing.T) {
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stdout, _, code := runConfig(t, cfg)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "api_url: "+config.DefaultAPIURL+"\n") {
		t.Errorf("expected default api url, got %q", stdout)
	}
	if !strings.Contains(stdout, "timeout: 10s\n") {
		t.Errorf("expected default timeout, got %q", stdout)
	}
}

func TestConfigCommand_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stdout, stderr, code := runConfig(t, cfg, "--api-url", "http://localhost:8080/dev/", "--timeout", "3s")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	reloaded, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.APIURL != "http://localhost:8080/dev" {
		t.Errorf("expected saved api url, got %q", reloaded.APIURL)
	}
	if reloaded.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", reloaded.Timeout)
	}
}

func TestConfigCommand_Invalid(t *testing.T) {
	tests := []struct {
		argv []string
		want string
	}{
		{[]string{"--api-url", "ftp://x"}, "error: invalid api url: ftp://x\n"},
		{[]string{"--api-url", "localhost"}, "error: invalid api url: localhost\n"},
		{[]string{"--timeout", "soon"}, "error: invalid timeout: soon\n"},
		{[]string{"--timeout", "-1s"}, "error: invalid timeout: -1s\n"},
	}
	for _, tt := range tests {
		cfg, err := config.New(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, stderr, code := runConfig(t, cfg, tt.argv...)
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.argv, exitcode.UserError, code)
		}
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.argv, tt.want, stderr)
		}
	}
}
