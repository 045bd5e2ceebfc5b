package remote

import (
	"fmt"
	"strings"

	"inky-deploy/internal/execx"
)

// Client wraps interactions with the target device over ssh and scp.
type Client struct {
	Host   string
	DryRun bool

	runner execx.Runner
}

// NewClient creates a client for the given SSH destination.
func NewClient(host string, dryRun bool) *Client {
	return &Client{
		Host:   host,
		DryRun: dryRun,
		runner: execx.System{},
	}
}

// NewClientWithRunner is like NewClient but runs commands through the given
// runner. Used by tests.
func NewClientWithRunner(host string, dryRun bool, runner execx.Runner) *Client {
	return &Client{Host: host, DryRun: dryRun, runner: runner}
}

// Exec runs `ssh <host> <cmd>` and returns trimmed stdout.
// In dry-run mode it prints the command and returns empty output.
func (c *Client) Exec(cmd string) (string, error) {
	if c.DryRun {
		fmt.Printf("[dry-run] ssh %s %q\n", c.Host, cmd)
		return "", nil
	}
	out, err := c.runner.Output("ssh", c.Host, cmd)
	if err != nil {
		return string(out), fmt.Errorf("ssh %s %q: %w", c.Host, cmd, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ExecInteractive runs `ssh -t <host> <cmd>` with full terminal I/O, so the
// remote command can interact with the caller and its exit status is
// preserved in the returned error.
func (c *Client) ExecInteractive(cmd string) error {
	if c.DryRun {
		fmt.Printf("[dry-run] ssh -t %s %q\n", c.Host, cmd)
		return nil
	}
	return c.runner.Run("ssh", "-t", c.Host, cmd)
}

// StartDetached launches a command on the remote host in the background with
// its standard streams discarded, and does not wait for it. The ssh process
// itself returns as soon as the remote command is backgrounded.
func (c *Client) StartDetached(cmd string) error {
	wrapped := fmt.Sprintf("nohup %s >/dev/null 2>&1 &", cmd)
	if c.DryRun {
		fmt.Printf("[dry-run] ssh %s %q\n", c.Host, wrapped)
		return nil
	}
	if err := c.runner.Start("ssh", c.Host, wrapped); err != nil {
		return fmt.Errorf("starting %q on %s: %w", cmd, c.Host, err)
	}
	return nil
}

// CopyDir recursively copies a local directory into the remote home directory.
func (c *Client) CopyDir(localDir string) error {
	if c.DryRun {
		fmt.Printf("[dry-run] scp -r %s %s:\n", localDir, c.Host)
		return nil
	}
	if err := c.runner.Run("scp", "-r", localDir, c.Host+":"); err != nil {
		return fmt.Errorf("scp -r %s %s:: %w", localDir, c.Host, err)
	}
	return nil
}

// PidOf returns the pid of a process running on the remote host, or an empty
// string if it is not running. pidof exits 1 when no process matches; that
// is not an error here.
func (c *Client) PidOf(name string) (string, error) {
	if c.DryRun {
		fmt.Printf("[dry-run] ssh %s %q\n", c.Host, "pidof "+name)
		return "", nil
	}
	out, err := c.runner.Output("ssh", c.Host, "pidof "+name)
	if err != nil {
		if code, ok := execx.ExitCode(err); ok && code == 1 {
			return "", nil
		}
		return "", fmt.Errorf("pidof %s on %s: %w", name, c.Host, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Kill force-terminates a remote process by pid.
func (c *Client) Kill(pid string) error {
	_, err := c.Exec("kill -9 " + pid)
	return err
}
