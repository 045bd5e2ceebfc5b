// Package deploy sequences the build, deploy, debug-serve and run steps
// against the target device.
package deploy

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"inky-deploy/internal/config"
	"inky-deploy/internal/cross"
	"inky-deploy/internal/remote"
)

// Options are the flag-driven switches for one pipeline run.
type Options struct {
	Release   bool
	Clean     bool
	Deploy    bool
	Run       bool
	GDBServer bool
	DryRun    bool
}

type remoteClient interface {
	Exec(cmd string) (string, error)
	ExecInteractive(cmd string) error
	StartDetached(cmd string) error
	CopyDir(localDir string) error
	PidOf(name string) (string, error)
	Kill(pid string) error
}

type artifactBuilder interface {
	Build(release bool) error
	Clean() error
	ArtifactPath(release bool) string
}

// Pipeline runs the deployment steps in a fixed order, gated by Options.
type Pipeline struct {
	cfg  *config.Config
	opts Options

	remote remoteClient
	build  artifactBuilder
	out    io.Writer

	probeInterval time.Duration
	probeTimeout  time.Duration
}

// New creates a pipeline wired to ssh/scp and the cross tool.
func New(cfg *config.Config, opts Options) *Pipeline {
	return &Pipeline{
		cfg:           cfg,
		opts:          opts,
		remote:        remote.NewClient(cfg.Host, opts.DryRun),
		build:         cross.NewBuilder(cfg.CrossTool, cfg.Target, cfg.TargetDir, cfg.Binary, opts.DryRun),
		out:           os.Stdout,
		probeInterval: 500 * time.Millisecond,
		probeTimeout:  5 * time.Second,
	}
}

// Execute runs the selected steps: clean, build, deploy (implied by
// gdbserver), detached gdbserver launch, interactive run. A build or deploy
// failure aborts the sequence; a clean failure only warns.
func (p *Pipeline) Execute() error {
	if p.opts.Clean {
		fmt.Fprintln(p.out, "==> Cleaning build output...")
		if err := p.build.Clean(); err != nil {
			fmt.Fprintf(p.out, "Warning: clean failed: %v\n", err)
		}
	}

	mode := "debug"
	if p.opts.Release {
		mode = "release"
	}
	fmt.Fprintf(p.out, "==> Building %s (%s)...\n", p.cfg.Binary, mode)
	if err := p.build.Build(p.opts.Release); err != nil {
		return fmt.Errorf("building: %w", err)
	}

	// Debug serving requires a fresh copy on the device.
	if p.opts.GDBServer {
		p.opts.Deploy = true
	}

	if p.opts.Deploy {
		if err := p.deploy(); err != nil {
			return err
		}
	}

	if p.opts.GDBServer {
		if err := p.serveGDB(); err != nil {
			return err
		}
	}

	if p.opts.Run {
		fmt.Fprintf(p.out, "==> Running %s on %s...\n", p.cfg.Binary, p.cfg.Host)
		if err := p.remote.ExecInteractive("./" + p.remoteBinaryPath()); err != nil {
			return fmt.Errorf("remote run: %w", err)
		}
	}

	return nil
}

func (p *Pipeline) deploy() error {
	fmt.Fprintf(p.out, "==> Deploying to %s...\n", p.cfg.Host)

	pid, err := p.remote.PidOf("gdbserver")
	if err != nil {
		return fmt.Errorf("checking for remote gdbserver: %w", err)
	}
	if pid != "" {
		fmt.Fprintf(p.out, "Killing remote gdbserver (pid %s)...\n", pid)
		if err := p.remote.Kill(pid); err != nil {
			return fmt.Errorf("killing remote gdbserver: %w", err)
		}
	}

	artifact := p.build.ArtifactPath(p.opts.Release)
	if p.opts.DryRun {
		fmt.Fprintf(p.out, "[dry-run] stage %s -> %s\n", artifact, p.cfg.DeployDir)
	} else {
		fmt.Fprintf(p.out, "Staging %s...\n", artifact)
		if err := stageArtifact(artifact, p.cfg.DeployDir); err != nil {
			return fmt.Errorf("staging artifact: %w", err)
		}
	}

	if err := p.remote.CopyDir(p.cfg.DeployDir); err != nil {
		return fmt.Errorf("transferring %s: %w", p.cfg.DeployDir, err)
	}

	return nil
}

func (p *Pipeline) serveGDB() error {
	fmt.Fprintf(p.out, "==> Starting gdbserver on localhost:%d...\n", p.cfg.GDBPort)
	cmdline := fmt.Sprintf("./gdbserver localhost:%d %s", p.cfg.GDBPort, p.remoteBinaryPath())
	if err := p.remote.StartDetached(cmdline); err != nil {
		return fmt.Errorf("launching gdbserver: %w", err)
	}
	if !p.opts.DryRun {
		p.waitForGDBServer()
	}
	return nil
}

// waitForGDBServer polls the device until the debug server shows up or the
// probe window closes. The launch stays fire-and-forget: a missed probe is
// reported as a warning, never an error.
func (p *Pipeline) waitForGDBServer() {
	deadline := time.After(p.probeTimeout)
	ticker := time.NewTicker(p.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			fmt.Fprintln(p.out, "Warning: could not confirm gdbserver started")
			return
		case <-ticker.C:
			pid, err := p.remote.PidOf("gdbserver")
			if err == nil && pid != "" {
				fmt.Fprintf(p.out, "gdbserver is up (pid %s)\n", pid)
				return
			}
		}
	}
}

// remoteBinaryPath is the deployed binary's path relative to the remote
// home directory.
func (p *Pipeline) remoteBinaryPath() string {
	return path.Join(filepath.Base(p.cfg.DeployDir), p.cfg.Binary)
}
