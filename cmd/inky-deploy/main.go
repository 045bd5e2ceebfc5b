package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inky-deploy/internal/config"
	"inky-deploy/internal/deploy"
	"inky-deploy/internal/execx"
)

type options struct {
	deploy.Options
	configPath string
}

func newRootCmd() (*cobra.Command, *options) {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "inky-deploy",
		Short: "Cross-compile and deploy inky-gotchi to the target device",
		Long: `inky-deploy drives the build/deploy/debug loop for the inky-gotchi
e-paper application: it cross-compiles for the ARM target, copies the binary
to the device over SSH, and can launch a remote gdbserver or run the binary
interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("Invalid option: %s", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			return deploy.New(cfg, opts.Options).Execute()
		},
	}

	cmd.Flags().BoolVarP(&opts.Release, "release", "r", false, "Build in release mode")
	cmd.Flags().BoolVarP(&opts.Clean, "clean", "c", false, "Remove local build output before building")
	cmd.Flags().BoolVarP(&opts.Deploy, "deploy", "d", false, "Copy the built binary to the device, killing any running gdbserver first")
	cmd.Flags().BoolVarP(&opts.GDBServer, "gdbserver", "g", false, "Deploy, then launch a detached gdbserver on the device")
	cmd.Flags().BoolVarP(&opts.Run, "run", "u", false, "Run the deployed binary on the device")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print commands instead of executing them")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file path (default: "+config.DefaultFile+" if present)")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return invalidOption(err)
	})

	return cmd, opts
}

// invalidOption rewrites pflag's unknown-flag errors to the tool's own
// diagnostic, naming the offending token.
func invalidOption(err error) error {
	msg := err.Error()
	if tok, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return fmt.Errorf("Invalid option: %s", tok)
	}
	if rest, ok := strings.CutPrefix(msg, "unknown shorthand flag: "); ok {
		if i := strings.LastIndex(rest, " in "); i >= 0 {
			return fmt.Errorf("Invalid option: %s", rest[i+len(" in "):])
		}
	}
	return err
}

func main() {
	cmd, _ := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// The run step's remote exit status becomes our own.
		if code, ok := execx.ExitCode(err); ok && code > 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
