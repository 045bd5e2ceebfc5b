package execx

import (
	"errors"
	"os"
	"os/exec"
)

// Runner abstracts subprocess invocation so callers can be exercised in
// tests without shelling out.
type Runner interface {
	// Run executes a command with the terminal's stdin/stdout/stderr attached.
	Run(name string, args ...string) error
	// Output executes a command and returns its stdout; stderr goes to the terminal.
	Output(name string, args ...string) ([]byte, error)
	// Start launches a command with its standard streams discarded and does
	// not wait for it to finish.
	Start(name string, args ...string) error
}

// System runs commands via os/exec.
type System struct{}

func (System) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (System) Output(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

func (System) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	return cmd.Start()
}

// ExitCode extracts the subprocess exit code from an error chain.
func ExitCode(err error) (int, bool) {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), true
	}
	return 0, false
}
