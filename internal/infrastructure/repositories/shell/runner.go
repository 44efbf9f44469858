package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// RunResult holds what a successful command printed.
type RunResult struct {
	Stdout string
	Stderr string
}

// Runner executes external commands in a working directory.
type Runner interface {
	Run(ctx context.Context, dir string, argv ...string) (RunResult, error)
}

// ExecRunner runs commands with os/exec and reports failures as *entities.CommandError.
type ExecRunner struct {
	env []string
}

// NewExecRunner creates a runner inheriting the process environment plus extra entries.
func NewExecRunner(extraEnv ...string) *ExecRunner {
	return &ExecRunner{env: append(os.Environ(), extraEnv...)}
}

// Run runs argv[0] with the remaining arguments. A non-zero exit yields a
// *entities.CommandError carrying the captured output; a command that could
// not be started at all also yields one, with ExitStatus -1.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv ...string) (RunResult, error) {
	if len(argv) == 0 {
		return RunResult{}, errors.New("no command given")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = r.env

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debugf("Running %v in %s", argv, dir)
	err := cmd.Run()
	if err != nil {
		exitStatus := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitStatus = exitErr.ExitCode()
		}
		return RunResult{}, &entities.CommandError{
			Command:    argv,
			ExitStatus: exitStatus,
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			Err:        err,
		}
	}

	if stdout.Len() > 0 {
		logger.Debugf("%s", stdout.String())
	}
	return RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}

// Started reports whether a runner error came from a command that actually ran
// (as opposed to one that could not be started).
func Started(err error) bool {
	var cmdErr *entities.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.ExitStatus >= 0
}
