package lifecycle

import (
	"bytes"
	"context"
	"os/exec"
)

// Result is the captured output of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes local commands. ExecRunner is the production
// implementation; tests substitute a fake.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes name with args in dir. A non-zero exit status is returned as
// an error together with the captured output.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res, err
}
