package tools

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
)

// Runner abstracts process execution for platform adapters.
type Runner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
	Start(name string, args ...string) (int, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run executes name to completion and captures its output.
func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// Start launches name with the caller's stdio and returns without waiting.
// The child outlives this process.
func (r ExecRunner) Start(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}
	return pid, nil
}
