package tools

import (
	"runtime"
	"strings"
	"testing"

	"github.com/danmuck/gbanetboot/internal/testutil/testlog"
)

func TestExecRunnerRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	testlog.Start(t)
	stdout, _, code, err := ExecRunner{}.Run("sh", "-c", "echo handoff")
	if err != nil || code != 0 {
		t.Fatalf("run: code=%d err=%v", code, err)
	}
	if strings.TrimSpace(string(stdout)) != "handoff" {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
}

func TestExecRunnerRunReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	testlog.Start(t)
	_, _, code, err := ExecRunner{}.Run("sh", "-c", "exit 3")
	if err == nil || code != 3 {
		t.Fatalf("expected exit 3, got code=%d err=%v", code, err)
	}
	_, _, code, err = ExecRunner{}.Run("definitely-not-a-real-binary-xyz")
	if err == nil || code != 127 {
		t.Fatalf("expected 127 for missing binary, got code=%d err=%v", code, err)
	}
}

func TestExecRunnerStartMissingBinary(t *testing.T) {
	testlog.Start(t)
	if _, err := (ExecRunner{}).Start("definitely-not-a-real-binary-xyz"); err == nil {
		t.Fatalf("expected start error")
	}
}
