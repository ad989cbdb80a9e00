package utils_test

import (
	"strings"
	"testing"

	"reframe/internal/utils"
)

func TestExecCapturesStdout(t *testing.T) {
	out, err := utils.Exec("echo", "hello")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Fatalf("stdout: got %q", out)
	}
}

func TestExecUnknownBinary(t *testing.T) {
	if _, err := utils.Exec("definitely-not-a-binary"); err == nil {
		t.Fatal("expected an error for a missing binary")
	}
}

func TestExecEmptyCommand(t *testing.T) {
	if _, err := utils.Exec(); err == nil {
		t.Fatal("expected an error for an empty command")
	}
}
