package binary_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type cliCase struct {
	Name             string
	Args             []string
	Input            string
	ExpectedExitCode int
	ExpectOutput     bool
	StderrContains   string
}

func TestCommitBinaryInterface(t *testing.T) {
	binaryPath, err := buildCommitBinary(t)
	if err != nil {
		t.Skipf("Skipping test: Failed to build vybium-commit: %v", err)
	}

	testCases := []cliCase{
		{
			Name:             "scenario",
			Args:             []string{"commit"},
			Input:            `{"x": [1, 2, 3], "y": [4, 5], "m": 1, "c": 0, "threshold": 10}`,
			ExpectedExitCode: 0,
			ExpectOutput:     true,
		},
		{
			Name:             "string encoded input",
			Args:             []string{"commit", "-indent", "0"},
			Input:            `{"x": ["7"], "y": [], "m": "-3", "c": "2", "threshold": "0"}`,
			ExpectedExitCode: 0,
			ExpectOutput:     true,
		},
		{
			Name:             "missing y",
			Args:             []string{"commit"},
			Input:            `{"x": [1, 2, 3], "m": 1, "c": 0, "threshold": 10}`,
			ExpectedExitCode: 1,
			StderrContains:   "MalformedInput",
		},
		{
			Name:             "negative element",
			Args:             []string{"commit"},
			Input:            `{"x": [-1], "y": [4], "m": 1, "c": 0, "threshold": 10}`,
			ExpectedExitCode: 1,
			StderrContains:   "MalformedInput",
		},
		{
			Name:             "unknown subcommand",
			Args:             []string{"prove"},
			ExpectedExitCode: 1,
			StderrContains:   "unknown subcommand",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "temp_data.json")
			out := filepath.Join(dir, "input.json")
			if tc.Input != "" {
				if err := os.WriteFile(in, []byte(tc.Input), 0o644); err != nil {
					t.Fatalf("Failed to write input: %v", err)
				}
			}

			args := append(append([]string{}, tc.Args...), "-in", in, "-out", out)
			if tc.Args[0] != "commit" {
				args = tc.Args
			}

			stdout, stderr, exitCode := runBinary(binaryPath, dir, args...)
			if exitCode != tc.ExpectedExitCode {
				t.Fatalf("Exit code = %d, want %d\nstdout: %s\nstderr: %s", exitCode, tc.ExpectedExitCode, stdout, stderr)
			}
			if tc.StderrContains != "" && !strings.Contains(stderr, tc.StderrContains) {
				t.Errorf("stderr %q does not mention %q", stderr, tc.StderrContains)
			}

			_, statErr := os.Stat(out)
			if tc.ExpectOutput {
				if statErr != nil {
					t.Fatalf("Output record missing: %v", statErr)
				}
				checkOutputRecord(t, out, stdout)
			} else if !os.IsNotExist(statErr) {
				t.Errorf("Output record must not exist after a failed run")
			}
		})
	}
}

func TestPrepareCommitVerifyBinary(t *testing.T) {
	binaryPath, err := buildCommitBinary(t)
	if err != nil {
		t.Skipf("Skipping test: Failed to build vybium-commit: %v", err)
	}

	dir := t.TempDir()
	raw := filepath.Join(dir, "temp_data.json")
	out := filepath.Join(dir, "input.json")

	stdout, stderr, code := runBinary(binaryPath, dir, "prepare", "-out", raw)
	if code != 0 {
		t.Fatalf("prepare failed (%d): %s", code, stderr)
	}
	if !strings.Contains(stdout, "Best fit found") {
		t.Errorf("prepare output missing fit summary: %q", stdout)
	}

	stdout, stderr, code = runBinary(binaryPath, dir, "commit", "-in", raw, "-out", out, "-log-level", "debug")
	if code != 0 {
		t.Fatalf("commit failed (%d): %s", code, stderr)
	}
	if !strings.Contains(stderr, "Data commitment written") {
		t.Errorf("expected structured log line on stderr, got %q", stderr)
	}
	checkOutputRecord(t, out, stdout)

	stdout, stderr, code = runBinary(binaryPath, dir, "verify", "-in", out)
	if code != 0 {
		t.Fatalf("verify failed (%d): %s", code, stderr)
	}
	if !strings.Contains(stdout, "Data Commitment OK") {
		t.Errorf("verify output = %q", stdout)
	}
}

func checkOutputRecord(t *testing.T, path, stdout string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output record: %v", err)
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Output record is not JSON: %v", err)
	}
	for _, key := range []string{"x", "y", "m", "c", "threshold", "data_commitment"} {
		if _, ok := record[key]; !ok {
			t.Errorf("Output record missing %q", key)
		}
	}

	var commitment string
	if err := json.Unmarshal(record["data_commitment"], &commitment); err != nil {
		t.Fatalf("data_commitment is not a string: %v", err)
	}
	if !strings.Contains(stdout, commitment) {
		t.Errorf("stdout %q does not report commitment %s", stdout, commitment)
	}
}

func buildCommitBinary(t *testing.T) (string, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return "", err
	}

	binaryPath := filepath.Join(t.TempDir(), "vybium-commit")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/vybium-commit")
	cmd.Dir = projectRoot

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("build failed: %v, output: %s", err, string(output))
	}

	return binaryPath, nil
}

func runBinary(binaryPath, dir string, args ...string) (stdout string, stderr string, exitCode int) {
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("project root not found")
		}
		dir = parent
	}
}
