package cli

import (
	"bytes"
	"os"
	"testing"
	"time"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return buf.String()
}

// resetFlags restores flag variables; cobra keeps parsed values between Execute calls.
func resetFlags() {
	projectPath = ""
	verbose = false
	statusJSON = false
	statusItems = false
	statusGate = ""
	answerRole = ""
	commitAll = false
	resetYes = false
	exportOutput = ""
	exportRole = ""
	initTitle = ""
	historyLimit = 0
	historyJSON = false
	serveAddr = ""
	watchDebounce = 300 * time.Millisecond
}

// runCLI executes args against RootCmd and returns what was printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	RootCmd.SetArgs(args)
	defer RootCmd.SetArgs(nil)

	var err error
	out := captureStdout(t, func() {
		err = Execute()
	})
	return out, err
}

// initProject creates a project with the sample checklist in a temp dir.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := runCLI(t, "--project", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}
