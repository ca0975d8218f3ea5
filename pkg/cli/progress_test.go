package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestTerminalWidthFallsBackWhenNotATTY(t *testing.T) {
	// os.Stdout in a test binary is not a terminal, so this should always
	// take the defaultTerminalWidth branch.
	if w := TerminalWidth(); w != defaultTerminalWidth {
		t.Fatalf("expected the non-TTY fallback width %d, got %d", defaultTerminalWidth, w)
	}
}

func TestPrintProgressEmitsStatusLine(t *testing.T) {
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe failed: %v", err)
	}
	os.Stderr = w

	PrintProgress(3, 42, 2)
	FinishProgress()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stderr = oldStderr

	out := buf.String()
	if !strings.Contains(out, "iter 3") || !strings.Contains(out, "42 hole pixel") || !strings.Contains(out, "2 patch") {
		t.Fatalf("expected the progress line to report iteration/holes/patches, got %q", out)
	}
	if !strings.HasPrefix(out, "\r") {
		t.Fatal("expected the progress line to start with a carriage return for in-place updates")
	}
}
