package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// defaultTerminalWidth is used whenever the output isn't a terminal or
// term.GetSize fails, the same defensive fallback PreviewImage's
// capability sniffing uses for unknown environments.
const defaultTerminalWidth = 80

// TerminalWidth returns the current terminal width in columns, falling
// back to defaultTerminalWidth when stdout isn't a TTY.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTerminalWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultTerminalWidth
	}
	return w
}

// PrintProgress renders a single-line
// "\riter N: H hole pixel(s) remaining, P patch(es) copied" status line
// truncated or space-padded to the terminal width, used by the CLI loop between
// Engine.Step calls. A width of 0 or less disables truncation.
func PrintProgress(iteration int, holeCount int, patches int) {
	line := fmt.Sprintf("iter %d: %d hole pixel(s) remaining, %d patch(es) copied", iteration, holeCount, patches)
	width := TerminalWidth()
	if width > 0 && len(line) > width {
		line = line[:width]
	}
	fmt.Fprint(os.Stderr, "\r"+line+strings.Repeat(" ", max(0, width-len(line))))
}

// FinishProgress emits the trailing newline that ends a PrintProgress run.
func FinishProgress() {
	fmt.Fprintln(os.Stderr)
}
