package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorBold     = "\033[1m"
	colorDim      = "\033[2m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
	colorNeonRed  = "\033[91m"
)

// out is where every dashboard write lands.
var out io.Writer = os.Stdout

// termMu synchronizes ALL terminal output so that the cursor
// save/restore in PrintProgress can never be interrupted by a log write.
var termMu sync.Mutex

// ------------------------------------------------------------
// Utility
// ------------------------------------------------------------

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SetOutput redirects dashboard output, e.g. to a command's writer, and
// returns the previous writer so callers can restore it.
func SetOutput(w io.Writer) io.Writer {
	termMu.Lock()
	defer termMu.Unlock()
	prev := out
	out = w
	return prev
}

func write(s string) {
	termMu.Lock()
	defer termMu.Unlock()
	fmt.Fprint(out, s)
}

// termWriter serialises log output with dashboard redraws.
type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() io.Writer {
	return termWriter{}
}

// ------------------------------------------------------------
// Banner
// ------------------------------------------------------------

const banner = `
    __  _____       ______                                __
   /  |/  / /      / ____/___  ________  _________ ______/ /_
  / /|_/ / /      / /_  / __ \/ ___/ _ \/ ___/ __ ` + "`" + `/ ___/ __/
 / /  / / /___   / __/ / /_/ / /  /  __/ /__/ /_/ (__  ) /_
/_/  /_/_____/  /_/    \____/_/   \___/\___/\__,_/____/\__/

        >> PLATINUM LIST DEATH DATE PREDICTION <<
`

// RenderBanner centres the banner for the given width.
func RenderBanner(width int) string {
	var sb strings.Builder
	for _, l := range strings.Split(banner, "\n") {
		padding := clamp((width-len([]rune(l)))/2, 0, width)
		sb.WriteString(strings.Repeat(" ", padding))
		sb.WriteString(colorNeonCyan + l + colorReset + "\n")
	}
	return sb.String()
}

func PrintBanner() {
	if IsTerminal() {
		write("\033[2J\033[H")
	}
	write(RenderBanner(termWidth()))
}

func InitializeTerminal() {
	// Header/Logo area: 1-9
	// Dashboard/Status: 10
	// Gap: 11
	// Scrolling output: 12+
	write("\033[12;r\033[12;1H")
}

func CleanupTerminal() {
	write("\033[r")
}
