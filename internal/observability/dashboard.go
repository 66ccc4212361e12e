package observability

import (
	"fmt"
	"strings"

	"github.com/rahul/mlforecast/internal/forecast"
)

var radarFrames = []string{"◜", "◝", "◞", "◟"}

// Progress is what the dashboard line needs to know about a run.
type Progress struct {
	Index   int
	Total   int
	Label   string
	Running bool
	Frame   int
}

// RenderProgress builds the single-line dashboard for a run.
func RenderProgress(p Progress) string {
	barWidth := 24
	filled := 0
	if p.Total > 0 {
		filled = clamp((p.Index+1)*barWidth/p.Total, 0, barWidth)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("▒", barWidth-filled)

	icon, text, color := "🟢", "RESOLVED", colorNeonCyan
	radar := " "
	if p.Running {
		icon, text, color = "🧠", "PROCESSING", colorNeonMag
		radar = radarFrames[p.Frame%len(radarFrames)]
	}

	return fmt.Sprintf("%s%s %-10s%s | %s%s%s [%s%s%s] %d/%d %s",
		color, icon, text, colorReset,
		colorPurple, radar, colorReset,
		color, bar, colorReset,
		p.Index+1, p.Total,
		p.Label,
	)
}

// PrintProgress repaints the dashboard line. On a terminal it rewrites
// line 10 in place; otherwise it appends one line per call.
func PrintProgress(p Progress) {
	line := RenderProgress(p)
	if IsTerminal() {
		// Lock, write the ENTIRE escape sequence atomically, unlock.
		write("\033[s\033[10;1H\033[K" + line + "\033[u")
		return
	}
	write(line + "\n")
}

// RenderResult formats a prediction as a text card.
func RenderResult(res forecast.PredictionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s☠  PREDICTED DEATH DATE%s\n", colorBold, colorNeonRed, colorReset)
	fmt.Fprintf(&sb, "%sNeural network analysis complete | Model: %s%s\n\n", colorDim, res.ModelVersion, colorReset)
	fmt.Fprintf(&sb, "   %s%s%s\n", colorBold, forecast.FormatDate(res.Date), colorReset)
	fmt.Fprintf(&sb, "   Confidence Level: %s\n\n", forecast.FormatConfidence(res.Confidence))
	fmt.Fprintf(&sb, "%sCause of death:%s %s\n\n", colorNeonMag, colorReset, res.DeathReason)
	fmt.Fprintf(&sb, "%sKey factors:%s\n", colorNeonCyan, colorReset)
	for _, f := range res.Factors {
		fmt.Fprintf(&sb, "   • %s\n", f)
	}
	return sb.String()
}

func PrintResult(res forecast.PredictionResult) {
	write("\n" + RenderResult(res))
}
