package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rahul/mlforecast/internal/forecast"
	"github.com/rahul/mlforecast/internal/sequencer"
)

// Model is the forecast page. It only reads sequencer state; every change
// goes through Start or Restart.
type Model struct {
	seq      *sequencer.Sequencer
	bridge   *Bridge
	state    sequencer.State
	steps    []string
	title    string
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
	styles   Styles
	width    int
	height   int
}

// NewModel builds the page for seq. bridge should be the observer passed to
// the sequencer; it may be nil when the caller feeds StateMsg itself.
func NewModel(seq *sequencer.Sequencer, bridge *Bridge, title string) Model {
	styles := NewStyles()
	if title == "" {
		title = "ML Forecast"
	}
	return Model{
		seq:      seq,
		bridge:   bridge,
		state:    seq.Snapshot(),
		steps:    seq.Steps(),
		title:    title,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   styles,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.Wait())
}

// State returns the snapshot the model last rendered from.
func (m Model) State() sequencer.State {
	return m.state
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Calculate):
			// Disabled while a run is in progress, like the button.
			m.seq.Start()
			m.state = m.seq.Snapshot()
		case key.Matches(msg, m.keys.Restart):
			m.seq.Restart()
			m.state = m.seq.Snapshot()
		}
		return m, nil

	case StateMsg:
		// Notifications can arrive out of order from timer goroutines,
		// so always render the latest snapshot.
		m.state = m.seq.Snapshot()
		return m, m.bridge.Wait()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = clamp(msg.Width-12, 10, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var sections []string
	sections = append(sections, m.headerView(), m.buttonView())

	switch m.state.Phase {
	case sequencer.PhaseRunning:
		sections = append(sections, m.processingView())
	case sequencer.PhaseResolved:
		if m.state.Result != nil {
			sections = append(sections, m.resultView(*m.state.Result))
		}
	}

	sections = append(sections, m.help.View(m.keys))
	return m.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) headerView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("🧠 "+m.title),
		m.styles.Subtitle.Render("Platinum List Death Date Prediction"),
		m.styles.Muted.Render("Advanced neural network analysis predicting the exact date of platinum list termination"),
		"",
	)
}

func (m Model) buttonView() string {
	if m.state.IsRunning {
		return m.styles.ButtonBusy.Render(m.spinner.View() + " Processing Neural Networks...")
	}
	return m.styles.Button.Render("⚡ Calculate Death Date")
}

func (m Model) processingView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Bold.Render("Neural Network Processing"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("Model: " + forecast.Network.Summary()))
	sb.WriteString("\n\n")
	sb.WriteString(networkDiagram(forecast.Network))
	sb.WriteString("\n\n")

	for i, step := range m.steps {
		if i <= m.state.StepIndex {
			sb.WriteString(m.styles.StepReached.Render("● " + step + " ✓"))
		} else {
			sb.WriteString(m.styles.StepPending.Render("○ " + step))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.progress.ViewAs(stepFraction(m.state.StepIndex, len(m.steps))))

	return m.styles.Card.Render(sb.String())
}

func (m Model) resultView(res forecast.PredictionResult) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Bold.Render("☠ Predicted Death Date"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("Neural network analysis complete | Model: " + res.ModelVersion))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.ResultDate.Render(forecast.FormatDate(res.Date)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Body.Render("Confidence Level: " + forecast.FormatConfidence(res.Confidence)))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Bold.Render("Cause of Death"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.ResultReason.Render(res.DeathReason))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Bold.Render("Key Factors"))
	sb.WriteString("\n")

	badges := make([]string, len(res.Factors))
	for i, f := range res.Factors {
		badges[i] = m.styles.Badge.Render(f)
	}
	sb.WriteString(strings.Join(badges, " "))

	return m.styles.Card.Render(sb.String())
}

// networkDiagram draws one column of nodes per layer, capped at 8 rows.
func networkDiagram(n forecast.NeuralNetwork) string {
	rows := 0
	for _, l := range n.Layers {
		rows = max(rows, min(l, 8))
	}
	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for i, l := range n.Layers {
			if i > 0 {
				sb.WriteString("   ")
			}
			if r < min(l, 8) {
				sb.WriteString("●")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Join(n.ActivationFunctions, " · "))
	sb.WriteString(fmt.Sprintf("\nEpochs: %d | Loss: %.2f", n.TrainingEpochs, n.Loss))
	return sb.String()
}

func stepFraction(index, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(index+1) / float64(total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
