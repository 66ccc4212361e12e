package main

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rahul/mlforecast/internal/observability"
	"github.com/rahul/mlforecast/internal/sequencer"
	"github.com/rahul/mlforecast/internal/ui"
)

func newRunCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the prediction sequence",
		Long: `Starts the prediction page. With --plain, performs a single run on a
line-based dashboard instead of the interactive page, then exits once the
prediction is revealed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				prev := observability.SetOutput(cmd.OutOrStdout())
				defer observability.SetOutput(prev)
				return a.runPlain(cmd.Context())
			}
			return a.runInteractive(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "single non-interactive run on the ANSI dashboard")
	return cmd
}

func (a *app) runInteractive(ctx context.Context) error {
	bridge := ui.NewBridge()
	defer bridge.Close()
	seq := a.newSequencer(bridge.Observe)
	defer seq.Close()

	p := tea.NewProgram(ui.NewModel(seq, bridge, a.cfg.App.Name), tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interactive page failed: %w", err)
	}
	return nil
}

func (a *app) runPlain(ctx context.Context) error {
	observability.PrintBanner()
	if observability.IsTerminal() {
		observability.InitializeTerminal()
		defer observability.CleanupTerminal()
	}

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	prevLog := log.Writer()
	log.SetOutput(observability.NewTermWriter())
	defer log.SetOutput(prevLog)

	resolved := make(chan sequencer.State, 1)
	var seq *sequencer.Sequencer
	seq = a.newSequencer(func(st sequencer.State) {
		observability.PrintProgress(progressOf(st, len(seq.Steps()), 0))
		if st.Phase == sequencer.PhaseResolved {
			select {
			case resolved <- st:
			default:
			}
		}
	})
	defer seq.Close()

	seq.Start()

	// Animate the radar between ticks.
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	frame := 0
	for {
		select {
		case <-ctx.Done():
			log.Println("Prediction aborted.")
			return nil
		case st := <-resolved:
			observability.PrintResult(*st.Result)
			return nil
		case <-ticker.C:
			frame++
			if st := seq.Snapshot(); st.IsRunning && observability.IsTerminal() {
				observability.PrintProgress(progressOf(st, len(seq.Steps()), frame))
			}
		}
	}
}

func progressOf(st sequencer.State, total, frame int) observability.Progress {
	return observability.Progress{
		Index:   st.StepIndex,
		Total:   total,
		Label:   st.StepLabel,
		Running: st.IsRunning,
		Frame:   frame,
	}
}
