package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rahul/mlforecast/internal/sequencer"
)

// StateMsg tells the model the sequencer moved.
type StateMsg sequencer.State

// Bridge carries sequencer transitions into the program as tea.Cmds.
// Observe never blocks: it keeps only the latest pending transition, which
// is enough because the model renders from a fresh snapshot on every
// StateMsg.
type Bridge struct {
	mu      sync.Mutex
	updates chan StateMsg
	done    chan struct{}
	once    sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		updates: make(chan StateMsg, 1),
		done:    make(chan struct{}),
	}
}

// Observe is meant for sequencer.WithObserver. It is safe to call from
// inside Update.
func (b *Bridge) Observe(s sequencer.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.updates:
	default:
	}
	b.updates <- StateMsg(s)
}

// Wait returns a command that delivers the next transition. The model
// re-arms it after each StateMsg. A nil Bridge yields a nil command.
func (b *Bridge) Wait() tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case s := <-b.updates:
			return s
		case <-b.done:
			return nil
		}
	}
}

// Close releases a pending Wait. Idempotent.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
