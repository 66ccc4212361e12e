// Package sequencer drives the timed reveal: a run walks the processing
// steps on a periodic tick and resolves into a prediction after a fixed delay.
package sequencer

import (
	"sync"
	"time"

	"github.com/rahul/mlforecast/internal/forecast"
)

const (
	DefaultTickInterval    = 800 * time.Millisecond
	DefaultCompletionDelay = 8 * time.Second
)

// Phase is the sequencer's lifecycle position.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseResolved Phase = "resolved"
)

// State is a read-only snapshot handed to the presentation layer.
// Result is non-nil only in PhaseResolved.
type State struct {
	Phase     Phase
	IsRunning bool
	StepIndex int
	StepLabel string
	Result    *forecast.PredictionResult
	RunID     string
}

// Generator produces the prediction revealed at the end of a run.
type Generator interface {
	Generate() forecast.PredictionResult
}

// EventLogger receives run lifecycle events.
type EventLogger interface {
	LogRunStarted(runID string, steps int)
	LogStep(runID string, index int, label string)
	LogResolved(runID string, result forecast.PredictionResult, elapsed time.Duration)
	LogCancelled(runID string, reason string)
}

type Option func(*Sequencer)

func WithClock(c Clock) Option {
	return func(s *Sequencer) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

func WithCompletionDelay(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.completionDelay = d
		}
	}
}

// WithSteps replaces the step labels. An empty list is ignored.
func WithSteps(steps []string) Option {
	return func(s *Sequencer) {
		if len(steps) > 0 {
			s.steps = append([]string(nil), steps...)
		}
	}
}

// WithObserver registers a callback invoked with a snapshot after every
// transition. It runs outside the sequencer's lock, possibly on a timer
// goroutine.
func WithObserver(fn func(State)) Option {
	return func(s *Sequencer) { s.observer = fn }
}

func WithLogger(l EventLogger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// Sequencer owns a single reveal. At most one run is in flight; starting a
// new one always cancels the previous run's timers first.
type Sequencer struct {
	gen             Generator
	clock           Clock
	tickInterval    time.Duration
	completionDelay time.Duration
	steps           []string
	observer        func(State)
	logger          EventLogger

	mu     sync.Mutex
	state  State
	active *run
	closed bool
}

func New(gen Generator, opts ...Option) *Sequencer {
	if gen == nil {
		gen = forecast.NewGenerator(nil)
	}
	s := &Sequencer{
		gen:             gen,
		clock:           RealClock,
		tickInterval:    DefaultTickInterval,
		completionDelay: DefaultCompletionDelay,
		steps:           forecast.ProcessingSteps,
		logger:          nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}
	s.state = State{Phase: PhaseIdle, StepLabel: s.steps[0]}
	return s
}

// Steps returns the step labels walked by every run.
func (s *Sequencer) Steps() []string {
	return append([]string(nil), s.steps...)
}

// Start begins a run. It is ignored while a run is in progress or after
// Close, and reports whether a run was started.
func (s *Sequencer) Start() bool {
	s.mu.Lock()
	if s.closed || s.state.Phase == PhaseRunning {
		s.mu.Unlock()
		return false
	}
	s.begin()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// Restart cancels any in-flight run and begins a new one from step 0.
func (s *Sequencer) Restart() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if prev := s.active; prev.cancel() {
		s.logger.LogCancelled(prev.id, "restart")
	}
	s.begin()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Close cancels the in-flight run, if any. Further Start and Restart calls
// are ignored. Close is idempotent.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if prev := s.active; prev.cancel() {
		s.logger.LogCancelled(prev.id, "teardown")
	}
	s.active = nil
	if s.state.Phase == PhaseRunning {
		s.state.Phase = PhaseIdle
		s.state.IsRunning = false
	}
}

// Snapshot returns the current state.
func (s *Sequencer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// begin resets the state and arms both timers. Caller holds s.mu.
func (s *Sequencer) begin() {
	r := newRun(s.clock.Now())
	s.active = r
	s.state = State{
		Phase:     PhaseRunning,
		IsRunning: true,
		StepIndex: 0,
		StepLabel: s.steps[0],
		RunID:     r.id,
	}
	s.logger.LogRunStarted(r.id, len(s.steps))

	if len(s.steps) > 1 {
		s.scheduleTick(r)
	}
	r.setDone(s.clock.AfterFunc(s.completionDelay, func() { s.resolve(r) }))
}

func (s *Sequencer) scheduleTick(r *run) {
	r.setTick(s.clock.AfterFunc(s.tickInterval, func() { s.tick(r) }))
}

func (s *Sequencer) tick(r *run) {
	s.mu.Lock()
	if s.active != r || r.isCancelled() || s.state.Phase != PhaseRunning {
		s.mu.Unlock()
		return
	}

	last := len(s.steps) - 1
	if s.state.StepIndex < last {
		s.state.StepIndex++
		s.state.StepLabel = s.steps[s.state.StepIndex]
		s.logger.LogStep(r.id, s.state.StepIndex, s.state.StepLabel)
	}
	if s.state.StepIndex >= last {
		r.stopTicking()
	} else {
		s.scheduleTick(r)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Sequencer) resolve(r *run) {
	s.mu.Lock()
	if s.active != r || !r.cancel() {
		s.mu.Unlock()
		return
	}

	res := s.gen.Generate()
	s.active = nil
	s.state.Phase = PhaseResolved
	s.state.IsRunning = false
	s.state.Result = &res
	s.logger.LogResolved(r.id, res, s.clock.Now().Sub(r.started))
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Sequencer) snapshotLocked() State {
	snap := s.state
	if s.state.Result != nil {
		res := *s.state.Result
		res.Factors = append([]string(nil), res.Factors...)
		snap.Result = &res
	}
	return snap
}

func (s *Sequencer) notify(snap State) {
	if s.observer != nil {
		s.observer(snap)
	}
}

type nopLogger struct{}

func (nopLogger) LogRunStarted(string, int) {}

func (nopLogger) LogStep(string, int, string) {}

func (nopLogger) LogResolved(string, forecast.PredictionResult, time.Duration) {}

func (nopLogger) LogCancelled(string, string) {}
