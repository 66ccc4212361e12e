package sequencer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rahul/mlforecast/internal/forecast"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	gen   *forecast.Generator
}

func (c *countingGenerator) Generate() forecast.PredictionResult {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.gen.Generate()
}

func (c *countingGenerator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingLogger struct {
	mu        sync.Mutex
	started   []string
	steps     []int
	resolved  []string
	cancelled []string
}

func (l *recordingLogger) LogRunStarted(runID string, steps int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, runID)
}

func (l *recordingLogger) LogStep(runID string, index int, label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, index)
}

func (l *recordingLogger) LogResolved(runID string, result forecast.PredictionResult, elapsed time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolved = append(l.resolved, runID)
}

func (l *recordingLogger) LogCancelled(runID string, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelled = append(l.cancelled, runID+":"+reason)
}

func newTestSequencer(opts ...Option) (*Sequencer, *ManualClock, *countingGenerator, *recordingLogger) {
	clock := NewManualClock(epoch)
	gen := &countingGenerator{gen: forecast.NewGenerator(forecast.NewFixedSource(0))}
	logger := &recordingLogger{}
	opts = append([]Option{WithClock(clock), WithLogger(logger)}, opts...)
	return New(gen, opts...), clock, gen, logger
}

func TestNew_StartsIdle(t *testing.T) {
	seq, _, _, _ := newTestSequencer()
	st := seq.Snapshot()

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.False(t, st.IsRunning)
	assert.Equal(t, 0, st.StepIndex)
	assert.Nil(t, st.Result)
	assert.Equal(t, forecast.ProcessingSteps, seq.Steps())
}

func TestStart_EntersRunning(t *testing.T) {
	var observed []State
	seq, clock, _, logger := newTestSequencer(WithObserver(func(s State) { observed = append(observed, s) }))

	require.True(t, seq.Start())
	st := seq.Snapshot()

	assert.Equal(t, PhaseRunning, st.Phase)
	assert.True(t, st.IsRunning)
	assert.Equal(t, 0, st.StepIndex)
	assert.Equal(t, forecast.ProcessingSteps[0], st.StepLabel)
	assert.Nil(t, st.Result)
	assert.NotEmpty(t, st.RunID)
	assert.Equal(t, 2, clock.Pending(), "tick and completion timers armed")

	require.Len(t, observed, 1)
	assert.Equal(t, PhaseRunning, observed[0].Phase)
	assert.Equal(t, []string{st.RunID}, logger.started)
}

func TestRun_Timeline(t *testing.T) {
	seq, clock, gen, logger := newTestSequencer()
	require.True(t, seq.Start())

	clock.Advance(800 * time.Millisecond)
	assert.Equal(t, 1, seq.Snapshot().StepIndex)

	clock.Advance(4800 * time.Millisecond) // t=5600
	assert.Equal(t, 7, seq.Snapshot().StepIndex)
	assert.Equal(t, 1, clock.Pending(), "tick timer stops at the last step")

	clock.Advance(800 * time.Millisecond) // t=6400
	st := seq.Snapshot()
	assert.Equal(t, 7, st.StepIndex)
	assert.Equal(t, forecast.ProcessingSteps[7], st.StepLabel)

	clock.Advance(1599 * time.Millisecond) // t=7999
	assert.Equal(t, PhaseRunning, seq.Snapshot().Phase)
	assert.Equal(t, 0, gen.Calls())

	clock.Advance(time.Millisecond) // t=8000
	st = seq.Snapshot()
	assert.Equal(t, PhaseResolved, st.Phase)
	assert.False(t, st.IsRunning)
	assert.Equal(t, 7, st.StepIndex, "step index frozen at its last value")
	require.NotNil(t, st.Result)
	assert.Equal(t, "v1.0.0", st.Result.ModelVersion)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, 0, clock.Pending())

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, logger.steps)
	assert.Equal(t, []string{st.RunID}, logger.resolved)
}

func TestRun_StepIndexNeverExceedsLast(t *testing.T) {
	var maxSeen int
	seq, clock, _, _ := newTestSequencer(
		WithCompletionDelay(time.Minute),
		WithObserver(func(s State) {
			if s.StepIndex > maxSeen {
				maxSeen = s.StepIndex
			}
		}),
	)
	require.True(t, seq.Start())

	for i := 0; i < 40; i++ {
		clock.Advance(800 * time.Millisecond)
		assert.LessOrEqual(t, seq.Snapshot().StepIndex, len(forecast.ProcessingSteps)-1)
	}
	assert.Equal(t, len(forecast.ProcessingSteps)-1, maxSeen)
	seq.Close()
}

func TestStart_IgnoredWhileRunning(t *testing.T) {
	seq, clock, _, logger := newTestSequencer()
	require.True(t, seq.Start())
	runID := seq.Snapshot().RunID

	clock.Advance(1600 * time.Millisecond)
	assert.False(t, seq.Start())

	st := seq.Snapshot()
	assert.Equal(t, 2, st.StepIndex)
	assert.Equal(t, runID, st.RunID)
	assert.Len(t, logger.started, 1)
	seq.Close()
}

func TestRestart_MidRunDropsPreviousTimers(t *testing.T) {
	seq, clock, gen, logger := newTestSequencer()
	require.True(t, seq.Start())
	first := seq.Snapshot().RunID

	clock.Advance(2400 * time.Millisecond)
	require.Equal(t, 3, seq.Snapshot().StepIndex)

	seq.Restart()
	st := seq.Snapshot()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Equal(t, 0, st.StepIndex)
	assert.Nil(t, st.Result)
	assert.NotEqual(t, first, st.RunID)
	assert.Equal(t, 2, clock.Pending(), "only the new run's timers remain")
	assert.Equal(t, []string{first + ":restart"}, logger.cancelled)

	// The first run's completion would have fired here.
	clock.Advance(5600 * time.Millisecond)
	st = seq.Snapshot()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Equal(t, 7, st.StepIndex)
	assert.Equal(t, 0, gen.Calls())

	clock.Advance(2400 * time.Millisecond)
	st = seq.Snapshot()
	assert.Equal(t, PhaseResolved, st.Phase)
	assert.NotNil(t, st.Result)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, []string{st.RunID}, logger.resolved)
}

func TestRestart_FromResolved(t *testing.T) {
	seq, clock, gen, logger := newTestSequencer()
	require.True(t, seq.Start())
	clock.Advance(DefaultCompletionDelay)
	require.Equal(t, PhaseResolved, seq.Snapshot().Phase)

	seq.Restart()
	st := seq.Snapshot()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Nil(t, st.Result)
	assert.Equal(t, 0, st.StepIndex)
	assert.Empty(t, logger.cancelled, "a resolved run has nothing to cancel")

	clock.Advance(DefaultCompletionDelay)
	assert.Equal(t, PhaseResolved, seq.Snapshot().Phase)
	assert.Equal(t, 2, gen.Calls())
}

func TestStart_FromResolvedBeginsNewRun(t *testing.T) {
	seq, clock, _, _ := newTestSequencer()
	require.True(t, seq.Start())
	clock.Advance(DefaultCompletionDelay)

	require.True(t, seq.Start())
	st := seq.Snapshot()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Nil(t, st.Result)
	seq.Close()
}

func TestClose_CancelsAndIsIdempotent(t *testing.T) {
	var notifications int
	seq, clock, gen, logger := newTestSequencer(WithObserver(func(State) { notifications++ }))
	require.True(t, seq.Start())
	runID := seq.Snapshot().RunID
	clock.Advance(800 * time.Millisecond)

	seq.Close()
	seq.Close()
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, []string{runID + ":teardown"}, logger.cancelled)

	before := notifications
	clock.Advance(time.Minute)
	st := seq.Snapshot()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.False(t, st.IsRunning)
	assert.Nil(t, st.Result)
	assert.Equal(t, 0, gen.Calls())
	assert.Equal(t, before, notifications, "no callbacks after teardown")

	assert.False(t, seq.Start())
	seq.Restart()
	assert.Equal(t, PhaseIdle, seq.Snapshot().Phase)
}

func TestClose_AfterResolveKeepsResult(t *testing.T) {
	seq, clock, _, logger := newTestSequencer()
	require.True(t, seq.Start())
	clock.Advance(DefaultCompletionDelay)

	seq.Close()
	st := seq.Snapshot()
	assert.Equal(t, PhaseResolved, st.Phase)
	assert.NotNil(t, st.Result)
	assert.Empty(t, logger.cancelled)
}

func TestRun_CompletionBeforeLastStep(t *testing.T) {
	seq, clock, _, _ := newTestSequencer(WithCompletionDelay(2 * time.Second))
	require.True(t, seq.Start())

	clock.Advance(2 * time.Second)
	st := seq.Snapshot()
	assert.Equal(t, PhaseResolved, st.Phase)
	assert.Equal(t, 2, st.StepIndex)
	assert.Equal(t, 0, clock.Pending())
}

func TestRun_SingleStepNeverTicks(t *testing.T) {
	seq, clock, _, logger := newTestSequencer(WithSteps([]string{"Thinking..."}))
	require.True(t, seq.Start())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(DefaultCompletionDelay)
	st := seq.Snapshot()
	assert.Equal(t, PhaseResolved, st.Phase)
	assert.Equal(t, 0, st.StepIndex)
	assert.Empty(t, logger.steps)
}

func TestOptions_IgnoreInvalidValues(t *testing.T) {
	seq := New(nil, WithTickInterval(0), WithCompletionDelay(-time.Second), WithSteps(nil), WithClock(nil), WithLogger(nil))
	assert.Equal(t, DefaultTickInterval, seq.tickInterval)
	assert.Equal(t, DefaultCompletionDelay, seq.completionDelay)
	assert.Equal(t, forecast.ProcessingSteps, seq.Steps())
	assert.Equal(t, RealClock, seq.clock)
	assert.NotNil(t, seq.logger)
}

func TestSnapshot_ResultIsACopy(t *testing.T) {
	seq, clock, _, _ := newTestSequencer()
	require.True(t, seq.Start())
	clock.Advance(DefaultCompletionDelay)

	st := seq.Snapshot()
	st.Result.Factors[0] = "mutated"
	st.Result.ModelVersion = "v0.0.0"

	again := seq.Snapshot()
	assert.Equal(t, forecast.Factors[0], again.Result.Factors[0])
	assert.Equal(t, "v1.0.0", again.Result.ModelVersion)
}

func TestRun_CancelIsIdempotent(t *testing.T) {
	clock := NewManualClock(epoch)
	r := newRun(clock.Now())
	r.setTick(clock.AfterFunc(time.Second, func() {}))
	r.setDone(clock.AfterFunc(2*time.Second, func() {}))

	assert.True(t, r.cancel())
	assert.False(t, r.cancel())
	assert.True(t, r.isCancelled())
	assert.Equal(t, 0, clock.Pending())

	assert.False(t, r.setTick(clock.AfterFunc(time.Second, func() {})))
	assert.Equal(t, 0, clock.Pending(), "timers attached after cancel are stopped")

	var nilRun *run
	assert.False(t, nilRun.cancel())
}

func TestRealClock_ResolvesAndReleasesTimers(t *testing.T) {
	resolved := make(chan State, 1)
	seq := New(
		forecast.NewGenerator(forecast.NewSeededSource(7)),
		WithTickInterval(5*time.Millisecond),
		WithCompletionDelay(60*time.Millisecond),
		WithObserver(func(s State) {
			if s.Phase == PhaseResolved {
				select {
				case resolved <- s:
				default:
				}
			}
		}),
	)
	defer seq.Close()

	require.True(t, seq.Start())
	select {
	case st := <-resolved:
		require.NotNil(t, st.Result)
		assert.False(t, st.IsRunning)
		assert.LessOrEqual(t, st.StepIndex, len(forecast.ProcessingSteps)-1)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not resolve")
	}
}

func TestRealClock_RestartStorm(t *testing.T) {
	seq := New(nil, WithTickInterval(time.Millisecond), WithCompletionDelay(20*time.Millisecond))
	for i := 0; i < 50; i++ {
		seq.Restart()
	}
	seq.Close()
	assert.False(t, seq.Snapshot().IsRunning)
}
