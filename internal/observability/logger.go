package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rahul/mlforecast/internal/forecast"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeRunStarted EventType = "run_started"
	EventTypeStep       EventType = "step"
	EventTypeResolved   EventType = "resolved"
	EventTypeCancelled  EventType = "cancelled"
	EventTypePrediction EventType = "prediction"
)

// Event represents a structured log entry.
type Event struct {
	Type   EventType
	TaskID string
	Data   any
	Level  zapcore.Level
}

// LoggerConfig controls where events go. A disabled config yields a logger
// that drops everything.
type LoggerConfig struct {
	Enabled bool
	Path    string
	MaxSize int64 // bytes; 0 disables rotation
	Verbose bool
}

// Logger writes lifecycle events as JSON lines.
type Logger struct {
	zl      *zap.Logger
	path    string
	maxSize int64
}

func NewLogger(cfg LoggerConfig) (*Logger, error) {
	if !cfg.Enabled || cfg.Path == "" {
		return &Logger{zl: zap.NewNop()}, nil
	}

	l := &Logger{path: cfg.Path, maxSize: cfg.MaxSize}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	l.rotateIfNeeded()

	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.OutputPaths = []string{l.path}
	zc.EncoderConfig.MessageKey = "type"
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l.zl = zl
	return l, nil
}

// Log emits a structured event.
func (l *Logger) Log(evt Event) {
	fields := make([]zap.Field, 0, 2)
	if evt.TaskID != "" {
		fields = append(fields, zap.String("task_id", evt.TaskID))
	}
	if evt.Data != nil {
		fields = append(fields, zap.Any("data", evt.Data))
	}
	if ce := l.zl.Check(evt.Level, string(evt.Type)); ce != nil {
		ce.Write(fields...)
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) rotateIfNeeded() {
	if l.maxSize <= 0 {
		return
	}
	info, err := os.Stat(l.path)
	if err != nil || info.Size() <= l.maxSize {
		return
	}
	// Simple rotation: keep one .old file
	oldPath := l.path + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.path, oldPath)
}

// Helper methods for common events

func (l *Logger) LogRunStarted(runID string, steps int) {
	l.Log(Event{
		Type:   EventTypeRunStarted,
		TaskID: runID,
		Data:   map[string]int{"steps": steps},
	})
}

func (l *Logger) LogStep(runID string, index int, label string) {
	l.Log(Event{
		Type:   EventTypeStep,
		TaskID: runID,
		Level:  zapcore.DebugLevel,
		Data: map[string]any{
			"index": index,
			"label": label,
		},
	})
}

func (l *Logger) LogResolved(runID string, result forecast.PredictionResult, elapsed time.Duration) {
	l.Log(Event{
		Type:   EventTypeResolved,
		TaskID: runID,
		Data: map[string]any{
			"elapsed_ms": elapsed.Milliseconds(),
			"result":     result,
		},
	})
}

func (l *Logger) LogCancelled(runID string, reason string) {
	l.Log(Event{
		Type:   EventTypeCancelled,
		TaskID: runID,
		Data:   map[string]string{"reason": reason},
	})
}

func (l *Logger) LogPrediction(result forecast.PredictionResult) {
	l.Log(Event{
		Type: EventTypePrediction,
		Data: result,
	})
}
