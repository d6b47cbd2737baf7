package mealcraft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// GenerationLogger records every meal plan generation attempt.
type GenerationLogger interface {
	LogGeneration(entry GenerationLog) error
}

// NewGenerationLogFilePath returns a file path derived from the agent id so
// logs produced against different agents are easy to tell apart.
func NewGenerationLogFilePath(dir, agentID string) string {
	return filepath.Join(dir, fmt.Sprintf(
		"%d.%s.jsonl",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(agentID), ":", "_"),
	))
}

// GenerationLog represents a single request to the agent and its outcome.
type GenerationLog struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	AgentID    string    `json:"agent_id"`
	Mode       string    `json:"mode"`
	Prompt     string    `json:"prompt"`
	Success    bool      `json:"success"`
	Strategy   string    `json:"strategy,omitempty"`
	Days       int       `json:"days,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// FileGenerationLogger appends each entry to the writer as one JSON line as
// soon as it is logged, so a long-running server keeps nothing in memory and
// a crash loses at most the entry being written.
type FileGenerationLogger struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewFileGenerationLogger(writer io.Writer) *FileGenerationLogger {
	return &FileGenerationLogger{writer: writer}
}

func (l *FileGenerationLogger) LogGeneration(entry GenerationLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal generation log: %w", err)
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write generation log: %w", err)
	}
	return nil
}

// Flush syncs the writer to stable storage when it supports it (e.g. *os.File).
// It can be called any number of times.
func (l *FileGenerationLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	syncer, ok := l.writer.(interface{ Sync() error })
	if !ok {
		return nil
	}
	if err := syncer.Sync(); err != nil {
		return fmt.Errorf("failed to sync generation log: %w", err)
	}
	return nil
}

type NoOpGenerationLogger struct{}

func NewNoOpGenerationLogger() *NoOpGenerationLogger {
	return &NoOpGenerationLogger{}
}

func (nop *NoOpGenerationLogger) LogGeneration(GenerationLog) error {
	return nil
}

// StdoutGenerationLogger writes each entry as a JSON line (for Lambda/CloudWatch).
type StdoutGenerationLogger struct {
	out io.Writer
}

func NewStdoutGenerationLogger() *StdoutGenerationLogger {
	return &StdoutGenerationLogger{out: os.Stdout}
}

func (l *StdoutGenerationLogger) LogGeneration(entry GenerationLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}

// NewGenerationLogger builds the logger selected by cfg. The returned cleanup
// flushes and closes any file it opened.
func NewGenerationLogger(cfg LogConfig, agentID string) (GenerationLogger, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Generations {
	case "", "none":
		return NewNoOpGenerationLogger(), noop, nil
	case "stdout":
		return NewStdoutGenerationLogger(), noop, nil
	case "file":
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("failed to create log dir: %w", err)
		}
		f, err := os.OpenFile(NewGenerationLogFilePath(cfg.Dir, agentID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open log file: %w", err)
		}
		logger := NewFileGenerationLogger(f)
		return logger, func() error {
			return errors.Join(logger.Flush(), f.Close())
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown generation log mode %q", cfg.Generations)
	}
}
