package mealcraft

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data []byte) []GenerationLog {
	t.Helper()
	var entries []GenerationLog
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry GenerationLog
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "each line is a JSON document")
		entries = append(entries, entry)
	}
	return entries
}

func TestFileGenerationLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileGenerationLogger(&buf)

	require.NoError(t, logger.LogGeneration(GenerationLog{ID: "a", AgentID: ManagerAgentID, Success: true, Strategy: "fenced-block", Days: 6}))
	assert.NotZero(t, buf.Len(), "entries are written as they are logged")
	require.NoError(t, logger.LogGeneration(GenerationLog{ID: "b", AgentID: ManagerAgentID, Error: "boom"}))

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "fenced-block", entries[0].Strategy)
	assert.Equal(t, "boom", entries[1].Error)
}

func TestFileGenerationLoggerRepeatedFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generations.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	logger := NewFileGenerationLogger(f)
	require.NoError(t, logger.LogGeneration(GenerationLog{ID: "1", Success: true}))
	require.NoError(t, logger.Flush())
	require.NoError(t, logger.LogGeneration(GenerationLog{ID: "2", Error: "boom"}))
	require.NoError(t, logger.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := decodeLines(t, data)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "2", entries[1].ID)
}

func TestFileGenerationLoggerNilWriter(t *testing.T) {
	logger := NewFileGenerationLogger(nil)
	require.NoError(t, logger.LogGeneration(GenerationLog{ID: "a"}))
	assert.NoError(t, logger.Flush())
}

func TestStdoutGenerationLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &StdoutGenerationLogger{out: &buf}

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, logger.LogGeneration(GenerationLog{ID: "x", Timestamp: ts, Mode: "Protein-Focused"}))

	line := strings.TrimSpace(buf.String())
	var got GenerationLog
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "Protein-Focused", got.Mode)
	assert.True(t, ts.Equal(got.Timestamp))
}

func TestNewGenerationLogger(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		logger, cleanup, err := NewGenerationLogger(LogConfig{Generations: "none"}, ManagerAgentID)
		require.NoError(t, err)
		assert.IsType(t, &NoOpGenerationLogger{}, logger)
		assert.NoError(t, cleanup())
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		logger, cleanup, err := NewGenerationLogger(LogConfig{Generations: "file", Dir: dir}, "Agent:One")
		require.NoError(t, err)
		require.NoError(t, logger.LogGeneration(GenerationLog{ID: "1"}))

		matches, err := filepath.Glob(filepath.Join(dir, "*.agent_one.jsonl"))
		require.NoError(t, err)
		require.Len(t, matches, 1)
		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		assert.Len(t, decodeLines(t, data), 1, "written before cleanup")

		require.NoError(t, cleanup())
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := NewGenerationLogger(LogConfig{Generations: "syslog"}, ManagerAgentID)
		assert.Error(t, err)
	})
}
