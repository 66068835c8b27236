package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, LevelForVerbosity(0))
	assert.Equal(t, zerolog.InfoLevel, LevelForVerbosity(1))
	assert.Equal(t, zerolog.DebugLevel, LevelForVerbosity(2))
	assert.Equal(t, zerolog.TraceLevel, LevelForVerbosity(5))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "prism.log")

	require.NoError(t, Setup(zerolog.InfoLevel, &buf, logFile))
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := Get("test")
	logger.Info().Msg("hello")
	logger.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "component")
	assert.NotContains(t, buf.String(), "hidden")
	assert.FileExists(t, logFile)
}

func TestDefaultLogFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Equal(t, "prism.log", filepath.Base(DefaultLogFile()))
	assert.Equal(t, ".prism", filepath.Base(filepath.Dir(DefaultLogFile())))
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "process")
	assert.Contains(t, buf.String(), "Operation started")

	done()
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), `"operation":"process"`)
	assert.Contains(t, buf.String(), "duration")
}
