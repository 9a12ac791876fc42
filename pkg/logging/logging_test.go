package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	original := log.Logger
	defer func() {
		log.Logger = original
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "state", "wfpack.log")

			SetupLogger(tt.verbosity, logPath)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created")
		})
	}
}

func TestSetupLoggerWithoutFile(t *testing.T) {
	original := log.Logger
	defer func() { log.Logger = original }()

	SetupLogger(0, "")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestGetLogger(t *testing.T) {
	original := log.Logger
	defer func() { log.Logger = original }()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := WithRunID(GetLogger("copier"), "01TESTRUN")
	logger.Info().Msg("copied")

	assert.Contains(t, buf.String(), `"component":"copier"`)
	assert.Contains(t, buf.String(), `"run_id":"01TESTRUN"`)
}

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()

	require.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
