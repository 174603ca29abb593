package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		logFile string
	}{
		{name: "debug level, no file", level: "debug"},
		{name: "info level, no file", level: "info"},
		{name: "warn level, no file", level: "warn"},
		{name: "error level, no file", level: "error"},
		{name: "invalid level defaults to info", level: "verbose"},
		{name: "with log file", level: "info", logFile: filepath.Join(t.TempDir(), "test.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log = nil

			err := Init(tt.level, tt.logFile)
			require.NoError(t, err)
			require.NotNil(t, Log)

			_ = Log.Sync()
			if tt.logFile != "" {
				_ = os.Remove(tt.logFile)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	require.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	require.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestInitWithLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	require.NoError(t, Init("info", logFile))
	require.NotNil(t, Log)

	Log.Info("test message")
	_ = Sync()

	_, err := os.Stat(logFile)
	require.NoError(t, err)
}

func TestSyncWithNilLogger(t *testing.T) {
	Log = nil
	require.NoError(t, Sync())
}
