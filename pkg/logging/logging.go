// Package logging configures the global zerolog logger for devkit.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// currentVerbosity remembers the last SetupLogger call so that
// EnableFileLogging can rebuild the logger with the same settings.
var currentVerbosity int

// SetupLogger configures the global logger based on verbosity level.
// Output goes to the console only; it never touches the file system, so
// it is safe to call before the privilege gate. Call EnableFileLogging
// afterwards to add the state-dir log file.
func SetupLogger(verbosity int) {
	currentVerbosity = verbosity
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	log.Logger = zerolog.New(newConsoleWriter()).With().Timestamp().Logger()

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Msg("Logger initialized")
}

// EnableFileLogging adds the XDG state-dir log file as a second output
// next to the console. Invocations that never get past the privilege
// gate must not call this, so they leave the file system untouched.
func EnableFileLogging() {
	logFile := getLogFilePath()
	logFileHandle, err := setupLogFile(logFile)
	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Failed to create log file, logging to console only")
		return
	}

	multi := io.MultiWriter(newConsoleWriter(), logFileHandle)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()

	if currentVerbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Str("logFile", logFile).Msg("File logging enabled")
}

func newConsoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// getLogFilePath returns the path to the log file under the XDG state dir.
// Note the log lands under the invoking (possibly elevated) user's state
// home on purpose: the log belongs to the process, not to the target user.
func getLogFilePath() string {
	return filepath.Join(xdg.StateHome, "devkit", "devkit.log")
}

// setupLogFile creates the log file and its parent directories
func setupLogFile(logPath string) (*os.File, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}

// LogCommand logs an external command execution with its arguments
func LogCommand(cmd string, args []string) {
	log.Debug().
		Str("command", cmd).
		Strs("args", args).
		Msg("Executing command")
}
