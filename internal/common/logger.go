package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const logFileName = "movers.log"

// SetupLogger builds the arbor logger from the logging section.
// Console output is used when no output is configured.
func SetupLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	timeFormat := config.Logging.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}

	hasFileOutput := slices.Contains(config.Logging.Output, "file")
	hasConsoleOutput := slices.Contains(config.Logging.Output, "stdout") ||
		slices.Contains(config.Logging.Output, "console") ||
		!hasFileOutput

	if hasFileOutput {
		logsDir := LogDir(config)
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to create logs directory: %v\n", err)
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   filepath.Join(logsDir, logFileName),
				TimeFormat: timeFormat,
				MaxSize:    100 * 1024 * 1024, // 100 MB
				MaxBackups: 3,
				OutputType: models.OutputFormatLogfmt,
			})
		}
	}

	if hasConsoleOutput {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: timeFormat,
		})
	}

	return logger.WithLevelFromString(config.Logging.Level)
}

// LogDir returns the configured log directory, or logs/ next to the executable.
func LogDir(config *Config) string {
	if config.Logging.Dir != "" {
		return config.Logging.Dir
	}
	execPath, err := os.Executable()
	if err != nil {
		return "logs"
	}
	return filepath.Join(filepath.Dir(execPath), "logs")
}
