package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/qacker/backend/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitializeLogger sets up zerolog for command output and routes the
// services' slog output to stderr or to logFilePath when given.
func InitializeLogger(logLevel string, logFilePath string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var srvcOut io.Writer = os.Stderr
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		log.Logger = log.Output(file)
		srvcOut = file
	} else {
		// Human-friendly console output
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly, NoColor: true})
	}

	slog.SetDefault(logger.New(srvcOut, logLevel, "text"))
	return nil
}
