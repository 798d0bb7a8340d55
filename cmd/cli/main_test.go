package main

import (
	"bytes"
	"log"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLeavesStandardLogUntouched(t *testing.T) {
	//** Arrange
	previous := slog.Default()
	var logged, standard bytes.Buffer
	writer, flags := log.Writer(), log.Flags()
	log.SetOutput(&standard)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(writer)
		log.SetFlags(flags)
	}()

	//** Act
	logger := newLogger(&logged, false)
	log.Printf("invalid parameters: %v", "r > n")
	logger.Debug("level built")
	logger.Info("enumeration finished")

	//** Assert
	assert.Same(t, previous, slog.Default())
	assert.Equal(t, "invalid parameters: r > n\n", standard.String())
	assert.NotContains(t, logged.String(), "level built")
	assert.Contains(t, logged.String(), "level=INFO msg=\"enumeration finished\"")
}

func TestNewLoggerVerbose(t *testing.T) {
	var logged bytes.Buffer

	newLogger(&logged, true).Debug("level built")

	assert.Contains(t, logged.String(), "level=DEBUG msg=\"level built\"")
}
