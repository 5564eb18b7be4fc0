package main

import (
	"path/filepath"

	"github.com/discretemind/graphene-core/infrastructure/logger"
)

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.GRPH)
	if err != nil {
		panic(err)
	}
	return l
}

// initLogging points the process-wide logger backend at a log file in logDir
// filtered at debugLevel, sets graphened's own logger to debugLevel, then
// starts the backend's write goroutine. Other subsystems' loggers keep
// their default info level, so their trace and debug messages are not
// written. It must run before any subsystem logger is used.
func initLogging(logDir, debugLevel string) error {
	level, ok := logger.LevelFromString(debugLevel)
	if !ok {
		level = logger.LevelInfo
	}

	backend := logger.DefaultBackend()
	if err := backend.AddLogFile(filepath.Join(logDir, defaultLogFilename), level); err != nil {
		return err
	}
	log.SetLevel(level)
	return backend.Run()
}
