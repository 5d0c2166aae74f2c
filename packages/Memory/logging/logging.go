package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// LevelEnv overrides the default log level.
	LevelEnv = "ELYSIUM_LOG_LEVEL"

	DefaultLogLevel = logrus.InfoLevel

	logFileName    = "elysium.log"
	logMaxSizeMB   = 10
	logMaxBackups  = 3
	stateDirEnv    = "XDG_STATE_HOME"
	stateDirSuffix = "elysium"
)

// DefaultLogger is the base logger every subsystem derives from.
var DefaultLogger = initializeDefaultLogger()

var fileOnce sync.Once

func initializeDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	logger.SetLevel(levelFromEnv(os.Getenv(LevelEnv)))
	return logger
}

func levelFromEnv(value string) logrus.Level {
	if value == "" {
		return DefaultLogLevel
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(value))
	if err != nil {
		return DefaultLogLevel
	}
	return level
}

// LogPath returns the rotating log file location.
func LogPath() (string, error) {
	dir := os.Getenv(stateDirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, stateDirSuffix, logFileName), nil
}

// EnableFileOutput mirrors the default logger into a rotating file. Calling it
// more than once has no effect.
func EnableFileOutput() error {
	var err error
	fileOnce.Do(func() {
		var path string
		path, err = LogPath()
		if err != nil {
			return
		}
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return
		}
		sink := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
		}
		DefaultLogger.SetOutput(io.MultiWriter(os.Stderr, sink))
	})
	return err
}
