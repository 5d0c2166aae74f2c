package frame

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
)

var gameLog = logging.DefaultLogger.WithField(logfields.LogSubsys, "game")

// LoggingSeverity_t values.
const (
	severityMessage = iota
	severityWarning
	severityAssert
	severityError
)

func severity(s int32) (logrus.Level, string) {
	switch s {
	case severityWarning:
		return logrus.WarnLevel, "warning"
	case severityAssert:
		return logrus.ErrorLevel, "assert"
	case severityError:
		return logrus.ErrorLevel, "error"
	}
	return logrus.InfoLevel, "message"
}

// GameLog re-logs a message from the game's logging system.
func GameLog(channel, sev int32, message string) {
	message = strings.TrimRight(message, "\r\n")
	if strings.TrimSpace(message) == "" {
		return
	}
	level, name := severity(sev)
	gameLog.WithFields(logrus.Fields{
		logfields.Channel:  channel,
		logfields.Severity: name,
	}).Log(level, message)
}
