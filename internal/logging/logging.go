package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

func newLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// InitLogger sets the level of the process-wide logger, creating it on first use.
func InitLogger(level logrus.Level) {
	once.Do(newLogger)
	logger.SetLevel(level)
}

func GetLogger() *logrus.Logger {
	once.Do(newLogger)
	return logger
}

// ParseLevel maps a LOG_LEVEL string to a logrus level, falling back to info.
func ParseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
