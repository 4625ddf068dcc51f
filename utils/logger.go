package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	InitLogger()
}

func InitLogger() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	InfoLogger.SetLevel(logrus.InfoLevel)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}

// SetLogLevel applies a configured level name ("debug", "info", "warn") to InfoLogger.
// Unknown names leave the current level untouched.
func SetLogLevel(level string) {
	if level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		ErrorLogger.Errorf("Unknown log level %q: %v", level, err)
		return
	}
	InfoLogger.SetLevel(lvl)
}

// SetJSONFormat switches both loggers to JSON output, used in release mode.
func SetJSONFormat() {
	InfoLogger.SetFormatter(&logrus.JSONFormatter{})
	ErrorLogger.SetFormatter(&logrus.JSONFormatter{})
}
