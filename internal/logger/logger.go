package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init configures the structured logger. JSON output in production,
// colored text in development; LOG_LEVEL/LOG_FORMAT env vars override.
func Init(logLevel string, isDevelopment bool) *logrus.Logger {
	l := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		l.SetLevel(level)
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	l.SetOutput(os.Stdout)
	log = l
	return l
}

// Get returns the global logger, initializing it with defaults if needed.
func Get() *logrus.Logger {
	if log == nil {
		return Init("info", false)
	}
	return log
}

// WithOptimization creates a logger entry carrying optimization context.
func WithOptimization(optimizationID string, algorithm string) *logrus.Entry {
	return Get().WithFields(logrus.Fields{
		"optimization_id": optimizationID,
		"algorithm":       algorithm,
	})
}

// WithPlanner creates a logger entry carrying transfer-plan context.
func WithPlanner(planID string, gameweeks int) *logrus.Entry {
	return Get().WithFields(logrus.Fields{
		"plan_id":   planID,
		"gameweeks": gameweeks,
	})
}
